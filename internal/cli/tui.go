package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/anchorlayout/pkg/document"
	"github.com/matzehuels/anchorlayout/pkg/layout"
)

var (
	watchKeyStyle  = lipgloss.NewStyle().Foreground(colorDim)
	watchSizeStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
)

// =============================================================================
// WatchModel - Interactive incremental resizing
// =============================================================================

// WatchModel is the bubbletea model of the watch command. Every resize runs
// one incremental pass through a long-lived diff cache, so the view shows
// how little of the system each step resubmits.
type WatchModel struct {
	Built  *document.Built
	Engine *layout.Engine
	Cache  *layout.Cache
	Step   float64

	Report layout.Report
	Frames []document.Frame
	Err    error

	initial layout.Size
}

// NewWatchModel builds doc and runs its first pass.
func NewWatchModel(doc *document.Document, engine *layout.Engine, step float64) (*WatchModel, error) {
	b, err := document.Build(doc)
	if err != nil {
		return nil, err
	}
	if step <= 0 {
		step = 10
	}
	m := &WatchModel{
		Built:   b,
		Engine:  engine,
		Cache:   layout.NewCache(),
		Step:    step,
		initial: b.Root.Frame().Size(),
	}
	m.solve()
	return m, m.Err
}

func (m *WatchModel) Init() tea.Cmd {
	return nil
}

func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	size := m.Built.Root.Frame().Size()
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "right", "l":
		m.resize(size.Width+m.Step, size.Height)
	case "left", "h":
		m.resize(size.Width-m.Step, size.Height)
	case "down", "j":
		m.resize(size.Width, size.Height+m.Step)
	case "up", "k":
		m.resize(size.Width, size.Height-m.Step)
	case "r":
		m.resize(m.initial.Width, m.initial.Height)
	}
	return m, nil
}

// resize sets the root size, clamped at zero, and runs a pass.
func (m *WatchModel) resize(w, h float64) {
	f := m.Built.Root.Frame()
	m.Built.Root.SetFrame(layout.R(f.X, f.Y, max(w, 0), max(h, 0)))
	m.solve()
}

func (m *WatchModel) solve() {
	rep, err := m.Engine.Solve(m.Built.Root, m.Cache)
	m.Report, m.Err = rep, err
	m.Frames = document.Frames(m.Built.Root)
}

func (m *WatchModel) View() string {
	var b strings.Builder

	size := m.Built.Root.Frame().Size()
	b.WriteString(StyleTitle.Render(m.Built.Root.Name()))
	b.WriteString("  ")
	b.WriteString(watchSizeStyle.Render(formatNum(size.Width) + " × " + formatNum(size.Height)))
	b.WriteString("\n")
	b.WriteString(watchKeyStyle.Render("←/→ width  ↑/↓ height  r reset  q quit"))
	b.WriteString("\n\n")

	b.WriteString(framesTable(m.Frames))
	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(styleIconError.Render(iconError + " " + m.Err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	d := m.Report.Diff
	b.WriteString(StyleDim.Render(fmt.Sprintf("  pass %d · %d ops · constraints +%d -%d ~%d · edits +%d -%d ~%d · %d resuggested",
		m.Cache.Passes(), m.Report.Ops,
		d.ConstraintsAdded, d.ConstraintsRemoved, d.ConstraintsUpdated,
		d.EditsAdded, d.EditsRemoved, d.EditsUpdated, d.Resuggested)))
	b.WriteString("\n")
	return b.String()
}
