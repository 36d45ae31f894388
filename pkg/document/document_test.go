package document

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/layout"
)

const jsonDoc = `{
  "root": {
    "name": "root",
    "frame": [0, 0, 400, 300],
    "children": [{"name": "a", "intrinsic": [40, 20], "hugging": ["low", 250]}]
  },
  "constraints": [
    {"first": "a.left", "relation": "==", "second": "root.left", "offset": 10},
    {"first": "a.top", "relation": "==", "second": "root.top", "offset": 5, "priority": "high"}
  ]
}`

const tomlDoc = `
[root]
name = "root"
frame = [0, 0, 400, 300]

[[root.children]]
name = "a"
intrinsic = [40, 20]
hugging = ["low", 250]

[[constraints]]
first = "a.left"
relation = "=="
second = "root.left"
offset = 10

[[constraints]]
first = "a.top"
relation = "=="
second = "root.top"
offset = 5
priority = 750
`

const yamlDoc = `
root:
  name: root
  frame: [0, 0, 400, 300]
  children:
    - name: a
      intrinsic: [40, 20]
      hugging: [250, low]
constraints:
  - first: a.left
    relation: "=="
    second: root.left
    offset: 10
  - first: a.top
    relation: "=="
    second: root.top
    offset: 5
    priority: high
`

func solve(t *testing.T, b *Built) {
	t.Helper()
	e := layout.NewEngine(log.New(io.Discard))
	if _, err := e.Solve(b.Root, nil); err != nil {
		t.Fatalf("Solve: %v", err)
	}
}

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		format Format
		src    string
	}{
		{FormatJSON, jsonDoc},
		{FormatTOML, tomlDoc},
		{FormatYAML, yamlDoc},
	}

	var hashes []string
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			doc, err := Read(strings.NewReader(tt.src), tt.format)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			hashes = append(hashes, Hash(doc))

			b, err := Build(doc)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			solve(t, b)

			a, _ := b.View("a")
			want := layout.R(10, 5, 40, 20)
			if diff := cmp.Diff(want, a.Frame(), cmpopts.EquateApprox(0, 1e-6)); diff != "" {
				t.Errorf("a.Frame() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	for i := 1; i < len(hashes); i++ {
		if hashes[i] != hashes[0] {
			t.Errorf("hash %d = %s, want %s", i, hashes[i], hashes[0])
		}
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"unknown field", `{"root": {"name": "r"}, "bogus": 1}`, errors.ErrCodeInvalidDocument},
		{"bad root name", `{"root": {"name": "1r"}}`, errors.ErrCodeInvalidDocument},
		{"bad frame", `{"root": {"name": "r", "frame": [1, 2]}}`, errors.ErrCodeInvalidDocument},
		{"duplicate view", `{"root": {"name": "r", "children": [{"name": "a"}, {"name": "a"}]}}`, errors.ErrCodeInvalidDocument},
		{"guide children", `{"root": {"name": "r", "children": [{"name": "g", "guide": true, "children": [{"name": "x"}]}]}}`, errors.ErrCodeInvalidDocument},
		{"root guide", `{"root": {"name": "r", "guide": true}}`, errors.ErrCodeInvalidDocument},
		{"bad opt_out", `{"root": {"name": "r", "children": [{"name": "a", "opt_out": ["depth"]}]}}`, errors.ErrCodeInvalidDocument},
		{"bad intrinsic", `{"root": {"name": "r", "children": [{"name": "a", "intrinsic": [1]}]}}`, errors.ErrCodeInvalidDocument},
		{"bad hugging", `{"root": {"name": "r", "children": [{"name": "a", "hugging": ["loud", 1]}]}}`, errors.ErrCodeInvalidDocument},
		{"unknown view", `{"root": {"name": "r"}, "constraints": [{"first": "x.left", "relation": "=="}]}`, errors.ErrCodeInvalidDocument},
		{"unknown kind", `{"root": {"name": "r"}, "constraints": [{"first": "r.middle", "relation": "=="}]}`, errors.ErrCodeInvalidDocument},
		{"malformed ref", `{"root": {"name": "r"}, "constraints": [{"first": "r", "relation": "=="}]}`, errors.ErrCodeInvalidDocument},
		{"bad relation", `{"root": {"name": "r"}, "constraints": [{"first": "r.width", "relation": "!="}]}`, errors.ErrCodeInvalidDocument},
		{"bad priority", `{"root": {"name": "r"}, "constraints": [{"first": "r.width", "relation": "==", "priority": -3}]}`, errors.ErrCodeInvalidDocument},
		{"constant multiplier", `{"root": {"name": "r"}, "constraints": [{"first": "r.width", "relation": "==", "multiplier": 2}]}`, errors.ErrCodeInvalidDocument},
		{"owner mismatch", `{"root": {"name": "r", "children": [{"name": "a"}]}, "constraints": [{"owner": "a", "first": "a.width", "relation": "==", "second": "r.width"}]}`, errors.ErrCodeInvalidDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte(tt.doc), FormatJSON)
			if err == nil {
				_, err = Build(doc)
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestOwnerMismatchLeavesNoConstraint(t *testing.T) {
	doc := &Document{
		Root: View{Name: "r", Children: []View{{Name: "a"}}},
		Constraints: []Constraint{
			{Owner: "a", First: "a.width", Relation: "==", Second: "r.width"},
		},
	}
	tree := layout.NewTree()
	b := &Built{Tree: tree, Root: tree.NewRoot("r", layout.Rect{}), Views: map[string]*layout.Container{}}
	b.Views["r"] = b.Root
	b.Views["a"] = b.Root.AddView("a", layout.Rect{})

	if _, err := b.constrain(doc.Constraints[0]); err == nil {
		t.Fatal("expected owner mismatch")
	}
	if n := len(b.Root.Constraints()); n != 0 {
		t.Errorf("root owns %d constraints, want 0", n)
	}
}

func TestBuildViewProperties(t *testing.T) {
	src := `{
	  "root": {
	    "name": "r",
	    "frame": [0, 0, 100, 100],
	    "children": [
	      {"name": "label", "baseline": 12, "compression": [500, "required"], "opt_out": ["left", "top"]},
	      {"name": "guide", "guide": true}
	    ]
	  },
	  "constraints": [
	    {"first": "label.width", "relation": "<=", "second": "r.width", "multiplier": 0.5, "enabled": false}
	  ]
	}`
	doc, err := Decode([]byte(src), FormatJSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	b, err := Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	label := b.Views["label"]
	if h, ok := label.Baseline(); !ok || h != 12 {
		t.Errorf("Baseline() = (%v, %v), want (12, true)", h, ok)
	}
	if got := label.Compression(layout.Horizontal); got != 500 {
		t.Errorf("Compression(h) = %v, want 500", got)
	}
	if got := label.Compression(layout.Vertical); got != layout.PriorityRequired {
		t.Errorf("Compression(v) = %v, want required", got)
	}
	if got, want := label.OptOut(), layout.OptOutOrigin; got != want {
		t.Errorf("OptOut() = %v, want %v", got, want)
	}
	if !b.Views["guide"].IsGuide() {
		t.Error("guide should be a layout guide")
	}

	if len(b.Constraints) != 1 {
		t.Fatalf("constraints = %d, want 1", len(b.Constraints))
	}
	k := b.Constraints[0]
	if k.Enabled() || k.Multiplier() != 0.5 || k.Relation() != layout.LessOrEqual {
		t.Errorf("constraint = %s, want disabled <= with multiplier 0.5", k)
	}
	if k.Owner() != b.Root {
		t.Errorf("Owner() = %s, want r", k.Owner())
	}
}

func TestHashNormalizesPriorities(t *testing.T) {
	a := &Document{
		Root:        View{Name: "r"},
		Constraints: []Constraint{{First: "r.width", Relation: "==", Offset: 1, Priority: "high"}},
	}
	b := &Document{
		Root:        View{Name: "r"},
		Constraints: []Constraint{{First: "r.width", Relation: "==", Offset: 1, Priority: 750}},
	}
	if Hash(a) != Hash(b) {
		t.Error("tier name and number should hash equally")
	}
	b.Constraints[0].Offset = 2
	if Hash(a) == Hash(b) {
		t.Error("different offsets should hash differently")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a.json", FormatJSON, true},
		{"dir/a.TOML", FormatTOML, true},
		{"a.yml", FormatYAML, true},
		{"a.yaml", FormatYAML, true},
		{"a.xml", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err == nil) != tt.ok || got != tt.want {
				t.Errorf("FormatFromPath(%q) = (%q, %v), want %q", tt.path, got, err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Root.Name != "root" || len(doc.Constraints) != 2 {
		t.Errorf("Load() = %+v, want root with 2 constraints", doc)
	}

	_, err = Load(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	doc, err := Decode([]byte(jsonDoc), FormatJSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(doc, &buf, format); err != nil {
				t.Fatalf("Write: %v", err)
			}
			back, err := Decode(buf.Bytes(), format)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if Hash(back) != Hash(doc) {
				t.Error("round trip changed the document hash")
			}
		})
	}
}

func TestFramesAndResize(t *testing.T) {
	doc, err := Decode([]byte(jsonDoc), FormatJSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	b, err := Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b.ResizeRoot(640, 0)
	if got := b.Root.Frame(); got.Width != 640 || got.Height != 300 {
		t.Errorf("root frame = %v, want 640x300", got)
	}
	solve(t, b)

	want := []Frame{
		{Name: "root", X: 0, Y: 0, Width: 640, Height: 300},
		{Name: "a", Parent: "root", X: 10, Y: 5, Width: 40, Height: 20},
	}
	got := Frames(b.Root)
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("Frames() mismatch (-want +got):\n%s", diff)
	}

	b2, _ := Build(doc)
	b2.ApplyFrames(got)
	if diff := cmp.Diff(want, Frames(b2.Root), cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("ApplyFrames mismatch (-want +got):\n%s", diff)
	}
}
