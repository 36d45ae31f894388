package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. It writes to w, drops messages below
// level and stamps each line with the wall-clock time as "HH:MM:SS.ms"
// (e.g., "09:41:07.32"). The same logger is handed to the layout engine and
// the pipeline runner, so pass statistics and cache decisions show up in
// one stream.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress remembers when an operation started and reports its duration
// once it finishes. A progress belongs to one command run; done is not
// safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress starts timing an operation now. Call done when it completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the time elapsed since newProgress,
// rounded to the millisecond.
// Example output: "Solved 12 views (4ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
