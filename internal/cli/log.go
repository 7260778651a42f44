package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes leveled, timestamped records ("14:32:01.45 INFO ...") to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
	})
}

// progress times one pipeline pass.
type progress struct {
	logger  *log.Logger
	started time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, started: time.Now()}
}

// done logs msg with the elapsed time, for example "Encoded 1200 of 1200 rows (85ms)".
func (p *progress) done(msg string) {
	elapsed := time.Since(p.started).Round(time.Millisecond)
	p.logger.Infof("%s (%s)", msg, elapsed)
}
