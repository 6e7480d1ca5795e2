package transfer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ProgressReporter receives transfer progress updates.
type ProgressReporter interface {
	Start(name string, resumedFrom, total int64)
	Advance(name string, current, total int64, perSecond float64)
	Done(name string, total int64, elapsed time.Duration)
}

// NopReporter discards all progress events.
type NopReporter struct{}

func (NopReporter) Start(string, int64, int64)            {}
func (NopReporter) Advance(string, int64, int64, float64) {}
func (NopReporter) Done(string, int64, time.Duration)     {}

// ConsoleReporter renders a progress bar with the current transfer rate,
// throttled so it does not flood the terminal.
type ConsoleReporter struct {
	w          io.Writer
	lastUpdate time.Time
}

func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleReporter{w: w}
}

func (c *ConsoleReporter) Start(name string, resumedFrom, total int64) {
	if resumedFrom > 0 {
		fmt.Fprintf(c.w, "%s: resuming at %s of %s\n",
			name, humanize.IBytes(uint64(resumedFrom)), humanize.IBytes(uint64(total)))
		return
	}
	fmt.Fprintf(c.w, "%s: downloading %s\n", name, humanize.IBytes(uint64(total)))
}

func (c *ConsoleReporter) Advance(name string, current, total int64, perSecond float64) {
	now := time.Now()
	if now.Sub(c.lastUpdate) < 200*time.Millisecond {
		return
	}
	c.lastUpdate = now
	fmt.Fprintf(c.w, "\r%s %s/s", bar(current, total), humanize.IBytes(uint64(perSecond)))
}

func (c *ConsoleReporter) Done(name string, total int64, elapsed time.Duration) {
	perSecond := float64(total) / elapsed.Seconds()
	if elapsed.Seconds() <= 0 {
		perSecond = 0
	}
	fmt.Fprintf(c.w, "\r%s %s/s\n", bar(total, total), humanize.IBytes(uint64(perSecond)))
}

const barWidth = 50

func bar(current, total int64) string {
	if total <= 0 {
		return fmt.Sprintf("[%s]   ?%%", strings.Repeat(".", barWidth))
	}
	pct := float64(current) / float64(total) * 100
	filled := int(pct / 100 * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	return fmt.Sprintf("[%s%s] %3.0f%%",
		strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled), pct)
}

// progressReader relays read progress to a reporter. The transfer rate
// counts only bytes moved this session, not a resumed prefix.
type progressReader struct {
	r        io.Reader
	name     string
	offset   int64
	current  int64
	total    int64
	start    time.Time
	reporter ProgressReporter
}

func newProgressReader(r io.Reader, name string, offset, total int64, rep ProgressReporter) *progressReader {
	pr := &progressReader{
		r:        r,
		name:     name,
		offset:   offset,
		current:  offset,
		total:    total,
		start:    time.Now(),
		reporter: rep,
	}
	rep.Start(name, offset, total)
	return pr
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.current += int64(n)
		elapsed := time.Since(pr.start).Seconds()
		if elapsed <= 0 {
			elapsed = 0.001
		}
		pr.reporter.Advance(pr.name, pr.current, pr.total, float64(pr.current-pr.offset)/elapsed)
	}
	return n, err
}
