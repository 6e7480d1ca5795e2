// Package verify checks completed transfers against the manifest's
// declared sizes and aggregates per-asset outcomes into a run summary.
package verify

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/fragtion/github-release-fetcher/internal/transfer"
)

// Refine re-reads the final size of a completed transfer and reclassifies
// it as a size mismatch when the bytes on disk disagree with the declared
// size. The file is kept either way, for inspection or a later resume.
// Outcomes other than Downloaded/ResumedAndCompleted pass through.
func Refine(o transfer.Outcome) transfer.Outcome {
	switch o.Kind {
	case transfer.Downloaded, transfer.ResumedAndCompleted:
	default:
		return o
	}

	fi, err := os.Stat(o.Path)
	if err != nil {
		return transfer.Outcome{Asset: o.Asset, Kind: transfer.Failed, Path: o.Path, Err: err}
	}
	if fi.Size() != o.Asset.Size {
		return transfer.Outcome{Asset: o.Asset, Kind: transfer.SizeMismatch, Path: o.Path, Bytes: fi.Size()}
	}
	o.Bytes = fi.Size()
	return o
}

// Summary aggregates per-asset outcomes, keeping manifest order for
// rendering and a name index for lookups. Individual failures never make
// the summary itself error; the caller decides the exit status.
type Summary struct {
	outcomes []transfer.Outcome
	byName   map[string]transfer.Outcome
}

func NewSummary() *Summary {
	return &Summary{byName: make(map[string]transfer.Outcome)}
}

func (s *Summary) Add(o transfer.Outcome) {
	s.outcomes = append(s.outcomes, o)
	s.byName[o.Asset.Name] = o
}

// Outcome returns the final outcome recorded for an asset name.
func (s *Summary) Outcome(name string) (transfer.Outcome, bool) {
	o, ok := s.byName[name]
	return o, ok
}

func (s *Summary) Len() int { return len(s.outcomes) }

// Failed reports whether any asset ended in Failed or SizeMismatch.
func (s *Summary) Failed() bool { return s.FailedCount() > 0 }

func (s *Summary) FailedCount() int {
	n := 0
	for _, o := range s.outcomes {
		if o.Kind == transfer.Failed || o.Kind == transfer.SizeMismatch {
			n++
		}
	}
	return n
}

var (
	nameStyle = lipgloss.NewStyle().Bold(true)
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	muted     = lipgloss.NewStyle().Faint(true)
)

// Render produces the human-readable per-asset report. Sizes are shown
// humanized for display only; all comparisons happen on raw byte counts.
func (s *Summary) Render() string {
	var b strings.Builder
	for _, o := range s.outcomes {
		status := okStyle.Render(o.Kind.String())
		if o.Kind == transfer.Failed || o.Kind == transfer.SizeMismatch {
			status = badStyle.Render(o.Kind.String())
		}

		detail := fmt.Sprintf("declared %s, on disk %s",
			humanize.IBytes(uint64(o.Asset.Size)), humanize.IBytes(uint64(o.Bytes)))
		if o.Err != nil {
			detail = o.Err.Error()
		}

		fmt.Fprintf(&b, "  %s  %s %s\n",
			nameStyle.Render(o.Asset.Name), status, muted.Render("("+detail+")"))
	}
	return b.String()
}
