package transfer

import "github.com/fragtion/github-release-fetcher/internal/manifest"

// Kind classifies the terminal result of one asset transfer.
type Kind int

const (
	Downloaded Kind = iota
	ResumedAndCompleted
	SkippedAlreadyComplete
	SkippedFiltered
	Failed
	SizeMismatch
)

func (k Kind) String() string {
	switch k {
	case Downloaded:
		return "downloaded"
	case ResumedAndCompleted:
		return "resumed and completed"
	case SkippedAlreadyComplete:
		return "skipped (already complete)"
	case SkippedFiltered:
		return "skipped (filtered)"
	case Failed:
		return "failed"
	case SizeMismatch:
		return "size mismatch"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result for one asset. It is created by the
// engine, refined by the verify package, and never mutated afterwards.
type Outcome struct {
	Asset manifest.Asset
	Kind  Kind
	Path  string // local destination path
	Bytes int64  // bytes present locally when the transfer ended
	Err   error  // set when Kind == Failed
}

// Success reports whether the asset ended up complete on disk as far as
// the engine can tell. Size verification may still refine the outcome.
func (o Outcome) Success() bool {
	switch o.Kind {
	case Downloaded, ResumedAndCompleted, SkippedAlreadyComplete:
		return true
	}
	return false
}
