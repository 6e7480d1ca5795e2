package manifest

import (
	"fmt"
	"time"
)

// NotFoundError reports a missing repository or release. Ref is the
// requested tag, or "latest" when no tag was given.
type NotFoundError struct {
	Owner string
	Repo  string
	Ref   string
}

func (e *NotFoundError) Error() string {
	if e.Ref == "" || e.Ref == "latest" {
		return fmt.Sprintf("no release found for %s/%s", e.Owner, e.Repo)
	}
	return fmt.Sprintf("release %q not found in %s/%s", e.Ref, e.Owner, e.Repo)
}

// RateLimitError reports API throttling. RetryAfter is zero when the
// upstream gave no hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("GitHub API rate limit exceeded; retry after %s", e.RetryAfter.Round(time.Second))
	}
	return "GitHub API rate limit exceeded"
}
