package manifest

import (
	"fmt"
	"strings"
)

const (
	githubPrefix = "https://github.com/"
	apiPrefix    = "https://api.github.com/repos/"
	tagMarker    = "/releases/tag/"
)

// ParseRepoURL extracts owner and repository from a GitHub web or API URL.
// A release tag URL (…/releases/tag/<tag>) additionally yields the tag.
func ParseRepoURL(raw string) (owner, repo, tag string, err error) {
	var rest string
	switch {
	case strings.HasPrefix(raw, apiPrefix):
		rest = strings.TrimPrefix(raw, apiPrefix)
	case strings.HasPrefix(raw, githubPrefix):
		rest = strings.TrimPrefix(raw, githubPrefix)
		if i := strings.Index(raw, tagMarker); i >= 0 {
			tag = strings.Trim(raw[i+len(tagMarker):], "/")
		}
	default:
		return "", "", "", fmt.Errorf("unsupported URL %q: expected a github.com repository or API URL", raw)
	}

	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("cannot extract owner/repo from %q", raw)
	}
	return parts[0], parts[1], tag, nil
}
