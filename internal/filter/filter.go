// Package filter applies include/exclude name predicates to a release
// manifest's assets.
package filter

import (
	"slices"

	"github.com/fragtion/github-release-fetcher/internal/manifest"
)

// Criteria holds the include/exclude name lists. Matching is always a
// case-sensitive comparison against the full asset name. A non-empty
// include list admits only the listed names; exclude is applied after
// include and always wins.
type Criteria struct {
	Include []string
	Exclude []string
}

func (c Criteria) Empty() bool {
	return len(c.Include) == 0 && len(c.Exclude) == 0
}

// Match reports whether a single asset name passes the criteria.
func (c Criteria) Match(name string) bool {
	if len(c.Include) > 0 && !slices.Contains(c.Include, name) {
		return false
	}
	return !slices.Contains(c.Exclude, name)
}

// Apply returns the assets passing the criteria, preserving manifest
// order. An empty result is valid.
func Apply(assets []manifest.Asset, c Criteria) []manifest.Asset {
	selected := make([]manifest.Asset, 0, len(assets))
	for _, a := range assets {
		if c.Match(a.Name) {
			selected = append(selected, a)
		}
	}
	return selected
}
