package manifest

import (
	"strconv"
	"strings"
)

// pickLatest chooses the most recently published non-draft release.
// Equal publish times fall back to version-aware tag comparison.
func pickLatest(rels []Release) *Release {
	var best *Release
	for i := range rels {
		r := &rels[i]
		if r.Draft {
			continue
		}
		if best == nil {
			best = r
			continue
		}
		if r.PublishedAt.After(best.PublishedAt) ||
			(r.PublishedAt.Equal(best.PublishedAt) && tagGreater(r.TagName, best.TagName)) {
			best = r
		}
	}
	return best
}

// tagGreater reports whether tag a denotes a newer version than tag b.
// Tags are compared on dotted numeric segments after stripping a leading
// "v"; a release outranks a prerelease of the same core; tags that are
// not version-like fall back to lexical order.
func tagGreater(a, b string) bool {
	ac, apre, aok := splitTag(a)
	bc, bpre, bok := splitTag(b)

	if aok != bok {
		return aok
	}
	if !aok {
		return a > b
	}

	n := len(ac)
	if len(bc) > n {
		n = len(bc)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(ac) {
			av = ac[i]
		}
		if i < len(bc) {
			bv = bc[i]
		}
		if av != bv {
			return av > bv
		}
	}

	if (apre == "") != (bpre == "") {
		return apre == ""
	}
	return apre > bpre
}

// splitTag parses a tag like "v1.2.3-rc.1" into numeric core segments and
// a prerelease suffix. ok is false when the core is not purely numeric.
func splitTag(tag string) (core []int, pre string, ok bool) {
	tag = strings.TrimSpace(tag)
	if len(tag) > 1 && (tag[0] == 'v' || tag[0] == 'V') {
		tag = tag[1:]
	}

	main := tag
	if i := strings.IndexByte(tag, '-'); i >= 0 {
		main = tag[:i]
		pre = tag[i+1:]
	}
	if main == "" {
		return nil, "", false
	}

	for _, p := range strings.Split(main, ".") {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, "", false
		}
		core = append(core, v)
	}
	return core, pre, true
}
