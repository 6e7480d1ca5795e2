package manifest

import "context"

// Source abstracts release manifest resolution.
type Source interface {
	// Resolve returns the manifest for the named release, or for the
	// latest published release when ref is empty.
	Resolve(ctx context.Context, owner, repo, ref string) (*Release, error)
}
