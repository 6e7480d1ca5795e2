// Package manifest resolves GitHub release manifests. It turns a
// repository URL plus an optional release tag into a typed listing of the
// release's assets, defaulting to the latest published release.
package manifest
