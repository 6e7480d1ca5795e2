package manifest

import "time"

// Release is the subset of the GitHub release payload that grf uses.
// Decoding happens once at the resolver boundary; the rest of the program
// never sees raw API payloads.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []Asset   `json:"assets"`
}

// Asset is a single downloadable file attached to a release. Size is the
// declared size reported by the API and is authoritative for verification;
// it is never derived from a partial download.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}
