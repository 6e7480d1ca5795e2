package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vfaronov/httpheader"
)

const defaultUserAgent = "grf (github-release-fetcher)"

type gitHubSource struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewGitHubSource returns a Source backed by the GitHub REST API.
// A nil client gets a fixed request-wide timeout suitable for metadata
// calls. If token is non-empty it is used for authentication and
// rate-limit relief.
func NewGitHubSource(client *http.Client, baseURL, token string) Source {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &gitHubSource{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

func (s *gitHubSource) Resolve(ctx context.Context, owner, repo, ref string) (*Release, error) {
	if ref != "" {
		var rel Release
		url := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", s.baseURL, owner, repo, ref)
		if err := s.getJSON(ctx, url, owner, repo, ref, &rel); err != nil {
			return nil, err
		}
		return &rel, nil
	}

	var rel Release
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", s.baseURL, owner, repo)
	err := s.getJSON(ctx, url, owner, repo, "latest", &rel)
	if err == nil {
		return &rel, nil
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		return nil, err
	}

	// Nothing is marked latest. List the releases and pick the most
	// recently published one ourselves.
	var all []Release
	url = fmt.Sprintf("%s/repos/%s/%s/releases", s.baseURL, owner, repo)
	if lerr := s.getJSON(ctx, url, owner, repo, "", &all); lerr != nil {
		return nil, lerr
	}
	best := pickLatest(all)
	if best == nil {
		return nil, err // the original not-found stands
	}
	return best, nil
}

func (s *gitHubSource) getJSON(ctx context.Context, url, owner, repo, ref string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", defaultUserAgent)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch release metadata: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Owner: owner, Repo: repo, Ref: ref}
	case isRateLimited(resp):
		return &RateLimitError{RetryAfter: retryAfterHint(resp)}
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return fmt.Errorf("fetch release metadata: status=%s body=%s", resp.Status, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode release JSON: %w", err)
	}
	return nil
}

func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden &&
		resp.Header.Get("X-RateLimit-Remaining") == "0"
}

// retryAfterHint extracts the upstream throttling hint, if any. GitHub
// sends Retry-After (delta seconds or an HTTP date) or X-RateLimit-Reset
// as a Unix timestamp.
func retryAfterHint(resp *http.Response) time.Duration {
	if t := httpheader.RetryAfter(resp.Header); !t.IsZero() {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	if s := resp.Header.Get("X-RateLimit-Reset"); s != "" {
		if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
			if d := time.Until(time.Unix(epoch, 0)); d > 0 {
				return d
			}
		}
	}
	return 0
}
