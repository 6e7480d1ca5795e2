// Package transfer implements the resumable download engine. For each
// asset it decides whether to skip, resume, or restart the transfer,
// performs the (possibly ranged) fetch, and reports a terminal outcome.
package transfer

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/vfaronov/httpheader"

	"github.com/fragtion/github-release-fetcher/internal/logger"
	"github.com/fragtion/github-release-fetcher/internal/manifest"
)

// mode is the per-asset transfer state derived from local storage. The
// partial file's byte length is the only resume checkpoint; there is no
// separate journal.
type mode int

const (
	modeFresh mode = iota
	modeResume
	modeComplete
)

// Engine downloads release assets one at a time, resuming partial files
// from their existing byte length. Each destination path belongs to
// exactly one asset per run; a second asset whose sanitized name lands on
// an already-claimed path fails instead of overwriting it.
type Engine struct {
	client    *http.Client
	token     string
	chunkSize int
	reporter  ProgressReporter
	claimed   map[string]string // destination path -> manifest asset name
}

// NewEngine builds an engine. A nil client gets a default without a
// request timeout: asset bodies can legitimately take a long time, so
// cancellation is the caller's context's job. A nil reporter disables
// progress output.
func NewEngine(client *http.Client, token string, chunkSize int, rep ProgressReporter) *Engine {
	if client == nil {
		client = &http.Client{}
	}
	if chunkSize <= 0 {
		chunkSize = 1 << 20
	}
	if rep == nil {
		rep = NopReporter{}
	}
	return &Engine{
		client:    client,
		token:     token,
		chunkSize: chunkSize,
		reporter:  rep,
		claimed:   make(map[string]string),
	}
}

// Transfer runs the inspect/fetch/stream state machine for one asset and
// returns its terminal outcome. On failure mid-stream all bytes written
// so far stay on disk as resume state for the next run.
func (e *Engine) Transfer(ctx context.Context, asset manifest.Asset, destDir string) Outcome {
	name, err := SanitizeAssetName(asset.Name)
	if err != nil {
		return Outcome{Asset: asset, Kind: Failed, Err: err}
	}
	path := filepath.Join(destDir, name)
	if prev, taken := e.claimed[path]; taken && prev != asset.Name {
		return Outcome{Asset: asset, Kind: Failed, Path: path,
			Err: errors.Errorf("asset %q sanitizes to the same file name as %q", asset.Name, prev)}
	}
	e.claimed[path] = asset.Name

	m, offset, err := e.inspect(path, asset.Size)
	if err != nil {
		return Outcome{Asset: asset, Kind: Failed, Path: path, Err: err}
	}
	if m == modeComplete {
		logger.Log.Debug("asset already complete", "name", asset.Name, "path", path)
		return Outcome{Asset: asset, Kind: SkippedAlreadyComplete, Path: path, Bytes: asset.Size}
	}

	out, err := e.fetch(ctx, asset, path, m, offset)
	if err != nil {
		return Outcome{Asset: asset, Kind: Failed, Path: path, Bytes: localSize(path), Err: err}
	}
	return out
}

// inspect decides fresh/resume/complete from the local file. A file
// longer than the declared size is treated as corrupt and discarded; the
// engine never resumes past the declared size.
func (e *Engine) inspect(path string, declared int64) (mode, int64, error) {
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return modeFresh, 0, nil
	}
	if err != nil {
		return modeFresh, 0, errors.Wrap(err, "inspect local file")
	}

	switch {
	case fi.Size() == declared:
		return modeComplete, declared, nil
	case fi.Size() > declared:
		logger.Log.Warn("local file exceeds declared size; discarding",
			"path", path, "size", fi.Size(), "declared", declared)
		if err := os.Remove(path); err != nil {
			return modeFresh, 0, errors.Wrap(err, "discard oversized file")
		}
		return modeFresh, 0, nil
	default:
		return modeResume, fi.Size(), nil
	}
}

func (e *Engine) fetch(ctx context.Context, asset manifest.Asset, path string, m mode, offset int64) (Outcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.BrowserDownloadURL, nil)
	if err != nil {
		return Outcome{}, errors.Wrap(err, "create request")
	}
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	if m == modeResume {
		req.Header.Set("Range", "bytes="+strconv.FormatInt(offset, 10)+"-")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return Outcome{}, errors.Wrap(err, "request asset")
	}
	defer resp.Body.Close()

	switch {
	case m == modeResume && resp.StatusCode == http.StatusPartialContent:
		// Keep appending.
	case resp.StatusCode == http.StatusOK:
		if m == modeResume {
			// Server ignored the Range header; restart from byte 0.
			logger.Log.Warn("server does not support ranged requests; restarting",
				"name", asset.Name)
			m = modeFresh
			offset = 0
		}
	default:
		return Outcome{}, errors.Errorf("unexpected status %s", resp.Status)
	}

	if _, cdName, err := httpheader.ContentDisposition(resp.Header); err == nil && cdName != "" && cdName != asset.Name {
		logger.Log.Debug("server suggests a different filename",
			"asset", asset.Name, "suggested", cdName)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if m == modeResume {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return Outcome{}, errors.Wrap(err, "open destination file")
	}

	start := time.Now()
	pr := newProgressReader(resp.Body, asset.Name, offset, asset.Size, e.reporter)
	buf := make([]byte, e.chunkSize)
	// Hide the file's ReaderFrom so the copy really goes through buf.
	written, copyErr := io.CopyBuffer(struct{ io.Writer }{f}, pr, buf)

	if cerr := f.Close(); cerr != nil && copyErr == nil {
		copyErr = cerr
	}
	if copyErr != nil {
		// Bytes already written stay on disk as resume state.
		return Outcome{}, errors.Wrap(copyErr, "stream asset")
	}
	e.reporter.Done(asset.Name, offset+written, time.Since(start))

	kind := Downloaded
	if m == modeResume {
		kind = ResumedAndCompleted
	}
	return Outcome{Asset: asset, Kind: kind, Path: path, Bytes: offset + written}, nil
}

func localSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
