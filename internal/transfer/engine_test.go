package transfer

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/fragtion/github-release-fetcher/internal/manifest"
)

// assetServer serves one asset body, optionally honoring Range requests.
type assetServer struct {
	*httptest.Server
	content    []byte
	calls      int
	lastRange  string
	honorRange bool
}

func newAssetServer(content []byte, honorRange bool) *assetServer {
	s := &assetServer{content: content, honorRange: honorRange}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls++
		s.lastRange = r.Header.Get("Range")

		if s.lastRange != "" && s.honorRange {
			var off int64
			fmt.Sscanf(s.lastRange, "bytes=%d-", &off)
			w.Header().Set("Content-Range",
				fmt.Sprintf("bytes %d-%d/%d", off, len(s.content)-1, len(s.content)))
			w.WriteHeader(http.StatusPartialContent)
			w.Write(s.content[off:])
			return
		}
		w.Write(s.content)
	}))
	return s
}

func (s *assetServer) asset(name string) manifest.Asset {
	return manifest.Asset{
		Name:               name,
		BrowserDownloadURL: s.URL + "/" + name,
		Size:               int64(len(s.content)),
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return b
}

func TestTransfer_Fresh(t *testing.T) {
	content := bytes.Repeat([]byte("x"), 4096)
	srv := newAssetServer(content, true)
	defer srv.Close()

	dir := t.TempDir()
	eng := NewEngine(nil, "", 1024, nil)
	out := eng.Transfer(context.Background(), srv.asset("a.bin"), dir)

	if out.Kind != Downloaded {
		t.Fatalf("Kind=%s (err=%v); want downloaded", out.Kind, out.Err)
	}
	if out.Bytes != int64(len(content)) {
		t.Fatalf("Bytes=%d; want %d", out.Bytes, len(content))
	}
	if got := readFile(t, out.Path); !bytes.Equal(got, content) {
		t.Fatalf("file content mismatch: got %d bytes", len(got))
	}
}

func TestTransfer_SecondRunSkipsWithoutNetwork(t *testing.T) {
	content := []byte("complete payload")
	srv := newAssetServer(content, true)
	defer srv.Close()

	dir := t.TempDir()
	eng := NewEngine(nil, "", 0, nil)

	if out := eng.Transfer(context.Background(), srv.asset("a.bin"), dir); out.Kind != Downloaded {
		t.Fatalf("first run Kind=%s; want downloaded", out.Kind)
	}
	callsAfterFirst := srv.calls

	out := eng.Transfer(context.Background(), srv.asset("a.bin"), dir)
	if out.Kind != SkippedAlreadyComplete {
		t.Fatalf("second run Kind=%s; want skipped (already complete)", out.Kind)
	}
	if srv.calls != callsAfterFirst {
		t.Fatalf("second run hit the network (%d calls)", srv.calls-callsAfterFirst)
	}
}

func TestTransfer_ResumesPartialFile(t *testing.T) {
	content := bytes.Repeat([]byte("abcdefgh"), 512)
	srv := newAssetServer(content, true)
	defer srv.Close()

	dir := t.TempDir()
	partial := content[:1000]
	if err := os.WriteFile(filepath.Join(dir, "a.bin"), partial, 0o644); err != nil {
		t.Fatalf("seed partial file: %v", err)
	}

	eng := NewEngine(nil, "", 0, nil)
	out := eng.Transfer(context.Background(), srv.asset("a.bin"), dir)

	if out.Kind != ResumedAndCompleted {
		t.Fatalf("Kind=%s (err=%v); want resumed and completed", out.Kind, out.Err)
	}
	if srv.lastRange != "bytes=1000-" {
		t.Fatalf("Range=%q; want bytes=1000-", srv.lastRange)
	}
	if got := readFile(t, out.Path); !bytes.Equal(got, content) {
		t.Fatalf("resumed file does not match remote content")
	}
}

func TestTransfer_OversizedLocalFileRestartsFresh(t *testing.T) {
	content := []byte("declared content")
	srv := newAssetServer(content, true)
	defer srv.Close()

	dir := t.TempDir()
	oversized := append(append([]byte{}, content...), []byte("trailing junk")...)
	if err := os.WriteFile(filepath.Join(dir, "a.bin"), oversized, 0o644); err != nil {
		t.Fatalf("seed oversized file: %v", err)
	}

	eng := NewEngine(nil, "", 0, nil)
	out := eng.Transfer(context.Background(), srv.asset("a.bin"), dir)

	if out.Kind != Downloaded {
		t.Fatalf("Kind=%s (err=%v); want downloaded", out.Kind, out.Err)
	}
	if srv.lastRange != "" {
		t.Fatalf("oversized file was resumed (Range=%q); want fresh fetch", srv.lastRange)
	}
	if got := readFile(t, out.Path); !bytes.Equal(got, content) {
		t.Fatalf("file was not rewritten from byte 0")
	}
}

func TestTransfer_ServerIgnoringRangeRestartsFresh(t *testing.T) {
	content := []byte("full body served regardless of range")
	srv := newAssetServer(content, false)
	defer srv.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.bin"), content[:10], 0o644); err != nil {
		t.Fatalf("seed partial file: %v", err)
	}

	eng := NewEngine(nil, "", 0, nil)
	out := eng.Transfer(context.Background(), srv.asset("a.bin"), dir)

	if out.Kind != Downloaded {
		t.Fatalf("Kind=%s (err=%v); want downloaded after restart", out.Kind, out.Err)
	}
	if got := readFile(t, out.Path); !bytes.Equal(got, content) {
		t.Fatalf("file content mismatch after restart: %d bytes", len(got))
	}
}

func TestTransfer_InterruptionKeepsPartialBytes(t *testing.T) {
	content := bytes.Repeat([]byte("y"), 1000)
	const served = 600

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Promise the full body but cut the connection early.
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		w.WriteHeader(http.StatusOK)
		w.Write(content[:served])
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	asset := manifest.Asset{
		Name:               "a.bin",
		BrowserDownloadURL: srv.URL + "/a.bin",
		Size:               int64(len(content)),
	}

	eng := NewEngine(nil, "", 64, nil)
	out := eng.Transfer(context.Background(), asset, dir)

	if out.Kind != Failed {
		t.Fatalf("Kind=%s; want failed", out.Kind)
	}
	if out.Err == nil {
		t.Fatalf("Failed outcome without an error")
	}
	got := readFile(t, filepath.Join(dir, "a.bin"))
	if len(got) != served {
		t.Fatalf("partial file has %d bytes; want %d (no truncation, no deletion)", len(got), served)
	}
}

func TestTransfer_HTTPErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dir := t.TempDir()
	asset := manifest.Asset{Name: "a.bin", BrowserDownloadURL: srv.URL + "/a.bin", Size: 10}

	eng := NewEngine(nil, "", 0, nil)
	out := eng.Transfer(context.Background(), asset, dir)

	if out.Kind != Failed || out.Err == nil {
		t.Fatalf("Kind=%s err=%v; want failed with error", out.Kind, out.Err)
	}
}

func TestTransfer_CollidingSanitizedNamesFailLaterAsset(t *testing.T) {
	content := []byte("first come, first written")
	srv := newAssetServer(content, true)
	defer srv.Close()

	dir := t.TempDir()
	eng := NewEngine(nil, "", 0, nil)

	// "a.bin" and "dir/a.bin" collapse to the same file name.
	first := eng.Transfer(context.Background(), srv.asset("a.bin"), dir)
	if first.Kind != Downloaded {
		t.Fatalf("first Kind=%s (err=%v); want downloaded", first.Kind, first.Err)
	}
	callsAfterFirst := srv.calls

	second := srv.asset("dir/a.bin")
	second.Size = int64(len(content)) + 7
	out := eng.Transfer(context.Background(), second, dir)
	if out.Kind != Failed || out.Err == nil {
		t.Fatalf("colliding Kind=%s err=%v; want failed with error", out.Kind, out.Err)
	}
	if srv.calls != callsAfterFirst {
		t.Fatalf("colliding asset hit the network")
	}
	if got := readFile(t, first.Path); !bytes.Equal(got, content) {
		t.Fatalf("first asset's file was disturbed by the collision")
	}

	// The same asset may safely be retried against the same path.
	if out := eng.Transfer(context.Background(), srv.asset("a.bin"), dir); out.Kind != SkippedAlreadyComplete {
		t.Fatalf("retry Kind=%s; want skipped (already complete)", out.Kind)
	}
}

func TestTransfer_RejectsUnsafeAssetName(t *testing.T) {
	eng := NewEngine(nil, "", 0, nil)
	out := eng.Transfer(context.Background(), manifest.Asset{Name: ".."}, t.TempDir())
	if out.Kind != Failed || out.Err == nil {
		t.Fatalf("Kind=%s err=%v; want failed on unsafe name", out.Kind, out.Err)
	}
}
