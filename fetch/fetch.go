// Package fetch loads the remote resources a template refers to: images,
// backgrounds and custom font files.
package fetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yahya12213/certgen"
)

// Fetcher returns the bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) { return f(ctx, url) }

// DefaultMaxBytes caps a single download.
const DefaultMaxBytes = 20 << 20

// HTTPFetcher fetches http and https URLs.
type HTTPFetcher struct {
	Client    *http.Client
	MaxBytes  int64
	UserAgent string
}

// NewHTTPFetcher returns a fetcher with the given client timeout and size cap.
// A zero timeout leaves latency to the context passed to Fetch; a zero cap
// selects DefaultMaxBytes.
func NewHTTPFetcher(timeout time.Duration, maxBytes int64) *HTTPFetcher {
	if timeout < 0 {
		timeout = 0
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		MaxBytes:  maxBytes,
		UserAgent: "certgen",
	}
}

func (h *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: %w: %v", rawURL, certgen.ErrFetch, err)
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: %w: %v", rawURL, certgen.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: %s: %w: status %d", rawURL, certgen.ErrFetch, resp.StatusCode)
	}
	limit := h.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: %w: %v", rawURL, certgen.ErrFetch, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("fetch: %s: %w: larger than %d bytes", rawURL, certgen.ErrFetch, limit)
	}
	return data, nil
}

// FileFetcher reads files below Root. Both plain paths and file:// URLs are
// accepted; paths escaping Root are rejected.
type FileFetcher struct {
	Root string
}

func (f FileFetcher) Fetch(_ context.Context, ref string) ([]byte, error) {
	p := strings.TrimPrefix(ref, "file://")
	if f.Root != "" {
		root, err := filepath.Abs(f.Root)
		if err != nil {
			return nil, fmt.Errorf("fetch: %s: %w: %v", ref, certgen.ErrFetch, err)
		}
		p = filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(p, "/")))
		if p != root && !strings.HasPrefix(p, root+string(filepath.Separator)) {
			return nil, fmt.Errorf("fetch: %s: %w: outside asset root", ref, certgen.ErrFetch)
		}
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: %w: %v", ref, certgen.ErrFetch, err)
	}
	return data, nil
}

// Mux dispatches on the URL scheme: http and https go to HTTP, data URIs are
// decoded in place and everything else is read through Files. A nil Files
// rejects local references.
type Mux struct {
	HTTP  Fetcher
	Files Fetcher
}

func (m Mux) Fetch(ctx context.Context, ref string) ([]byte, error) {
	switch scheme(ref) {
	case "http", "https":
		if m.HTTP == nil {
			return nil, fmt.Errorf("fetch: %s: %w: remote fetching disabled", ref, certgen.ErrFetch)
		}
		return m.HTTP.Fetch(ctx, ref)
	case "data":
		return DecodeDataURI(ref)
	}
	if m.Files == nil {
		return nil, fmt.Errorf("fetch: %s: %w: local files disabled", ref, certgen.ErrFetch)
	}
	return m.Files.Fetch(ctx, ref)
}

// DecodeDataURI decodes a base64 data URI such as "data:image/png;base64,...".
func DecodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("fetch: data uri: %w: only base64 payloads are supported", certgen.ErrFetch)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("fetch: data uri: %w: %v", certgen.ErrFetch, err)
	}
	return data, nil
}

// Qualify joins a relative src such as "/uploads/logo.png" onto base. URLs
// that already carry a scheme are returned unchanged, as is everything when
// base is empty.
func Qualify(base, src string) string {
	src = strings.TrimSpace(src)
	if src == "" || base == "" || scheme(src) != "" {
		return src
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(src, "/")
}

func scheme(ref string) string {
	i := strings.Index(ref, ":")
	if i <= 1 {
		return ""
	}
	s := strings.ToLower(ref[:i])
	switch s {
	case "http", "https", "data", "file":
		return s
	}
	return ""
}
