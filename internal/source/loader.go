// Package source fetches tabular resources and memoizes the parsed tables by URL.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/KaramelBytes/hospimap-cli/internal/dataset"
	"github.com/KaramelBytes/hospimap-cli/internal/monitoring"
	"github.com/KaramelBytes/hospimap-cli/internal/parser"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 30 * time.Second

// maxPayload caps how much of a response body is read. Larger bodies fail the fetch.
var maxPayload int64 = 64 << 20

// HTTPClient is the subset of *http.Client the loader needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Loader fetches and parses tabular resources. Tables are cached per URL for the
// lifetime of the Loader and shared read-only between callers.
type Loader struct {
	client  HTTPClient
	timeout time.Duration

	mu    sync.Mutex
	cache map[string]*dataset.Table
}

// NewLoader returns a Loader with the given per-fetch timeout. Zero uses DefaultTimeout.
func NewLoader(timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewLoaderWithClient(&http.Client{Timeout: timeout}, timeout)
}

// NewLoaderWithClient is NewLoader with a caller-supplied HTTP client.
func NewLoaderWithClient(c HTTPClient, timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Loader{client: c, timeout: timeout, cache: make(map[string]*dataset.Table)}
}

// Load returns the table for url, fetching it on first use. Failed loads are not cached.
func (l *Loader) Load(ctx context.Context, url string) (*dataset.Table, error) {
	l.mu.Lock()
	if t, ok := l.cache[url]; ok {
		l.mu.Unlock()
		monitoring.Logf("source: cache hit for %s", url)
		return t, nil
	}
	l.mu.Unlock()

	start := time.Now()
	body, contentType, err := l.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	t, err := parser.Parse(url, contentType, body)
	if err != nil {
		return nil, &ParseError{URL: url, Err: err}
	}
	monitoring.Logf("source: loaded %s (%d rows, %d columns) in %v", url, t.Len(), len(t.Columns()), time.Since(start))

	l.mu.Lock()
	defer l.mu.Unlock()
	// a concurrent load may have won; keep the first table so callers agree
	if prev, ok := l.cache[url]; ok {
		return prev, nil
	}
	l.cache[url] = t
	return t, nil
}

// Invalidate drops the cached table for url.
func (l *Loader) Invalidate(url string) {
	l.mu.Lock()
	delete(l.cache, url)
	l.mu.Unlock()
}

// Reset drops every cached table.
func (l *Loader) Reset() {
	l.mu.Lock()
	l.cache = make(map[string]*dataset.Table)
	l.mu.Unlock()
}

// Cached reports whether url has a cached table.
func (l *Loader) Cached(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.cache[url]
	return ok
}

// ReadResource returns the raw bytes behind url: http(s) URLs are fetched with the
// loader's client and timeout, anything else is read from disk.
func (l *Loader) ReadResource(ctx context.Context, url string) ([]byte, error) {
	b, _, err := l.fetch(ctx, url)
	return b, err
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, string, error) {
	if !isRemote(url) {
		path := strings.TrimPrefix(url, "file://")
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, "", &FetchError{URL: url, Err: err}
		}
		return b, "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", &FetchError{URL: url, Err: err}
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload+1))
	if err != nil {
		return nil, "", &FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(b)) > maxPayload {
		return nil, "", &FetchError{URL: url, Err: fmt.Errorf("payload exceeds %d bytes", maxPayload)}
	}
	return b, resp.Header.Get("Content-Type"), nil
}

func isRemote(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
