// Package fetch retrieves site assets (manifests, résumé documents) from an
// HTTP origin or a local directory behind one Source interface.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeSite/1.0)"

// Result holds the raw body of a fetch.
type Result struct {
	URL         string
	Body        []byte
	ContentType string
	StatusCode  int
}

// Error represents an error during fetching.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err means the asset does not exist.
func IsNotFound(err error) bool {
	var fe *Error
	if errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// URL retrieves the body of an absolute URL. Any status outside 2xx is an error;
// the Result is still returned so callers can inspect the status.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	client := &http.Client{
		Timeout: opts.Timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	req.Header.Set("User-Agent", opts.UserAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	result := &Result{
		URL:         urlStr,
		Body:        bodyBytes,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	return result, nil
}

// Source resolves site-relative paths (such as "data/resumes.json") to bytes.
type Source interface {
	Fetch(ctx context.Context, relPath string) ([]byte, error)
}

// HTTPSource fetches relative paths from a base URL, the way the page does
// when it is served.
type HTTPSource struct {
	base    *url.URL
	options *Options
}

// NewHTTPSource creates a source rooted at baseURL.
func NewHTTPSource(baseURL string, opts *Options) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &Error{URL: baseURL, Message: "invalid base URL", Cause: err}
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTTPSource{base: u, options: opts}, nil
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, relPath string) ([]byte, error) {
	ref, err := url.Parse(strings.TrimPrefix(relPath, "/"))
	if err != nil {
		return nil, &Error{URL: relPath, Message: "invalid path", Cause: err}
	}
	result, err := URL(ctx, s.base.ResolveReference(ref).String(), s.options)
	if err != nil {
		return nil, err
	}
	return result.Body, nil
}

// DirSource reads relative paths from a directory tree, for offline builds.
type DirSource struct {
	fsys fs.FS
	root string
}

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{fsys: os.DirFS(dir), root: dir}
}

// NewFSSource creates a source over an arbitrary filesystem.
func NewFSSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys, root: "(fs)"}
}

// Fetch implements Source.
func (s *DirSource) Fetch(ctx context.Context, relPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := path.Clean(strings.TrimPrefix(relPath, "/"))
	if !fs.ValidPath(clean) {
		return nil, &Error{URL: relPath, Message: "path escapes site root"}
	}
	data, err := fs.ReadFile(s.fsys, clean)
	if err != nil {
		status := 0
		if errors.Is(err, fs.ErrNotExist) {
			status = http.StatusNotFound
		}
		return nil, &Error{
			URL:        path.Join(s.root, clean),
			Message:    "failed to read file",
			StatusCode: status,
			Cause:      err,
		}
	}
	return data, nil
}
