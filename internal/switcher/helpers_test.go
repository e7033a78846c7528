package switcher

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-site/internal/app"
	"github.com/jonathan/resume-site/internal/fetch"
	"github.com/jonathan/resume-site/internal/storage"
	"github.com/jonathan/resume-site/internal/types"
)

const twoResumes = `{
  "version": "1.0.0",
  "generated": "2025-01-01T00:00:00",
  "totalResumes": 2,
  "resumes": {
    "alpha_role": {"jsonFile": "resources/a/a.json", "jsonSize": 1, "jsonLastModified": 0, "hasPngPhoto": false},
    "beta_role": {"jsonFile": "resources/b/b.json", "jsonSize": 1, "jsonLastModified": 0, "hasPngPhoto": true}
  }
}`

const threeThemes = `{
  "version": "1.0.0",
  "totalThemes": 3,
  "themes": {
    "light": {"filePath": "css/light/theme.css"},
    "dark": {"filePath": "css/dark/theme.css"},
    "pdf": {"filePath": "css/pdf/theme.css"}
  }
}`

type fixture struct {
	app   *app.Context
	store *recordingStore
	nav   *app.RecordingNavigator
}

func newFixture(t *testing.T, files fstest.MapFS, rawURL string, seed map[string]string) *fixture {
	t.Helper()
	loc, err := url.Parse("http://localhost:8080/")
	require.NoError(t, err)
	if rawURL != "" {
		loc, err = url.Parse(rawURL)
		require.NoError(t, err)
	}
	store := &recordingStore{Store: storage.NewMemory(seed), writes: map[string]int{}}
	nav := &app.RecordingNavigator{}
	c, err := app.New(app.Options{
		Source:    fetch.NewFSSource(files),
		Store:     store,
		Location:  loc,
		Navigator: nav,
	})
	require.NoError(t, err)
	return &fixture{app: c, store: store, nav: nav}
}

// recordingStore counts writes per key.
type recordingStore struct {
	storage.Store

	mu     sync.Mutex
	writes map[string]int
}

func (r *recordingStore) Set(ctx context.Context, key, value string) error {
	r.mu.Lock()
	r.writes[key]++
	r.mu.Unlock()
	return r.Store.Set(ctx, key, value)
}

func (r *recordingStore) Writes(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes[key]
}

// countingRenderer records Load calls.
type countingRenderer struct {
	mu    sync.Mutex
	paths []string
}

func (r *countingRenderer) Load(_ context.Context, path string) (*types.ResumeData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return &types.ResumeData{}, nil
}

func (r *countingRenderer) Loads() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

type countingHelper struct {
	mu    sync.Mutex
	calls int
}

func (h *countingHelper) RefreshToggle() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
}

func (h *countingHelper) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}
