// Package app holds the per-page application context: the objects every
// component shares (bus, document, location, storage) and the registration
// slots through which components reach each other.
package app

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-site/internal/dom"
	"github.com/jonathan/resume-site/internal/events"
	"github.com/jonathan/resume-site/internal/fetch"
	"github.com/jonathan/resume-site/internal/manifest"
	"github.com/jonathan/resume-site/internal/storage"
)

// RendererWatchdog bounds how long the résumé switcher waits for a renderer.
const RendererWatchdog = 2000 * time.Millisecond

// ResumeSwitcher is the published résumé selector.
type ResumeSwitcher interface {
	ChangeResume(ctx context.Context, path string) error
	CurrentResume() string
}

// ThemeSwitcher is the published theme selector.
type ThemeSwitcher interface {
	ChangeTheme(ctx context.Context, key string) error
	CurrentTheme() string
}

// PDFHelper is notified when the active theme changes.
type PDFHelper interface {
	RefreshToggle()
}

// Options configures a Context. Zero fields get in-memory defaults.
type Options struct {
	Bus       *events.Bus
	Document  *dom.Document
	Source    fetch.Source
	Store     storage.Store
	Location  *url.URL
	Navigator Navigator
}

// Context is shared by the components of one page session.
type Context struct {
	ID        uuid.UUID
	Bus       *events.Bus
	Doc       *dom.Document
	Source    fetch.Source
	Store     storage.Store
	Manifests *manifest.Loader
	Navigator Navigator

	location *url.URL

	mu             sync.RWMutex
	renderer       events.ResumeLoader
	resumeSwitcher ResumeSwitcher
	themeSwitcher  ThemeSwitcher
	pdf            PDFHelper

	ready     chan struct{}
	readyOnce sync.Once
}

// New builds a Context. Source is required.
func New(opts Options) (*Context, error) {
	if opts.Source == nil {
		return nil, errors.New("app: a fetch source is required")
	}
	c := &Context{
		ID:        uuid.New(),
		Bus:       opts.Bus,
		Doc:       opts.Document,
		Source:    opts.Source,
		Store:     opts.Store,
		Manifests: manifest.NewLoader(opts.Source),
		Navigator: opts.Navigator,
		ready:     make(chan struct{}),
	}
	if c.Bus == nil {
		c.Bus = events.NewBus()
	}
	if c.Doc == nil {
		doc, err := dom.NewShell()
		if err != nil {
			return nil, err
		}
		c.Doc = doc
	}
	if c.Store == nil {
		c.Store = storage.NewMemory(nil)
	}
	if c.Navigator == nil {
		c.Navigator = &RecordingNavigator{}
	}
	if opts.Location != nil {
		u := *opts.Location
		c.location = &u
	} else {
		c.location = &url.URL{Path: "/"}
	}
	return c, nil
}

// Location returns a copy of the page URL.
func (c *Context) Location() *url.URL {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u := *c.location
	return &u
}

// QueryParam returns the page URL query parameter name, if present.
func (c *Context) QueryParam(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q := c.location.Query()
	if !q.Has(name) {
		return "", false
	}
	return q.Get(name), true
}

// RegisterRenderer publishes r as the active renderer. The first call
// resolves the readiness future and publishes TopicRendererReady; later calls
// only replace the instance. It reports whether this call resolved the future.
func (c *Context) RegisterRenderer(r events.ResumeLoader) bool {
	c.mu.Lock()
	c.renderer = r
	c.mu.Unlock()

	first := false
	c.readyOnce.Do(func() {
		first = true
		close(c.ready)
	})
	if first {
		events.Publish(c.Bus, events.TopicRendererReady, events.RendererReady{Renderer: r})
	}
	return first
}

// Renderer returns the registered renderer, or nil.
func (c *Context) Renderer() events.ResumeLoader {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.renderer
}

// RendererReady is closed once a renderer has registered.
func (c *Context) RendererReady() <-chan struct{} {
	return c.ready
}

// WaitRenderer blocks until a renderer registers, timeout elapses or ctx is
// done. The boolean is false when no renderer became available.
func (c *Context) WaitRenderer(ctx context.Context, timeout time.Duration) (events.ResumeLoader, bool) {
	if r := c.Renderer(); r != nil {
		return r, true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-c.ready:
		return c.Renderer(), true
	case <-timer.C:
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}

// SetResumeSwitcher publishes the résumé switcher.
func (c *Context) SetResumeSwitcher(s ResumeSwitcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resumeSwitcher = s
}

// ResumeSwitcher returns the published résumé switcher, or nil.
func (c *Context) ResumeSwitcher() ResumeSwitcher {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resumeSwitcher
}

// SetThemeSwitcher publishes the theme switcher.
func (c *Context) SetThemeSwitcher(s ThemeSwitcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.themeSwitcher = s
}

// ThemeSwitcher returns the published theme switcher, or nil.
func (c *Context) ThemeSwitcher() ThemeSwitcher {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.themeSwitcher
}

// SetPDFHelper publishes the PDF export helper.
func (c *Context) SetPDFHelper(h PDFHelper) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pdf = h
}

// PDFHelper returns the published PDF helper, or nil.
func (c *Context) PDFHelper() PDFHelper {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pdf
}
