// Package site boots one page session: it builds the application context and
// starts the renderer and both switchers the way a page load would.
package site

import (
	"context"
	"log"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-site/internal/app"
	"github.com/jonathan/resume-site/internal/dom"
	"github.com/jonathan/resume-site/internal/events"
	"github.com/jonathan/resume-site/internal/export"
	"github.com/jonathan/resume-site/internal/fetch"
	"github.com/jonathan/resume-site/internal/rendering"
	"github.com/jonathan/resume-site/internal/storage"
	"github.com/jonathan/resume-site/internal/switcher"
)

// Options configures Boot.
type Options struct {
	Source    fetch.Source
	Store     storage.Store
	Location  *url.URL
	Navigator app.Navigator
	// Shell is the page markup; the built-in shell is used when empty.
	Shell         string
	DefaultResume string
	Sanitize      bool
	Watchdog      time.Duration
	Verbose       bool
}

// Page is a booted page session.
type Page struct {
	App      *app.Context
	Renderer *rendering.Renderer
	Resumes  *switcher.ResumeSwitcher
	Themes   *switcher.ThemeSwitcher
	PDF      *export.Helper
}

// Boot builds a page and runs the component initializers concurrently.
// Component failures degrade the page and are logged; only construction
// errors and context cancellation are returned.
func Boot(ctx context.Context, opts Options) (*Page, error) {
	shell := opts.Shell
	if shell == "" {
		shell = dom.DefaultShell()
	}
	doc, err := dom.ParseString(shell)
	if err != nil {
		return nil, err
	}

	appCtx, err := app.New(app.Options{
		Document:  doc,
		Source:    opts.Source,
		Store:     opts.Store,
		Location:  opts.Location,
		Navigator: opts.Navigator,
	})
	if err != nil {
		return nil, err
	}

	renderer, err := rendering.New(appCtx, rendering.Options{
		DefaultPath: opts.DefaultResume,
		Sanitize:    opts.Sanitize,
	})
	if err != nil {
		return nil, err
	}

	p := &Page{
		App:      appCtx,
		Renderer: renderer,
		Resumes:  switcher.NewResumeSwitcher(appCtx, switcher.ResumeOptions{Watchdog: opts.Watchdog}),
		Themes:   switcher.NewThemeSwitcher(appCtx, switcher.ThemeOptions{}),
		PDF:      export.NewHelper(appCtx),
	}

	if opts.Verbose {
		events.Subscribe(appCtx.Bus, events.TopicResumeChanged, func(ev events.ResumeChanged) {
			log.Printf("[site %s] resume changed: %s", appCtx.ID, ev.ResumePath)
		})
		events.Subscribe(appCtx.Bus, events.TopicThemeChanged, func(ev events.ThemeChanged) {
			log.Printf("[site %s] theme changed: %s (%s, pdf mode %t)", appCtx.ID, ev.ThemeName, ev.FullPath, ev.IsPDFMode)
		})
	}

	var g errgroup.Group
	g.Go(func() error {
		if err := p.Renderer.Initialize(ctx); err != nil {
			log.Printf("[site] renderer did not initialize: %v", err)
		}
		return ctx.Err()
	})
	g.Go(func() error {
		if err := p.Themes.Initialize(ctx); err != nil {
			log.Printf("[site] theme switcher: %v", err)
		}
		return ctx.Err()
	})
	g.Go(func() error {
		if err := p.Resumes.Initialize(ctx); err != nil {
			log.Printf("[site] resume switcher: %v", err)
		}
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// HTML serializes the page.
func (p *Page) HTML() (string, error) {
	return p.App.Doc.HTML()
}

// Navigation returns the URL the page asked to navigate to during boot, or nil.
func (p *Page) Navigation() *url.URL {
	if rec, ok := p.App.Navigator.(*app.RecordingNavigator); ok {
		return rec.Last()
	}
	return nil
}

// Close detaches every component from the bus.
func (p *Page) Close() {
	p.Renderer.Close()
	p.Resumes.Close()
	p.Themes.Close()
}
