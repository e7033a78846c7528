package switcher

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/resume-site/internal/app"
	"github.com/jonathan/resume-site/internal/dom"
	"github.com/jonathan/resume-site/internal/events"
	"github.com/jonathan/resume-site/internal/manifest"
	"github.com/jonathan/resume-site/internal/storage"
	"github.com/jonathan/resume-site/internal/types"
)

// ResumeParam is the page URL query parameter naming a résumé.
const ResumeParam = "resume"

// ResumeOptions configures a ResumeSwitcher.
type ResumeOptions struct {
	ManifestPath string
	FallbackPath string
	Watchdog     time.Duration
}

// ResumeSwitcher owns the résumé selector and the current résumé selection.
type ResumeSwitcher struct {
	app  *app.Context
	opts ResumeOptions

	// changeMu serializes the state, storage and render steps of a change.
	// It is released before TopicResumeChanged is published so listeners may
	// change the selection again.
	changeMu sync.Mutex

	mu        sync.RWMutex
	state     State
	manifest  *types.ResumeManifest
	current   string
	navigated bool

	initialOnce sync.Once
	initialErr  error
	unsubscribe []func()
}

// NewResumeSwitcher creates a switcher in the Uninitialized state.
func NewResumeSwitcher(appCtx *app.Context, opts ResumeOptions) *ResumeSwitcher {
	if opts.ManifestPath == "" {
		opts.ManifestPath = manifest.ResumesPath
	}
	if opts.FallbackPath == "" {
		opts.FallbackPath = manifest.DefaultResumePath
	}
	if opts.Watchdog <= 0 {
		opts.Watchdog = app.RendererWatchdog
	}
	return &ResumeSwitcher{app: appCtx, opts: opts, manifest: types.NewResumeManifest()}
}

// Initialize loads the manifest, fills the selector, binds input handlers and
// applies the initial résumé once a renderer is available or the watchdog
// fires, whichever comes first.
func (s *ResumeSwitcher) Initialize(ctx context.Context) error {
	m := s.app.Manifests.LoadResumes(ctx, s.opts.ManifestPath)
	s.mu.Lock()
	s.manifest = m
	s.state = ManifestLoaded
	s.mu.Unlock()

	options := make([]dom.Option, 0, m.Len())
	for _, e := range m.Entries() {
		options = append(options, dom.Option{Value: e.Entry.JSONFile, Label: selectLabel(e.Name)})
	}
	if !s.app.Doc.SetOptions(dom.ResumeSelect, options) {
		log.Printf("[resume-switcher] selector %s not found", dom.ResumeSelect)
	}

	s.bind(context.WithoutCancel(ctx))
	s.app.SetResumeSwitcher(s)
	s.setState(AwaitingRenderer)

	if _, ok := s.app.WaitRenderer(ctx, s.opts.Watchdog); !ok {
		log.Printf("[resume-switcher] no renderer after %s, resolving without one", s.opts.Watchdog)
	}
	return s.applyInitial(ctx)
}

func (s *ResumeSwitcher) bind(ctx context.Context) {
	selectID := strings.TrimPrefix(dom.ResumeSelect, "#")
	s.unsubscribe = append(s.unsubscribe,
		events.Subscribe(s.app.Bus, events.TopicSelectChange, func(ev events.SelectChange) {
			if ev.SelectID != selectID {
				return
			}
			if err := s.ChangeResume(ctx, ev.Value); err != nil {
				log.Printf("[resume-switcher] change to %s failed: %v", ev.Value, err)
			}
		}),
		events.Subscribe(s.app.Bus, events.TopicKeyDown, func(k *events.KeyEvent) {
			if k.HasModifier() && k.Is("r") {
				k.PreventDefault()
				reveal(s.app.Doc, dom.ResumeSwitcherBox, dom.ResumeSelect)
			}
		}),
	)
}

// Close removes the input handlers.
func (s *ResumeSwitcher) Close() {
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.unsubscribe = nil
}

func (s *ResumeSwitcher) applyInitial(ctx context.Context) error {
	s.initialOnce.Do(func() {
		_, s.initialErr = s.ResolveInitial(ctx)
		s.setState(Ready)
	})
	return s.initialErr
}

// ResolveInitial picks the starting résumé: the URL parameter, then the
// stored selection, then the first manifest entry, then the fallback path.
// Only values naming a manifest entry are accepted from the URL and storage.
func (s *ResumeSwitcher) ResolveInitial(ctx context.Context) (string, error) {
	m := s.Manifest()
	path := ""

	if v, ok := s.app.QueryParam(ResumeParam); ok && m.HasFile(v) {
		path = v
	}
	if path == "" {
		stored, ok, err := s.app.Store.Get(ctx, storage.KeySelectedResume)
		if err != nil {
			log.Printf("[resume-switcher] failed to read stored selection: %v", err)
		}
		if ok && m.HasFile(stored) {
			path = stored
		}
	}
	if path == "" {
		if first, ok := m.First(); ok {
			path = first.Entry.JSONFile
		}
	}
	if path == "" {
		path = s.opts.FallbackPath
	}

	err := s.ChangeResume(ctx, path)
	s.app.Doc.SelectValue(dom.ResumeSelect, path)
	return path, err
}

// ChangeResume selects path. Selecting the current résumé again does nothing.
// The selection is stored and handed to the renderer; without a renderer the
// page navigates once to itself with the résumé in the URL, and if that was
// already tried an error panel is shown instead. TopicResumeChanged is
// published after every effective change.
func (s *ResumeSwitcher) ChangeResume(ctx context.Context, path string) error {
	changed, err := s.apply(ctx, path)
	if changed {
		events.Publish(s.app.Bus, events.TopicResumeChanged, events.ResumeChanged{ResumePath: path})
	}
	return err
}

// apply records path as the selection, stores it and loads it. It reports
// whether the selection changed.
func (s *ResumeSwitcher) apply(ctx context.Context, path string) (bool, error) {
	s.changeMu.Lock()
	defer s.changeMu.Unlock()

	s.mu.Lock()
	if path == s.current {
		s.mu.Unlock()
		return false, nil
	}
	s.current = path
	s.mu.Unlock()

	if err := s.app.Store.Set(ctx, storage.KeySelectedResume, path); err != nil {
		log.Printf("[resume-switcher] failed to store selection: %v", err)
	}

	var loadErr error
	if renderer := s.app.Renderer(); renderer != nil {
		if _, err := renderer.Load(ctx, path); err != nil {
			loadErr = err
		}
	} else {
		s.recoverWithoutRenderer(path)
	}

	s.app.Doc.SelectValue(dom.ResumeSelect, path)
	return true, loadErr
}

func (s *ResumeSwitcher) recoverWithoutRenderer(path string) {
	_, tried := s.app.QueryParam(ResumeParam)

	s.mu.Lock()
	if s.navigated {
		tried = true
	}
	if !tried {
		s.navigated = true
	}
	s.mu.Unlock()

	if tried {
		log.Printf("[resume-switcher] renderer unavailable after reload, showing error panel")
		showErrorPanel(s.app.Doc)
		return
	}

	target := s.app.Location()
	q := target.Query()
	q.Set(ResumeParam, path)
	target.RawQuery = q.Encode()
	log.Printf("[resume-switcher] renderer unavailable, reloading with %s", target.String())
	s.app.Navigator.Navigate(target)
}

// CurrentResume returns the selected jsonFile path, or "" before the first change.
func (s *ResumeSwitcher) CurrentResume() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Manifest returns the loaded résumé manifest.
func (s *ResumeSwitcher) Manifest() *types.ResumeManifest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifest
}

// State returns the lifecycle state.
func (s *ResumeSwitcher) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *ResumeSwitcher) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// SetVisibility shows, hides or toggles the selector box.
func (s *ResumeSwitcher) SetVisibility(mode Visibility) {
	setVisibility(s.app.Doc, dom.ResumeSwitcherBox, mode)
}
