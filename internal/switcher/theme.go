package switcher

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"sync"

	"github.com/jonathan/resume-site/internal/app"
	"github.com/jonathan/resume-site/internal/dom"
	"github.com/jonathan/resume-site/internal/events"
	"github.com/jonathan/resume-site/internal/manifest"
	"github.com/jonathan/resume-site/internal/storage"
	"github.com/jonathan/resume-site/internal/types"
)

// ThemeParam is the page URL query parameter naming a theme.
const ThemeParam = "theme"

// ThemeDataAttr is set on <body> to the active theme key.
const ThemeDataAttr = "data-theme"

// ThemeInfo describes the active theme.
type ThemeInfo struct {
	Key   string
	IsPDF bool
}

// UnknownThemeError is returned for a key the manifest cannot resolve.
type UnknownThemeError struct {
	Key string
}

func (e *UnknownThemeError) Error() string {
	return fmt.Sprintf("unknown theme %q", e.Key)
}

// ThemeOptions configures a ThemeSwitcher.
type ThemeOptions struct {
	ManifestPath string
	FallbackKey  string
}

// ThemeSwitcher owns the theme selector and the active stylesheet.
type ThemeSwitcher struct {
	app  *app.Context
	opts ThemeOptions

	// changeMu is held while a change is applied, not while it is published.
	changeMu sync.Mutex

	mu          sync.RWMutex
	manifest    *types.ThemeManifest
	current     string
	unsubscribe []func()
}

// NewThemeSwitcher creates a ThemeSwitcher.
func NewThemeSwitcher(appCtx *app.Context, opts ThemeOptions) *ThemeSwitcher {
	if opts.ManifestPath == "" {
		opts.ManifestPath = manifest.ThemesPath
	}
	if opts.FallbackKey == "" {
		opts.FallbackKey = manifest.DefaultThemeKey
	}
	return &ThemeSwitcher{app: appCtx, opts: opts, manifest: types.NewThemeManifest()}
}

// Initialize loads the manifest, fills the selector, binds input handlers and
// applies the initial theme.
func (s *ThemeSwitcher) Initialize(ctx context.Context) error {
	m := s.app.Manifests.LoadThemes(ctx, s.opts.ManifestPath)
	s.mu.Lock()
	s.manifest = m
	s.mu.Unlock()

	options := make([]dom.Option, 0, m.Len())
	for _, t := range m.Entries() {
		options = append(options, dom.Option{Value: t.Key, Label: themeLabel(t.Key)})
	}
	if !s.app.Doc.SetOptions(dom.ThemeSelect, options) {
		log.Printf("[theme-switcher] selector %s not found", dom.ThemeSelect)
	}

	s.bind(context.WithoutCancel(ctx))
	s.app.SetThemeSwitcher(s)

	_, err := s.ResolveInitial(ctx)
	return err
}

func (s *ThemeSwitcher) bind(ctx context.Context) {
	selectID := strings.TrimPrefix(dom.ThemeSelect, "#")
	s.unsubscribe = append(s.unsubscribe,
		events.Subscribe(s.app.Bus, events.TopicSelectChange, func(ev events.SelectChange) {
			if ev.SelectID != selectID {
				return
			}
			if err := s.ChangeTheme(ctx, ev.Value); err != nil {
				log.Printf("[theme-switcher] change to %s failed: %v", ev.Value, err)
			}
		}),
		events.Subscribe(s.app.Bus, events.TopicKeyDown, func(k *events.KeyEvent) {
			if k.HasModifier() && k.Is("t") {
				k.PreventDefault()
				reveal(s.app.Doc, dom.ThemeSwitcherBox, dom.ThemeSelect)
			}
		}),
	)
}

// Close removes the input handlers.
func (s *ThemeSwitcher) Close() {
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.unsubscribe = nil
}

// ResolveInitial picks the starting theme: the URL parameter, then the stored
// selection, then the first manifest key, then the fallback key.
func (s *ThemeSwitcher) ResolveInitial(ctx context.Context) (string, error) {
	key := ""

	if v, ok := s.app.QueryParam(ThemeParam); ok && s.known(v) {
		key = v
	}
	if key == "" {
		stored, ok, err := s.app.Store.Get(ctx, storage.KeySelectedTheme)
		if err != nil {
			log.Printf("[theme-switcher] failed to read stored selection: %v", err)
		}
		if ok && s.known(stored) {
			key = stored
		}
	}
	if key == "" {
		if first, ok := s.Manifest().First(); ok {
			key = first.Key
		}
	}
	if key == "" {
		key = s.opts.FallbackKey
	}

	err := s.ChangeTheme(ctx, key)
	s.app.Doc.SelectValue(dom.ThemeSelect, key)
	return key, err
}

func (s *ThemeSwitcher) known(key string) bool {
	_, ok := s.ResolveStylesheet(key)
	return ok
}

// ResolveStylesheet maps a theme key to its stylesheet path. Keys are looked
// up directly; failing that, a "name/file" composite naming a known theme is
// resolved to css/<name>/<file>.css.
func (s *ThemeSwitcher) ResolveStylesheet(key string) (string, bool) {
	m := s.Manifest()
	if entry, ok := m.Lookup(key); ok {
		return entry.FilePath, true
	}

	name, file, ok := strings.Cut(key, "/")
	if !ok || name == "" || file == "" || strings.Contains(file, "/") {
		return "", false
	}
	if !m.Has(name) && !m.Has(types.LegacyThemeKey(name)) {
		return "", false
	}
	if !strings.HasSuffix(file, ".css") {
		file += ".css"
	}
	return path.Join("css", name, file), true
}

// ChangeTheme activates the theme under key. Selecting the active theme again
// does nothing. The stylesheet link and body tag are updated, the selection is
// stored, TopicThemeChanged is published, and the PDF helper, if any, is told
// to refresh.
func (s *ThemeSwitcher) ChangeTheme(ctx context.Context, key string) error {
	ev, changed, err := s.apply(ctx, key)
	if err != nil || !changed {
		return err
	}
	events.Publish(s.app.Bus, events.TopicThemeChanged, ev)

	if helper := s.app.PDFHelper(); helper != nil {
		helper.RefreshToggle()
	}
	return nil
}

// apply switches the stylesheet and stores key, returning the notification
// to publish once the change lock is released.
func (s *ThemeSwitcher) apply(ctx context.Context, key string) (events.ThemeChanged, bool, error) {
	s.changeMu.Lock()
	defer s.changeMu.Unlock()

	if key == s.CurrentTheme() {
		return events.ThemeChanged{}, false, nil
	}
	fullPath, ok := s.ResolveStylesheet(key)
	if !ok {
		return events.ThemeChanged{}, false, &UnknownThemeError{Key: key}
	}

	s.app.Doc.SetAttr(dom.ThemeStylesheet, "href", fullPath)
	s.app.Doc.SetAttr(dom.Body, ThemeDataAttr, key)

	s.mu.Lock()
	s.current = key
	s.mu.Unlock()

	if err := s.app.Store.Set(ctx, storage.KeySelectedTheme, key); err != nil {
		log.Printf("[theme-switcher] failed to store selection: %v", err)
	}

	s.app.Doc.SelectValue(dom.ThemeSelect, key)
	return events.ThemeChanged{
		ThemeName: key,
		ThemeFile: path.Base(fullPath),
		FullPath:  fullPath,
		IsPDFMode: s.app.Doc.HasClass(dom.Body, dom.PDFModeClass),
	}, true, nil
}

// CurrentTheme returns the active theme key, or "" before the first change.
func (s *ThemeSwitcher) CurrentTheme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Current returns the active theme and whether it is a PDF theme.
func (s *ThemeSwitcher) Current() ThemeInfo {
	key := s.CurrentTheme()
	return ThemeInfo{Key: key, IsPDF: strings.Contains(strings.ToLower(key), "pdf")}
}

// Manifest returns the loaded theme manifest.
func (s *ThemeSwitcher) Manifest() *types.ThemeManifest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifest
}

// Stylesheet returns the href of the active stylesheet link.
func (s *ThemeSwitcher) Stylesheet() string {
	href, _ := s.app.Doc.Attr(dom.ThemeStylesheet, "href")
	return href
}

// SetVisibility shows, hides or toggles the selector box.
func (s *ThemeSwitcher) SetVisibility(mode Visibility) {
	setVisibility(s.app.Doc, dom.ThemeSwitcherBox, mode)
}

// themeLabel title-cases the theme name; legacy "name/theme" keys show as the name.
func themeLabel(key string) string {
	if name, file, ok := strings.Cut(key, "/"); ok && file == "theme" {
		key = name
	}
	return selectLabel(key)
}
