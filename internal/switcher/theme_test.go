package switcher

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-site/internal/dom"
	"github.com/jonathan/resume-site/internal/events"
	"github.com/jonathan/resume-site/internal/manifest"
	"github.com/jonathan/resume-site/internal/storage"
)

func themeFiles() fstest.MapFS {
	return fstest.MapFS{manifest.ThemesPath: {Data: []byte(threeThemes)}}
}

func initThemes(t *testing.T, f *fixture) *ThemeSwitcher {
	t.Helper()
	s := NewThemeSwitcher(f.app, ThemeOptions{})
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(s.Close)
	return s
}

func TestChangeTheme_RoundTrip(t *testing.T) {
	f := newFixture(t, themeFiles(), "", nil)
	s := initThemes(t, f)

	require.NoError(t, s.ChangeTheme(context.Background(), "dark"))

	assert.Equal(t, "dark", s.Current().Key)
	entry, ok := s.Manifest().Lookup("dark")
	require.True(t, ok)
	assert.Equal(t, entry.FilePath, s.Stylesheet())
	theme, _ := f.app.Doc.Attr(dom.Body, ThemeDataAttr)
	assert.Equal(t, "dark", theme)
	assert.Equal(t, "dark", f.app.Doc.SelectedValue(dom.ThemeSelect))

	stored, _, _ := f.store.Get(context.Background(), storage.KeySelectedTheme)
	assert.Equal(t, "dark", stored)
}

func TestChangeTheme_Idempotent(t *testing.T) {
	f := newFixture(t, themeFiles(), "", nil)
	s := initThemes(t, f)
	writesAfterInit := f.store.Writes(storage.KeySelectedTheme)

	var got []events.ThemeChanged
	events.Subscribe(f.app.Bus, events.TopicThemeChanged, func(ev events.ThemeChanged) { got = append(got, ev) })

	ctx := context.Background()
	require.NoError(t, s.ChangeTheme(ctx, "dark"))
	require.NoError(t, s.ChangeTheme(ctx, "dark"))

	require.Len(t, got, 1)
	assert.Equal(t, events.ThemeChanged{
		ThemeName: "dark",
		ThemeFile: "theme.css",
		FullPath:  "css/dark/theme.css",
		IsPDFMode: false,
	}, got[0])
	assert.Equal(t, writesAfterInit+1, f.store.Writes(storage.KeySelectedTheme))
}

func TestChangeTheme_UnknownKeyLeavesStateAlone(t *testing.T) {
	f := newFixture(t, themeFiles(), "", nil)
	s := initThemes(t, f)
	before := s.Stylesheet()

	err := s.ChangeTheme(context.Background(), "neon")
	var unknown *UnknownThemeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "light", s.CurrentTheme())
	assert.Equal(t, before, s.Stylesheet())
}

func TestThemeResolveInitial_Precedence(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		stored map[string]string
		want   string
	}{
		{"url beats storage", "http://localhost/?theme=pdf", map[string]string{storage.KeySelectedTheme: "dark"}, "pdf"},
		{"storage beats manifest", "", map[string]string{storage.KeySelectedTheme: "dark"}, "dark"},
		{"unknown url ignored", "http://localhost/?theme=neon", nil, "light"},
		{"first key", "", nil, "light"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, themeFiles(), tt.url, tt.stored)
			s := initThemes(t, f)
			assert.Equal(t, tt.want, s.CurrentTheme())
			assert.Equal(t, tt.want, f.app.Doc.SelectedValue(dom.ThemeSelect))
		})
	}
}

func TestThemeInitialize_FallbackManifest(t *testing.T) {
	f := newFixture(t, fstest.MapFS{}, "", nil)
	s := initThemes(t, f)

	opts := f.app.Doc.Options(dom.ThemeSelect)
	require.Len(t, opts, 1)
	assert.Equal(t, manifest.DefaultThemeKey, opts[0].Value)
	assert.Equal(t, manifest.DefaultThemeKey, s.CurrentTheme())
	assert.Equal(t, manifest.DefaultThemePath, s.Stylesheet())
}

func TestThemeInitialize_Labels(t *testing.T) {
	f := newFixture(t, fstest.MapFS{
		manifest.ThemesPath: {Data: []byte(`{"themes":[{"name":"classic_blue"},{"name":"pdf"}]}`)},
	}, "", nil)
	initThemes(t, f)

	opts := f.app.Doc.Options(dom.ThemeSelect)
	require.Len(t, opts, 2)
	assert.Equal(t, dom.Option{Value: "classic_blue/theme", Label: "Classic Blue"}, opts[0])
}

func TestResolveStylesheet_LegacyComposite(t *testing.T) {
	f := newFixture(t, fstest.MapFS{
		manifest.ThemesPath: {Data: []byte(`{"themes":[{"name":"classic"}]}`)},
	}, "", nil)
	s := initThemes(t, f)

	tests := map[string]string{
		"classic/theme":     "css/classic/theme.css",
		"classic/theme.css": "css/classic/theme.css",
		"classic/print":     "css/classic/print.css",
	}
	for key, want := range tests {
		got, ok := s.ResolveStylesheet(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}

	for _, key := range []string{"other/theme", "classic/", "classic/a/b", "plain"} {
		_, ok := s.ResolveStylesheet(key)
		assert.False(t, ok, key)
	}

	require.NoError(t, s.ChangeTheme(context.Background(), "classic/print"))
	assert.Equal(t, "css/classic/print.css", s.Stylesheet())
}

func TestChangeTheme_PDFModeAndHelper(t *testing.T) {
	f := newFixture(t, themeFiles(), "", nil)
	helper := &countingHelper{}
	f.app.SetPDFHelper(helper)
	s := initThemes(t, f)
	assert.Equal(t, 1, helper.Calls())

	f.app.Doc.AddClass(dom.Body, dom.PDFModeClass)
	var last events.ThemeChanged
	events.Subscribe(f.app.Bus, events.TopicThemeChanged, func(ev events.ThemeChanged) { last = ev })

	require.NoError(t, s.ChangeTheme(context.Background(), "pdf"))
	assert.True(t, last.IsPDFMode)
	assert.Equal(t, ThemeInfo{Key: "pdf", IsPDF: true}, s.Current())
	assert.Equal(t, 2, helper.Calls())
}

func TestThemeShortcutAndSelectChange(t *testing.T) {
	f := newFixture(t, themeFiles(), "", nil)
	s := initThemes(t, f)

	s.SetVisibility(Hide)
	key := &events.KeyEvent{Key: "t", Ctrl: true}
	events.Publish(f.app.Bus, events.TopicKeyDown, key)
	assert.True(t, key.DefaultPrevented())
	assert.False(t, f.app.Doc.HasClass(dom.ThemeSwitcherBox, dom.HiddenClass))
	assert.True(t, f.app.Doc.HasClass(dom.ThemeSelect, dom.FocusedClass))

	events.Publish(f.app.Bus, events.TopicSelectChange, events.SelectChange{SelectID: "theme-select", Value: "dark"})
	assert.Equal(t, "dark", s.CurrentTheme())
}

func TestChangeTheme_ListenerMayChangeAgain(t *testing.T) {
	f := newFixture(t, themeFiles(), "", nil)
	s := initThemes(t, f)
	ctx := context.Background()
	require.NoError(t, s.ChangeTheme(ctx, "light"))

	var seen []string
	events.Subscribe(f.app.Bus, events.TopicThemeChanged, func(ev events.ThemeChanged) {
		seen = append(seen, ev.ThemeName)
		if ev.ThemeName == "pdf" {
			assert.NoError(t, s.ChangeTheme(ctx, "dark"))
		}
	})

	done := make(chan error, 1)
	go func() { done <- s.ChangeTheme(ctx, "pdf") }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("ChangeTheme from a themeChanged listener did not return")
	}

	assert.Equal(t, "dark", s.CurrentTheme())
	assert.Equal(t, []string{"pdf", "dark"}, seen)
	href, _ := f.app.Doc.Attr(dom.ThemeStylesheet, "href")
	assert.Equal(t, "css/dark/theme.css", href)
}
