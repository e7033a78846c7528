package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-site/internal/config"
	"github.com/jonathan/resume-site/internal/fetch"
	"github.com/jonathan/resume-site/internal/storage"
)

func readPage(t *testing.T, path string) *goquery.Document {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	return doc
}

func TestBuildSite_RendersEveryCombination(t *testing.T) {
	cfg := testConfig(t, writeSite(t, siteFiles))

	files, err := buildSite(context.Background(), cfg)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{
		"index.html",
		"one--dark.html",
		"one--light.html",
		"two--dark.html",
		"two--light.html",
	}, names)

	index := readPage(t, filepath.Join(cfg.OutputDir, "index.html"))
	assert.Equal(t, "One", index.Find(".name").Text())

	page := readPage(t, filepath.Join(cfg.OutputDir, "two--dark.html"))
	assert.Equal(t, "Two", page.Find(".name").Text())
	href, _ := page.Find("link#theme-stylesheet").Attr("href")
	assert.Equal(t, "css/dark/theme.css", href)

	// assets are copied next to the pages
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "css", "dark", "theme.css"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "data", "resumes.json"))
	assert.NoError(t, err)
}

func TestBuildSite_Rebuild(t *testing.T) {
	cfg := testConfig(t, writeSite(t, siteFiles))

	_, err := buildSite(context.Background(), cfg)
	require.NoError(t, err)
	_, err = buildSite(context.Background(), cfg)
	assert.NoError(t, err)
}

func TestExportPDF(t *testing.T) {
	dir := writeSite(t, siteFiles)
	cfg := testConfig(t, dir)
	printer := &fakePrinter{}

	pdf, err := exportPDF(context.Background(), cfg, printer, "resources/two/two.json", "dark", true)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Contains(t, printer.html, `<base href="file://`+filepath.ToSlash(abs)+`/"/>`)
	assert.Contains(t, printer.html, "pdf-mode")
	assert.Contains(t, printer.html, "Two")
}

func TestExportPDF_UnknownSelection(t *testing.T) {
	cfg := testConfig(t, writeSite(t, siteFiles))

	_, err := exportPDF(context.Background(), cfg, &fakePrinter{}, "", "neon", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "theme neon")

	_, err = exportPDF(context.Background(), cfg, &fakePrinter{}, "resources/x.json", "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "résumé resources/x.json")
}

func TestValidateSite(t *testing.T) {
	checks := validateSite(context.Background(), fetch.NewDirSource(writeSite(t, siteFiles)))
	require.Len(t, checks, 4)
	for _, c := range checks {
		assert.NoError(t, c.Err, c.Path)
	}
}

func TestValidateSite_ReportsBadDocuments(t *testing.T) {
	files := map[string]string{}
	for k, v := range siteFiles {
		files[k] = v
	}
	files["resources/one/one.json"] = `{"personal":{},"skills":{"x":[{"name":"Go","level":9}]}}`
	delete(files, "resources/two/two.json")

	checks := validateSite(context.Background(), fetch.NewDirSource(writeSite(t, files)))
	require.Len(t, checks, 4)

	failed := map[string]bool{}
	for _, c := range checks {
		failed[c.Path] = c.Err != nil
	}
	assert.False(t, failed["data/resumes.json"])
	assert.False(t, failed["data/themes.json"])
	assert.True(t, failed["resources/one/one.json"])
	assert.True(t, failed["resources/two/two.json"])
}

func TestValidateSite_MissingManifest(t *testing.T) {
	checks := validateSite(context.Background(), fetch.NewDirSource(t.TempDir()))
	require.Len(t, checks, 2)
	assert.True(t, fetch.IsNotFound(checks[0].Err))
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, closeFn, err := openStore(ctx, config.Config{Storage: config.StorageMemory})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &storage.Memory{}, store)

	prefs := filepath.Join(t.TempDir(), "prefs.json")
	store, closeFn, err = openStore(ctx, config.Config{Storage: config.StorageFile, PreferencesFile: prefs})
	require.NoError(t, err)
	defer closeFn()
	require.NoError(t, store.Set(ctx, storage.KeySelectedTheme, "dark"))
	_, err = os.Stat(prefs)
	assert.NoError(t, err)

	_, _, err = openStore(ctx, config.Config{Storage: config.StoragePostgres})
	assert.Error(t, err)

	_, _, err = openStore(ctx, config.Config{Storage: "redis"})
	assert.Error(t, err)
}

func TestResolveDefaultResume(t *testing.T) {
	ctx := context.Background()
	source := fetch.NewDirSource(writeSite(t, siteFiles))

	assert.Equal(t, "resources/two/two.json", resolveDefaultResume(ctx, source, config.Config{DefaultResume: "resources/two/two.json"}))
	assert.Equal(t, "resources/one/one.json", resolveDefaultResume(ctx, source, config.Config{}))

	// without a manifest the fallback entry is used
	empty := fetch.NewDirSource(t.TempDir())
	assert.Equal(t, "resources/example/example.json", resolveDefaultResume(ctx, empty, config.Config{}))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "modern-theme", slug("modern/theme"))
	assert.Equal(t, "data_scientist", slug("data scientist"))
}
