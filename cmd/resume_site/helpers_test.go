package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-site/internal/config"
)

var siteFiles = map[string]string{
	"data/resumes.json": `{"version":"1.0.0","totalResumes":2,"resumes":{
		"one": {"jsonFile": "resources/one/one.json", "jsonSize": 1, "jsonLastModified": 0, "hasPngPhoto": false},
		"two": {"jsonFile": "resources/two/two.json", "jsonSize": 1, "jsonLastModified": 0, "hasPngPhoto": false}
	}}`,
	"data/themes.json": `{"version":"1.0.0","totalThemes":2,"themes":{
		"light": {"filePath": "css/light/theme.css"},
		"dark": {"filePath": "css/dark/theme.css"}
	}}`,
	"css/light/theme.css":    `body { color: black; }`,
	"css/dark/theme.css":     `body { color: white; }`,
	"resources/one/one.json": `{"personal":{"name":"One"},"experience":[{"role":"A","company":"X"}]}`,
	"resources/two/two.json": `{"personal":{"name":"Two"},"experience":[{"role":"B","company":"Y"},{"role":"C","company":"Z"}]}`,
}

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func testConfig(t *testing.T, dir string) config.Config {
	t.Helper()
	cfg := config.Config{
		SiteDir:    dir,
		OutputDir:  filepath.Join(t.TempDir(), "dist"),
		Storage:    config.StorageMemory,
		WatchdogMS: int((50 * time.Millisecond).Milliseconds()),
	}
	return cfg.MergeWithDefaults(config.Defaults())
}

type fakePrinter struct {
	html string
}

func (p *fakePrinter) PrintHTML(_ context.Context, html string) ([]byte, error) {
	p.html = html
	return []byte("%PDF-1.4 fake"), nil
}
