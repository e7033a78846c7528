// Package manifestgen scans a site directory and writes the résumé and theme
// manifests the switchers load.
package manifestgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jonathan/resume-site/internal/manifest"
	"github.com/jonathan/resume-site/internal/types"
)

// Directories scanned, in order. Entries from later roots replace earlier
// ones with the same name.
var (
	ResumeRoots = []string{"resources", ".private/resources"}
	ThemeRoots  = []string{"css", ".private/css"}
)

// ThemeFile is the stylesheet every theme directory must contain.
const ThemeFile = "theme.css"

// Summary reports what a generation run produced.
type Summary struct {
	Resumes int
	Themes  int
	Skipped []string
	Written []string
}

// Generator builds manifests from a site tree.
type Generator struct {
	fsys fs.FS
	now  func() time.Time
}

// New creates a Generator for the site rooted at dir.
func New(dir string) *Generator {
	return NewFS(os.DirFS(dir))
}

// NewFS creates a Generator over fsys.
func NewFS(fsys fs.FS) *Generator {
	return &Generator{fsys: fsys, now: time.Now}
}

// Resumes collects one entry per résumé directory: the first *.json and the
// first *.png in alphabetical order. Directories missing either are skipped
// and returned.
func (g *Generator) Resumes() (*types.ResumeManifest, []string, error) {
	m := types.NewResumeManifest()
	m.Generated = types.NewTimestamp(g.now())
	var skipped []string

	for _, root := range ResumeRoots {
		dirs, err := subdirs(g.fsys, root)
		if err != nil {
			return nil, nil, err
		}
		for _, dir := range dirs {
			literal := escapeMeta(path.Join(root, dir))
			jsonFile, err := first(g.fsys, literal+"/*.json")
			if err != nil {
				return nil, nil, err
			}
			pngFile, err := first(g.fsys, literal+"/*.png")
			if err != nil {
				return nil, nil, err
			}
			if jsonFile == "" || pngFile == "" {
				log.Printf("[manifestgen] skipping %s (missing .json or .png)", path.Join(root, dir))
				skipped = append(skipped, path.Join(root, dir))
				continue
			}

			entry := types.ResumeEntry{JSONFile: jsonFile, PNGFile: pngFile, HasPNGPhoto: true}
			if info, err := fs.Stat(g.fsys, jsonFile); err == nil {
				entry.JSONSize = info.Size()
				entry.JSONLastModified = types.NewTimestamp(info.ModTime())
			}
			if info, err := fs.Stat(g.fsys, pngFile); err == nil {
				entry.PNGSize = info.Size()
				ts := types.NewTimestamp(info.ModTime())
				entry.PNGLastModified = &ts
			}
			m.Add(dir, entry)
		}
	}
	return m, skipped, nil
}

// Themes collects every theme directory holding a theme.css.
func (g *Generator) Themes() (*types.ThemeManifest, []string, error) {
	m := types.NewThemeManifest()
	m.Generated = types.NewTimestamp(g.now())
	var skipped []string

	for _, root := range ThemeRoots {
		dirs, err := subdirs(g.fsys, root)
		if err != nil {
			return nil, nil, err
		}
		for _, dir := range dirs {
			file := path.Join(root, dir, ThemeFile)
			info, err := fs.Stat(g.fsys, file)
			if err != nil {
				log.Printf("[manifestgen] skipping %s (no %s)", path.Join(root, dir), ThemeFile)
				skipped = append(skipped, path.Join(root, dir))
				continue
			}
			ts := types.NewTimestamp(info.ModTime())
			m.Add(dir, types.ThemeEntry{
				FilePath:           file,
				FileSize:           info.Size(),
				LastModified:       &ts,
				HasMediaQueryPrint: true,
			})
		}
	}
	return m, skipped, nil
}

// Generate writes both manifests under siteDir.
func Generate(siteDir string) (*Summary, error) {
	g := New(siteDir)

	resumes, skippedResumes, err := g.Resumes()
	if err != nil {
		return nil, err
	}
	themes, skippedThemes, err := g.Themes()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Resumes: resumes.Len(),
		Themes:  themes.Len(),
		Skipped: append(skippedResumes, skippedThemes...),
	}
	for rel, v := range map[string]any{manifest.ResumesPath: resumes, manifest.ThemesPath: themes} {
		out := filepath.Join(siteDir, filepath.FromSlash(rel))
		if err := writeJSON(out, v); err != nil {
			return nil, err
		}
		summary.Written = append(summary.Written, out)
	}
	sort.Strings(summary.Written)
	return summary, nil
}

func writeJSON(file string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", file, err)
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", file, err)
	}
	if err := os.WriteFile(file, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	return nil
}

// subdirs lists the directories directly under root, sorted. A missing root
// yields nothing.
func subdirs(fsys fs.FS, root string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// escapeMeta backslash-escapes glob metacharacters so p matches only itself.
func escapeMeta(p string) string {
	var sb strings.Builder
	for _, r := range p {
		if strings.ContainsRune(`\*?[]{}`, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// first returns the alphabetically first file matching pattern, or "".
func first(fsys fs.FS, pattern string) (string, error) {
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("failed to glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	return matches[0], nil
}
