// Package manifest loads the generated résumé and theme indexes. Loading never
// fails: any fetch or decode problem is logged and a one-entry fallback
// manifest is returned so the selectors always have something to offer.
package manifest

import (
	"context"
	"encoding/json"
	"log"

	"github.com/jonathan/resume-site/internal/fetch"
	"github.com/jonathan/resume-site/internal/types"
)

// Default locations of the generated manifests.
const (
	ResumesPath = "data/resumes.json"
	ThemesPath  = "data/themes.json"
)

// Fallback values used when a manifest cannot be loaded.
const (
	DefaultResumeName = "example"
	DefaultResumePath = "resources/example/example.json"
	DefaultThemeKey   = "default"
	DefaultThemePath  = "css/default/theme.css"
)

// FallbackResumes returns the synthetic manifest used on load failure.
func FallbackResumes() *types.ResumeManifest {
	m := types.NewResumeManifest()
	m.Add(DefaultResumeName, types.ResumeEntry{JSONFile: DefaultResumePath})
	return m
}

// FallbackThemes returns the synthetic manifest used on load failure.
func FallbackThemes() *types.ThemeManifest {
	m := types.NewThemeManifest()
	m.Add(DefaultThemeKey, types.ThemeEntry{FilePath: DefaultThemePath})
	return m
}

// Loader fetches manifests from a Source.
type Loader struct {
	source fetch.Source
}

// NewLoader creates a Loader reading from source.
func NewLoader(source fetch.Source) *Loader {
	return &Loader{source: source}
}

// LoadResumes fetches and decodes the résumé manifest at path.
func (l *Loader) LoadResumes(ctx context.Context, path string) *types.ResumeManifest {
	data, err := l.source.Fetch(ctx, path)
	if err != nil {
		log.Printf("[manifest] failed to load %s, using fallback: %v", path, err)
		return FallbackResumes()
	}

	m := types.NewResumeManifest()
	if err := json.Unmarshal(data, m); err != nil {
		log.Printf("[manifest] failed to parse %s, using fallback: %v", path, err)
		return FallbackResumes()
	}
	if m.Resumes == nil {
		m.Resumes = types.NewResumeManifest().Resumes
	}
	return m
}

// LoadThemes fetches and decodes the theme manifest at path. Both the keyed
// and the legacy list shapes are accepted.
func (l *Loader) LoadThemes(ctx context.Context, path string) *types.ThemeManifest {
	data, err := l.source.Fetch(ctx, path)
	if err != nil {
		log.Printf("[manifest] failed to load %s, using fallback: %v", path, err)
		return FallbackThemes()
	}

	m := &types.ThemeManifest{}
	if err := json.Unmarshal(data, m); err != nil {
		log.Printf("[manifest] failed to parse %s, using fallback: %v", path, err)
		return FallbackThemes()
	}
	if m.Legacy {
		log.Printf("[manifest] %s uses the legacy theme list; migrated %d themes", path, m.Len())
	}
	return m
}
