package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ManifestVersion is written by the manifest generator.
const ManifestVersion = "1.0.0"

// ResumeEntry describes one selectable résumé variant in a ResumeManifest.
type ResumeEntry struct {
	JSONFile         string     `json:"jsonFile" validate:"required"`
	JSONSize         int64      `json:"jsonSize"`
	JSONLastModified Timestamp  `json:"jsonLastModified"`
	PNGFile          string     `json:"pngFile,omitempty"`
	PNGSize          int64      `json:"pngSize,omitempty"`
	PNGLastModified  *Timestamp `json:"pngLastModified,omitempty"`
	HasPNGPhoto      bool       `json:"hasPngPhoto"`
}

// NamedResume pairs a manifest display key with its entry.
type NamedResume struct {
	Name  string
	Entry ResumeEntry
}

// ResumeManifest is the generated index of available résumé documents (data/resumes.json).
// Resumes keeps the declared order of the source document.
type ResumeManifest struct {
	Version      string                                      `json:"version"`
	Generated    Timestamp                                   `json:"generated"`
	TotalResumes int                                         `json:"totalResumes"`
	Resumes      *orderedmap.OrderedMap[string, ResumeEntry] `json:"resumes"`
}

// NewResumeManifest returns an empty manifest ready for Add.
func NewResumeManifest() *ResumeManifest {
	return &ResumeManifest{
		Version: ManifestVersion,
		Resumes: orderedmap.New[string, ResumeEntry](),
	}
}

// Add appends (or replaces) the entry under name and keeps TotalResumes in sync.
func (m *ResumeManifest) Add(name string, entry ResumeEntry) {
	if m.Resumes == nil {
		m.Resumes = orderedmap.New[string, ResumeEntry]()
	}
	m.Resumes.Set(name, entry)
	m.TotalResumes = m.Resumes.Len()
}

// Len returns the number of entries.
func (m *ResumeManifest) Len() int {
	if m == nil || m.Resumes == nil {
		return 0
	}
	return m.Resumes.Len()
}

// Entries returns the entries in declared order.
func (m *ResumeManifest) Entries() []NamedResume {
	if m.Len() == 0 {
		return nil
	}
	out := make([]NamedResume, 0, m.Resumes.Len())
	for pair := m.Resumes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, NamedResume{Name: pair.Key, Entry: pair.Value})
	}
	return out
}

// First returns the first declared entry.
func (m *ResumeManifest) First() (NamedResume, bool) {
	if m.Len() == 0 {
		return NamedResume{}, false
	}
	pair := m.Resumes.Oldest()
	return NamedResume{Name: pair.Key, Entry: pair.Value}, true
}

// HasFile reports whether some entry points at jsonFile.
func (m *ResumeManifest) HasFile(jsonFile string) bool {
	if jsonFile == "" {
		return false
	}
	for _, e := range m.Entries() {
		if e.Entry.JSONFile == jsonFile {
			return true
		}
	}
	return false
}

// Validate checks required fields and that every jsonFile is unique.
func (m *ResumeManifest) Validate() error {
	validate := validator.New()
	seen := make(map[string]string, m.Len())
	for _, e := range m.Entries() {
		if err := validate.Struct(e.Entry); err != nil {
			return fmt.Errorf("resume %q: %w", e.Name, err)
		}
		if prev, dup := seen[e.Entry.JSONFile]; dup {
			return fmt.Errorf("resumes %q and %q share jsonFile %s", prev, e.Name, e.Entry.JSONFile)
		}
		seen[e.Entry.JSONFile] = e.Name
	}
	return nil
}

// ThemeEntry describes one stylesheet in a ThemeManifest.
type ThemeEntry struct {
	FilePath           string     `json:"filePath" validate:"required"`
	FileSize           int64      `json:"fileSize,omitempty"`
	LastModified       *Timestamp `json:"lastModified,omitempty"`
	HasMediaQueryPrint bool       `json:"hasMediaQueryPrint,omitempty"`
}

// NamedTheme pairs a theme key with its entry.
type NamedTheme struct {
	Key   string
	Entry ThemeEntry
}

// ThemeManifest is the generated index of stylesheets (data/themes.json),
// keyed by theme key in declared order.
//
// Two shapes are accepted when decoding: the canonical object mapping theme
// key to {filePath}, and the legacy ordered list of {name} records. Legacy
// records are migrated on decode to the key "<name>/theme" and the path
// "css/<name>/theme.css"; Legacy is set when that happened.
type ThemeManifest struct {
	Version     string                                     `json:"version"`
	Generated   Timestamp                                  `json:"generated"`
	TotalThemes int                                        `json:"totalThemes"`
	Themes      *orderedmap.OrderedMap[string, ThemeEntry] `json:"themes"`
	Legacy      bool                                       `json:"-"`
}

// NewThemeManifest returns an empty manifest ready for Add.
func NewThemeManifest() *ThemeManifest {
	return &ThemeManifest{
		Version: ManifestVersion,
		Themes:  orderedmap.New[string, ThemeEntry](),
	}
}

// Add appends (or replaces) the entry under key and keeps TotalThemes in sync.
func (m *ThemeManifest) Add(key string, entry ThemeEntry) {
	if m.Themes == nil {
		m.Themes = orderedmap.New[string, ThemeEntry]()
	}
	m.Themes.Set(key, entry)
	m.TotalThemes = m.Themes.Len()
}

// Len returns the number of themes.
func (m *ThemeManifest) Len() int {
	if m == nil || m.Themes == nil {
		return 0
	}
	return m.Themes.Len()
}

// Entries returns the themes in declared order.
func (m *ThemeManifest) Entries() []NamedTheme {
	if m.Len() == 0 {
		return nil
	}
	out := make([]NamedTheme, 0, m.Themes.Len())
	for pair := m.Themes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, NamedTheme{Key: pair.Key, Entry: pair.Value})
	}
	return out
}

// First returns the first declared theme.
func (m *ThemeManifest) First() (NamedTheme, bool) {
	if m.Len() == 0 {
		return NamedTheme{}, false
	}
	pair := m.Themes.Oldest()
	return NamedTheme{Key: pair.Key, Entry: pair.Value}, true
}

// Lookup returns the entry for key.
func (m *ThemeManifest) Lookup(key string) (ThemeEntry, bool) {
	if m.Len() == 0 {
		return ThemeEntry{}, false
	}
	return m.Themes.Get(key)
}

// Has reports whether key is a known theme.
func (m *ThemeManifest) Has(key string) bool {
	_, ok := m.Lookup(key)
	return ok
}

// Validate checks that every theme has a stylesheet path.
func (m *ThemeManifest) Validate() error {
	validate := validator.New()
	for _, t := range m.Entries() {
		if err := validate.Struct(t.Entry); err != nil {
			return fmt.Errorf("theme %q: %w", t.Key, err)
		}
	}
	return nil
}

// LegacyThemeKey returns the composite key a legacy {name} record maps to.
func LegacyThemeKey(name string) string {
	return name + "/theme"
}

// LegacyThemePath returns the stylesheet path a legacy {name} record maps to.
func LegacyThemePath(name string) string {
	return path.Join("css", name, "theme.css")
}

// UnmarshalJSON implements json.Unmarshaler, accepting both manifest shapes.
func (m *ThemeManifest) UnmarshalJSON(data []byte) error {
	var aux struct {
		Version     string          `json:"version"`
		Generated   Timestamp       `json:"generated"`
		TotalThemes int             `json:"totalThemes"`
		Themes      json.RawMessage `json:"themes"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	m.Version = aux.Version
	m.Generated = aux.Generated
	m.TotalThemes = aux.TotalThemes
	m.Themes = orderedmap.New[string, ThemeEntry]()
	m.Legacy = false

	raw := bytes.TrimSpace(aux.Themes)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if raw[0] == '[' {
		var records []struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &records); err != nil {
			return fmt.Errorf("invalid legacy themes list: %w", err)
		}
		for _, r := range records {
			name := strings.TrimSpace(r.Name)
			if name == "" {
				continue
			}
			m.Themes.Set(LegacyThemeKey(name), ThemeEntry{FilePath: LegacyThemePath(name)})
		}
		m.Legacy = true
		if m.TotalThemes == 0 {
			m.TotalThemes = m.Themes.Len()
		}
		return nil
	}

	if err := json.Unmarshal(raw, m.Themes); err != nil {
		return fmt.Errorf("invalid themes mapping: %w", err)
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Output is always the canonical shape.
func (m ThemeManifest) MarshalJSON() ([]byte, error) {
	themes := m.Themes
	if themes == nil {
		themes = orderedmap.New[string, ThemeEntry]()
	}
	return json.Marshal(struct {
		Version     string                                     `json:"version"`
		Generated   Timestamp                                  `json:"generated"`
		TotalThemes int                                        `json:"totalThemes"`
		Themes      *orderedmap.OrderedMap[string, ThemeEntry] `json:"themes"`
	}{m.Version, m.Generated, m.TotalThemes, themes})
}
