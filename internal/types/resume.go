// Package types provides the data structures shared across the résumé site: manifests, résumé documents and timestamps.
package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// MaxSkillLevel is the number of segments in a proficiency meter.
const MaxSkillLevel = 5

// Personal holds the sidebar identity and contact fields.
type Personal struct {
	Name        string `json:"name" validate:"required"`
	Title       string `json:"title"`
	Photo       string `json:"photo"`
	Phone       string `json:"phone"`
	Email       string `json:"email" validate:"omitempty,email"`
	Location    string `json:"location"`
	LinkedIn    string `json:"linkedin"`
	Instagram   string `json:"instagram"`
	GitHub      string `json:"github"`
	WorkAuth    string `json:"workAuth"`
	Hobbies     string `json:"hobbies"`
	SummaryMini string `json:"summaryMini"`
}

// Skill is a named skill with a 0-5 proficiency level.
type Skill struct {
	Name  string `json:"name" validate:"required"`
	Level int    `json:"level" validate:"min=0,max=5"`
}

// ClampedLevel returns Level limited to [0, MaxSkillLevel].
func (s Skill) ClampedLevel() int {
	switch {
	case s.Level < 0:
		return 0
	case s.Level > MaxSkillLevel:
		return MaxSkillLevel
	default:
		return s.Level
	}
}

// Job is one experience entry.
type Job struct {
	Role     string   `json:"role" validate:"required"`
	Company  string   `json:"company" validate:"required"`
	Date     string   `json:"date"`
	Location string   `json:"location"`
	Tech     string   `json:"tech"`
	Bullets  []string `json:"bullets"`
}

// Education is one education entry.
type Education struct {
	Degree string `json:"degree" validate:"required"`
	School string `json:"school" validate:"required"`
	Date   string `json:"date"`
	Focus  string `json:"focus"`
}

// Project is one projects/publications entry. URL is the link target;
// Desc is free text.
type Project struct {
	Title string `json:"title" validate:"required"`
	Desc  string `json:"desc"`
	URL   string `json:"url,omitempty" validate:"omitempty,url"`
}

// LinkTarget returns the href for the project's link. Older documents stored
// the link in desc and had no url; those keep working.
func (p Project) LinkTarget() string {
	if p.URL != "" {
		return p.URL
	}
	d := strings.TrimSpace(p.Desc)
	if strings.HasPrefix(d, "http://") || strings.HasPrefix(d, "https://") {
		return d
	}
	return ""
}

// Description returns Desc unless it is only serving as the legacy link target.
func (p Project) Description() string {
	if p.URL == "" && p.LinkTarget() != "" {
		return ""
	}
	return p.Desc
}

// SkillCategory pairs a skills category key with its skills.
type SkillCategory struct {
	Key    string
	Skills []Skill
}

// ResumeData is a résumé document as authored by the owner.
type ResumeData struct {
	Personal   Personal                                `json:"personal"`
	Skills     *orderedmap.OrderedMap[string, []Skill] `json:"skills"`
	Qualities  []string                                `json:"qualities"`
	Experience []Job                                   `json:"experience"`
	Education  []Education                             `json:"education"`
	Projects   []Project                               `json:"projects"`
}

// SkillCategories returns the skill categories in declared order.
func (r *ResumeData) SkillCategories() []SkillCategory {
	if r == nil || r.Skills == nil {
		return nil
	}
	out := make([]SkillCategory, 0, r.Skills.Len())
	for pair := r.Skills.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, SkillCategory{Key: pair.Key, Skills: pair.Value})
	}
	return out
}

// AddSkillCategory appends a category, creating the map when needed.
func (r *ResumeData) AddSkillCategory(key string, skills []Skill) {
	if r.Skills == nil {
		r.Skills = orderedmap.New[string, []Skill]()
	}
	r.Skills.Set(key, skills)
}

// IsEmpty reports whether the document carries no content at all, which is
// what a failed load returns.
func (r *ResumeData) IsEmpty() bool {
	if r == nil {
		return true
	}
	return r.Personal == (Personal{}) &&
		(r.Skills == nil || r.Skills.Len() == 0) &&
		len(r.Qualities) == 0 &&
		len(r.Experience) == 0 &&
		len(r.Education) == 0 &&
		len(r.Projects) == 0
}

// Validate performs best-effort structural validation of the document.
func (r *ResumeData) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r.Personal); err != nil {
		return fmt.Errorf("personal: %w", err)
	}
	for _, cat := range r.SkillCategories() {
		for i, s := range cat.Skills {
			if err := validate.Struct(s); err != nil {
				return fmt.Errorf("skills.%s[%d]: %w", cat.Key, i, err)
			}
		}
	}
	for i, j := range r.Experience {
		if err := validate.Struct(j); err != nil {
			return fmt.Errorf("experience[%d]: %w", i, err)
		}
	}
	for i, e := range r.Education {
		if err := validate.Struct(e); err != nil {
			return fmt.Errorf("education[%d]: %w", i, err)
		}
	}
	for i, p := range r.Projects {
		if err := validate.Struct(p); err != nil {
			return fmt.Errorf("projects[%d]: %w", i, err)
		}
	}
	return nil
}
