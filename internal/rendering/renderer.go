package rendering

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/jonathan/resume-site/internal/app"
	"github.com/jonathan/resume-site/internal/dom"
	"github.com/jonathan/resume-site/internal/events"
	"github.com/jonathan/resume-site/internal/manifest"
	"github.com/jonathan/resume-site/internal/types"
)

// Print-mode markers.
const (
	PrintOptimizedClass = "print-optimized"
	PrintSpacingClass   = "print-spacing"
	avoidBreakProperty  = "page-break-inside"
	avoidBreakValue     = "avoid"
)

// Social profile URL prefixes, keyed by contact field.
var socialPrefixes = map[string]string{
	"linkedin":  "https://www.linkedin.com/in/",
	"instagram": "https://www.instagram.com/",
	"github":    "https://github.com/",
}

//go:embed templates/*.tmpl
var templateFS embed.FS

// Options configures a Renderer.
type Options struct {
	// DefaultPath is the résumé document rendered by Initialize.
	DefaultPath string
	// Sanitize passes every interpolated value through an HTML sanitizer.
	// Résumé documents are otherwise trusted and inserted as raw markup.
	Sanitize bool
}

// Renderer fetches résumé documents and renders them into the résumé container.
type Renderer struct {
	app    *app.Context
	opts   Options
	tmpl   *template.Template
	policy *bluemonday.Policy

	mu          sync.Mutex
	current     *types.ResumeData
	currentPath string
	unsubscribe []func()
}

// New creates a Renderer and hooks it to the print lifecycle topics.
func New(appCtx *app.Context, opts Options) (*Renderer, error) {
	if opts.DefaultPath == "" {
		opts.DefaultPath = manifest.DefaultResumePath
	}
	r := &Renderer{app: appCtx, opts: opts}
	if opts.Sanitize {
		r.policy = bluemonday.UGCPolicy()
	}

	tmpl, err := template.New("resume").Funcs(r.funcMap()).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse résumé template", Cause: err}
	}
	r.tmpl = tmpl

	r.unsubscribe = append(r.unsubscribe,
		events.Subscribe(appCtx.Bus, events.TopicBeforePrint, func(events.PrintPhase) { r.OptimizeForPrint() }),
		events.Subscribe(appCtx.Bus, events.TopicAfterPrint, func(events.PrintPhase) { r.RestoreFromPrint() }),
	)
	return r, nil
}

// Close detaches the print hooks.
func (r *Renderer) Close() {
	for _, fn := range r.unsubscribe {
		fn()
	}
	r.unsubscribe = nil
}

// Initialize renders the default document and, once that succeeded, registers
// the renderer in the application context.
func (r *Renderer) Initialize(ctx context.Context) error {
	if _, err := r.Load(ctx, r.opts.DefaultPath); err != nil {
		return err
	}
	if r.app.RegisterRenderer(r) {
		log.Printf("[renderer] ready (%s)", r.opts.DefaultPath)
	}
	return nil
}

// Load fetches the document at path and renders it. On failure the existing
// markup is left untouched and an empty document is returned with the error.
func (r *Renderer) Load(ctx context.Context, path string) (*types.ResumeData, error) {
	raw, err := r.app.Source.Fetch(ctx, path)
	if err != nil {
		log.Printf("[renderer] failed to load résumé %s: %v", path, err)
		log.Printf("[renderer] hint: résumé files must be served over HTTP; run `resume-site serve` from the site root instead of opening the page from disk")
		return &types.ResumeData{}, &LoadError{Path: path, Cause: err}
	}

	var data types.ResumeData
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Printf("[renderer] failed to parse résumé %s: %v", path, err)
		return &types.ResumeData{}, &LoadError{Path: path, Cause: err}
	}

	r.mu.Lock()
	r.current = &data
	r.currentPath = path
	r.mu.Unlock()

	if err := r.Render(&data); err != nil {
		return &data, err
	}
	return &data, nil
}

// Current returns the last loaded document and its path.
func (r *Renderer) Current() (*types.ResumeData, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.currentPath
}

// Render replaces the résumé container's markup with data.
func (r *Renderer) Render(data *types.ResumeData) error {
	if data == nil {
		log.Printf("[renderer] no résumé data to render")
		return &RenderError{Message: "no résumé data"}
	}
	if !r.app.Doc.Exists(dom.ResumeContainer) {
		log.Printf("[renderer] container %s not found", dom.ResumeContainer)
		return &RenderError{Message: "résumé container not found"}
	}

	markup, err := r.RenderHTML(data)
	if err != nil {
		log.Printf("[renderer] %v", err)
		return err
	}
	r.app.Doc.SetHTML(dom.ResumeContainer, markup)
	return nil
}

// RenderHTML returns the résumé markup for data without touching the document.
func (r *Renderer) RenderHTML(data *types.ResumeData) (string, error) {
	view := struct {
		*types.ResumeData
		Categories []types.SkillCategory
	}{data, data.SkillCategories()}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "resume", view); err != nil {
		return "", &TemplateError{Message: "failed to execute résumé template", Cause: err}
	}
	return buf.String(), nil
}

// OptimizeForPrint prepares the rendered résumé for paged output.
func (r *Renderer) OptimizeForPrint() {
	r.app.Doc.Mutate(func(doc *goquery.Document) {
		doc.Find(dom.ResumeContainer).AddClass(PrintOptimizedClass)
		doc.Find(".job, .education-item").Each(func(_ int, s *goquery.Selection) {
			style, _ := s.Attr("style")
			s.SetAttr("style", setStyleProperty(style, avoidBreakProperty, avoidBreakValue))
		})
		doc.Find(".card").AddClass(PrintSpacingClass)
	})
}

// RestoreFromPrint undoes OptimizeForPrint.
func (r *Renderer) RestoreFromPrint() {
	r.app.Doc.Mutate(func(doc *goquery.Document) {
		doc.Find(dom.ResumeContainer).RemoveClass(PrintOptimizedClass)
		doc.Find(".job, .education-item").Each(func(_ int, s *goquery.Selection) {
			style, _ := s.Attr("style")
			style = setStyleProperty(style, avoidBreakProperty, "")
			if style == "" {
				s.RemoveAttr("style")
				return
			}
			s.SetAttr("style", style)
		})
		doc.Find(".card").RemoveClass(PrintSpacingClass)
	})
}

func (r *Renderer) funcMap() template.FuncMap {
	return template.FuncMap{
		"v":      r.value,
		"href":   r.href,
		"mailto": func(email string) any { return r.href("mailto:" + email) },
		"social": func(network, handle string) any {
			return r.href(socialPrefixes[network] + url.PathEscape(strings.TrimSpace(handle)))
		},
		"title": types.TitleCase,
		"meter": meterSegments,
	}
}

// value returns s as trusted markup, or sanitized markup in sanitize mode.
func (r *Renderer) value(s string) any {
	if r.policy != nil {
		return template.HTML(r.policy.Sanitize(s))
	}
	return template.HTML(s)
}

// href returns s as a trusted URL. In sanitize mode the plain string is
// returned so unsafe schemes are filtered by the template engine.
func (r *Renderer) href(s string) any {
	if r.policy != nil {
		return s
	}
	return template.URL(s)
}

func meterSegments(level int) []bool {
	segs := make([]bool, types.MaxSkillLevel)
	for i := range segs {
		segs[i] = i < level
	}
	return segs
}

// setStyleProperty sets (or with an empty value removes) one declaration of
// an inline style attribute, keeping the others in order.
func setStyleProperty(style, property, value string) string {
	var decls []string
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		name, _, _ := strings.Cut(decl, ":")
		if strings.EqualFold(strings.TrimSpace(name), property) {
			continue
		}
		decls = append(decls, decl)
	}
	if value != "" {
		decls = append(decls, property+": "+value)
	}
	if len(decls) == 0 {
		return ""
	}
	return strings.Join(decls, "; ") + ";"
}
