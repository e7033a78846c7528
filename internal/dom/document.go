// Package dom models the page document as a goquery tree whose reads and
// writes are serialized, so components on different goroutines observe the
// same ordering a single UI thread would give them.
package dom

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Well-known elements of the page shell.
const (
	ResumeContainer   = "#resume-container"
	ResumeSelect      = "#resume-select"
	ResumeSwitcherBox = "#resume-switcher"
	ThemeSelect       = "#theme-select"
	ThemeSwitcherBox  = "#theme-switcher"
	ThemeStylesheet   = "link#theme-stylesheet"
	PDFToggle         = "#pdf-toggle"
	Body              = "body"
)

// Class names shared by components.
const (
	HiddenClass  = "hidden"
	FocusedClass = "focused"
	PDFModeClass = "pdf-mode"
)

//go:embed shell.html
var defaultShell string

// DefaultShell returns the built-in page shell markup.
func DefaultShell() string {
	return defaultShell
}

// Document is a parsed HTML page guarded by a mutex.
type Document struct {
	mu  sync.Mutex
	doc *goquery.Document
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString parses an HTML page held in memory.
func ParseString(html string) (*Document, error) {
	return Parse(strings.NewReader(html))
}

// NewShell parses the built-in page shell.
func NewShell() (*Document, error) {
	return ParseString(defaultShell)
}

// Mutate runs fn with exclusive access to the tree.
func (d *Document) Mutate(fn func(doc *goquery.Document)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.doc)
}

// Read runs fn with exclusive access to the tree. fn must not modify it.
func (d *Document) Read(fn func(doc *goquery.Document)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.doc)
}

// HTML serializes the whole page.
func (d *Document) HTML() (string, error) {
	var (
		out string
		err error
	)
	d.Read(func(doc *goquery.Document) {
		out, err = doc.Html()
	})
	if err != nil {
		return "", fmt.Errorf("failed to serialize document: %w", err)
	}
	return out, nil
}

// Exists reports whether selector matches at least one element.
func (d *Document) Exists(selector string) bool {
	found := false
	d.Read(func(doc *goquery.Document) {
		found = doc.Find(selector).Length() > 0
	})
	return found
}

// Count returns how many elements match selector.
func (d *Document) Count(selector string) int {
	n := 0
	d.Read(func(doc *goquery.Document) {
		n = doc.Find(selector).Length()
	})
	return n
}

// Attr returns the attribute of the first element matching selector.
func (d *Document) Attr(selector, name string) (string, bool) {
	var (
		val string
		ok  bool
	)
	d.Read(func(doc *goquery.Document) {
		val, ok = doc.Find(selector).First().Attr(name)
	})
	return val, ok
}

// SetAttr sets an attribute on every element matching selector and returns how many matched.
func (d *Document) SetAttr(selector, name, value string) int {
	n := 0
	d.Mutate(func(doc *goquery.Document) {
		sel := doc.Find(selector)
		sel.SetAttr(name, value)
		n = sel.Length()
	})
	return n
}

// HasClass reports whether the first element matching selector carries class.
func (d *Document) HasClass(selector, class string) bool {
	has := false
	d.Read(func(doc *goquery.Document) {
		has = doc.Find(selector).First().HasClass(class)
	})
	return has
}

// AddClass adds class to every element matching selector.
func (d *Document) AddClass(selector, class string) {
	d.Mutate(func(doc *goquery.Document) {
		doc.Find(selector).AddClass(class)
	})
}

// RemoveClass removes class from every element matching selector.
func (d *Document) RemoveClass(selector, class string) {
	d.Mutate(func(doc *goquery.Document) {
		doc.Find(selector).RemoveClass(class)
	})
}

// ToggleClass flips class on every element matching selector.
func (d *Document) ToggleClass(selector, class string) {
	d.Mutate(func(doc *goquery.Document) {
		doc.Find(selector).ToggleClass(class)
	})
}

// SetHTML replaces the inner markup of the first element matching selector.
// It reports false when nothing matched.
func (d *Document) SetHTML(selector, html string) bool {
	ok := false
	d.Mutate(func(doc *goquery.Document) {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return
		}
		sel.SetHtml(html)
		ok = true
	})
	return ok
}

// InnerHTML returns the inner markup of the first element matching selector.
func (d *Document) InnerHTML(selector string) (string, error) {
	var (
		out string
		err error
	)
	d.Read(func(doc *goquery.Document) {
		out, err = doc.Find(selector).First().Html()
	})
	return out, err
}

// Text returns the combined text of the elements matching selector.
func (d *Document) Text(selector string) string {
	var out string
	d.Read(func(doc *goquery.Document) {
		out = doc.Find(selector).Text()
	})
	return out
}
