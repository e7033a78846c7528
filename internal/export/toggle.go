package export

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/resume-site/internal/app"
	"github.com/jonathan/resume-site/internal/dom"
)

// Helper drives the PDF-mode class on <body> and the toggle button state.
// It is published in the application context so the theme switcher can ask
// it to refresh after a theme change.
type Helper struct {
	app *app.Context
}

// NewHelper creates a Helper and publishes it in appCtx.
func NewHelper(appCtx *app.Context) *Helper {
	h := &Helper{app: appCtx}
	appCtx.SetPDFHelper(h)
	return h
}

// Active reports whether the page is in PDF mode.
func (h *Helper) Active() bool {
	return h.app.Doc.HasClass(dom.Body, dom.PDFModeClass)
}

// SetActive switches PDF mode on or off.
func (h *Helper) SetActive(on bool) {
	if on {
		h.app.Doc.AddClass(dom.Body, dom.PDFModeClass)
	} else {
		h.app.Doc.RemoveClass(dom.Body, dom.PDFModeClass)
	}
	h.RefreshToggle()
}

// Toggle flips PDF mode.
func (h *Helper) Toggle() {
	h.SetActive(!h.Active())
}

// RefreshToggle syncs the toggle button with the page: pressed while PDF mode
// is on, and flagged when the active theme is itself a PDF theme.
func (h *Helper) RefreshToggle() {
	pdfTheme := false
	if ts := h.app.ThemeSwitcher(); ts != nil {
		pdfTheme = strings.Contains(strings.ToLower(ts.CurrentTheme()), "pdf")
	}
	h.app.Doc.Mutate(func(doc *goquery.Document) {
		active := doc.Find(dom.Body).HasClass(dom.PDFModeClass)
		btn := doc.Find(dom.PDFToggle)
		btn.SetAttr("aria-pressed", strconv.FormatBool(active))
		btn.SetAttr("data-pdf-theme", strconv.FormatBool(pdfTheme))
	})
}
