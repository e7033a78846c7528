// Package switcher implements the résumé and theme selectors: initial
// selection, change handling, persistence and change notifications.
package switcher

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/resume-site/internal/dom"
	"github.com/jonathan/resume-site/internal/types"
)

// Visibility is the requested state of a selector box.
type Visibility int

// Visibility modes.
const (
	Show Visibility = iota
	Hide
	Toggle
)

// ParseVisibility maps "show", "hide" and "toggle" to a Visibility.
func ParseVisibility(s string) (Visibility, error) {
	switch s {
	case "show":
		return Show, nil
	case "hide":
		return Hide, nil
	case "toggle":
		return Toggle, nil
	}
	return Show, fmt.Errorf("unknown visibility %q", s)
}

// State is the lifecycle of the résumé switcher.
type State int

// Résumé switcher states.
const (
	Uninitialized State = iota
	ManifestLoaded
	AwaitingRenderer
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case ManifestLoaded:
		return "manifest-loaded"
	case AwaitingRenderer:
		return "awaiting-renderer"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrorPanelClass marks the panel shown when no renderer is available.
const ErrorPanelClass = "error-panel"

const errorPanelHTML = `<div class="error-panel" role="alert">` +
	`<h2>Résumé unavailable</h2>` +
	`<p>The résumé renderer did not start, so the selected résumé cannot be shown. ` +
	`Check the log for loading errors and reload the page.</p></div>`

func setVisibility(doc *dom.Document, box string, mode Visibility) {
	switch mode {
	case Show:
		doc.RemoveClass(box, dom.HiddenClass)
	case Hide:
		doc.AddClass(box, dom.HiddenClass)
	case Toggle:
		doc.ToggleClass(box, dom.HiddenClass)
	}
}

// reveal shows the selector box and moves focus to its select.
func reveal(doc *dom.Document, box, selectID string) {
	doc.Mutate(func(d *goquery.Document) {
		d.Find(box).RemoveClass(dom.HiddenClass)
		d.Find("." + dom.FocusedClass).RemoveClass(dom.FocusedClass)
		d.Find(selectID).AddClass(dom.FocusedClass)
	})
}

// showErrorPanel prepends the error panel to the body unless one is present.
func showErrorPanel(doc *dom.Document) {
	doc.Mutate(func(d *goquery.Document) {
		if d.Find("."+ErrorPanelClass).Length() > 0 {
			return
		}
		d.Find(dom.Body).PrependHtml(errorPanelHTML)
	})
}

func selectLabel(key string) string {
	return types.TitleCase(key)
}
