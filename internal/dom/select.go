package dom

import (
	"github.com/PuerkitoBio/goquery"
)

// Option is one entry of a <select>.
type Option struct {
	Value string
	Label string
}

// SetOptions replaces the options of the <select> matching selector.
func (d *Document) SetOptions(selector string, options []Option) bool {
	found := false
	d.Mutate(func(doc *goquery.Document) {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return
		}
		found = true
		sel.Empty()
		for _, o := range options {
			sel.AppendHtml("<option></option>")
			sel.Children().Last().SetAttr("value", o.Value).SetText(o.Label)
		}
	})
	return found
}

// Options returns the options of the <select> matching selector.
func (d *Document) Options(selector string) []Option {
	var out []Option
	d.Read(func(doc *goquery.Document) {
		doc.Find(selector).First().Find("option").Each(func(_ int, s *goquery.Selection) {
			v, _ := s.Attr("value")
			out = append(out, Option{Value: v, Label: s.Text()})
		})
	})
	return out
}

// SelectValue marks the option with value as selected and clears the others.
// It reports whether such an option exists.
func (d *Document) SelectValue(selector, value string) bool {
	found := false
	d.Mutate(func(doc *goquery.Document) {
		opts := doc.Find(selector).First().Find("option")
		opts.RemoveAttr("selected")
		match := opts.FilterFunction(func(_ int, s *goquery.Selection) bool {
			v, _ := s.Attr("value")
			return v == value
		})
		if match.Length() > 0 {
			match.First().SetAttr("selected", "selected")
			found = true
		}
	})
	return found
}

// SelectedValue returns the value of the selected option, or of the first
// option when none is marked, mirroring what a browser reports.
func (d *Document) SelectedValue(selector string) string {
	var out string
	d.Read(func(doc *goquery.Document) {
		opts := doc.Find(selector).First().Find("option")
		sel := opts.Filter("[selected]")
		if sel.Length() == 0 {
			sel = opts
		}
		out, _ = sel.First().Attr("value")
	})
	return out
}
