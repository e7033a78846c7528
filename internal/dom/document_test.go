package dom

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShell_HasWellKnownElements(t *testing.T) {
	doc, err := NewShell()
	require.NoError(t, err)

	for _, sel := range []string{ResumeContainer, ResumeSelect, ThemeSelect, ThemeStylesheet, ResumeSwitcherBox, ThemeSwitcherBox, PDFToggle} {
		assert.True(t, doc.Exists(sel), "shell should contain %s", sel)
	}
}

func TestDocument_AttrAndClass(t *testing.T) {
	doc, err := NewShell()
	require.NoError(t, err)

	assert.Equal(t, 1, doc.SetAttr(ThemeStylesheet, "href", "css/dark/theme.css"))
	href, ok := doc.Attr(ThemeStylesheet, "href")
	require.True(t, ok)
	assert.Equal(t, "css/dark/theme.css", href)

	doc.AddClass(Body, PDFModeClass)
	assert.True(t, doc.HasClass(Body, PDFModeClass))
	doc.ToggleClass(Body, PDFModeClass)
	assert.False(t, doc.HasClass(Body, PDFModeClass))

	assert.Equal(t, 0, doc.SetAttr("#missing", "x", "y"))
}

func TestDocument_SetHTML(t *testing.T) {
	doc, err := NewShell()
	require.NoError(t, err)

	require.True(t, doc.SetHTML(ResumeContainer, `<p class="hello">hi</p>`))
	assert.Equal(t, 1, doc.Count(ResumeContainer+" .hello"))
	assert.Equal(t, "hi", doc.Text(ResumeContainer))

	assert.False(t, doc.SetHTML("#nope", "<p></p>"))
}

func TestDocument_Options(t *testing.T) {
	doc, err := NewShell()
	require.NoError(t, err)

	require.True(t, doc.SetOptions(ResumeSelect, []Option{
		{Value: "a.json", Label: "Alpha"},
		{Value: `b"&.json`, Label: "Beta <Dev>"},
	}))

	opts := doc.Options(ResumeSelect)
	require.Len(t, opts, 2)
	assert.Equal(t, `b"&.json`, opts[1].Value)
	assert.Equal(t, "Beta <Dev>", opts[1].Label)

	assert.Equal(t, "a.json", doc.SelectedValue(ResumeSelect))
	assert.True(t, doc.SelectValue(ResumeSelect, `b"&.json`))
	assert.Equal(t, `b"&.json`, doc.SelectedValue(ResumeSelect))
	assert.False(t, doc.SelectValue(ResumeSelect, "zzz"))
}

func TestDocument_SetOptionsReplacesAndKeepsMarkupInert(t *testing.T) {
	doc, err := NewShell()
	require.NoError(t, err)

	require.True(t, doc.SetOptions(ThemeSelect, []Option{{Value: "old", Label: "Old"}}))
	require.True(t, doc.SetOptions(ThemeSelect, []Option{
		{Value: "x", Label: `</option><script>alert(1)</script>`},
	}))

	opts := doc.Options(ThemeSelect)
	require.Len(t, opts, 1)
	assert.Equal(t, "x", opts[0].Value)
	assert.Equal(t, `</option><script>alert(1)</script>`, opts[0].Label)
	assert.Equal(t, 0, doc.Count(ThemeSelect+" script"))
	assert.False(t, doc.SetOptions("#missing", nil))
}

func TestDocument_HTMLRoundTrip(t *testing.T) {
	doc, err := NewShell()
	require.NoError(t, err)
	doc.SetAttr(Body, "data-theme", "dark")

	out, err := doc.HTML()
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, `data-theme="dark"`))

	again, err := ParseString(out)
	require.NoError(t, err)
	v, ok := again.Attr(Body, "data-theme")
	require.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestDocument_ConcurrentMutations(t *testing.T) {
	doc, err := NewShell()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			doc.ToggleClass(Body, "flip")
		}()
		go func() {
			defer wg.Done()
			_ = doc.HasClass(Body, "flip")
		}()
	}
	wg.Wait()

	assert.False(t, doc.HasClass(Body, "flip"))
}
