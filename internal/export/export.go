// Package export prints the rendered page to PDF with headless Chrome and
// manages the page's PDF-mode toggle.
package export

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/resume-site/internal/app"
	"github.com/jonathan/resume-site/internal/events"
)

// DefaultTimeout bounds one Chrome print.
const DefaultTimeout = 60 * time.Second

// A4 paper size in inches.
const (
	A4Width  = 8.27
	A4Height = 11.69
)

// Printer turns a complete HTML page into PDF bytes.
type Printer interface {
	PrintHTML(ctx context.Context, html string) ([]byte, error)
}

// Error represents a failed export.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("export error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ChromeOptions configures ChromePrinter.
type ChromeOptions struct {
	// ExecPath overrides the Chrome binary; CHROME_PATH is used when empty.
	ExecPath    string
	Timeout     time.Duration
	PaperWidth  float64
	PaperHeight float64
	Verbose     bool
}

// ChromePrinter prints through a headless Chrome started per call.
type ChromePrinter struct {
	opts ChromeOptions
}

// NewChromePrinter creates a ChromePrinter with defaults filled in.
func NewChromePrinter(opts ChromeOptions) *ChromePrinter {
	if opts.ExecPath == "" {
		opts.ExecPath = os.Getenv("CHROME_PATH")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PaperWidth <= 0 {
		opts.PaperWidth = A4Width
	}
	if opts.PaperHeight <= 0 {
		opts.PaperHeight = A4Height
	}
	return &ChromePrinter{opts: opts}
}

// PrintHTML implements Printer. The page is written to a temporary file so
// relative asset URLs resolve against its <base>.
func (p *ChromePrinter) PrintHTML(ctx context.Context, html string) ([]byte, error) {
	if p.opts.Verbose {
		log.Printf("[export] starting headless browser (%d bytes of HTML)", len(html))
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if p.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(p.opts.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, p.opts.Timeout)
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "resume-site-")
	if err != nil {
		return nil, &Error{Message: "failed to create temp dir", Cause: err}
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, &Error{Message: "failed to write page", Cause: err}
	}

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(p.opts.PaperWidth).
				WithPaperHeight(p.opts.PaperHeight).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &Error{Message: "browser printing failed", Cause: err}
	}

	if p.opts.Verbose {
		log.Printf("[export] printed PDF: %d bytes", len(pdf))
	}
	return pdf, nil
}

// Export runs the print lifecycle on the page and prints it. TopicBeforePrint
// is published before the page is captured and TopicAfterPrint after, even
// when printing fails. baseURL, when set, becomes the page's <base href> so
// stylesheets and photos resolve outside the site.
func Export(ctx context.Context, appCtx *app.Context, printer Printer, baseURL string) ([]byte, error) {
	events.Publish(appCtx.Bus, events.TopicBeforePrint, events.PrintPhase{Reason: "export"})
	defer events.Publish(appCtx.Bus, events.TopicAfterPrint, events.PrintPhase{Reason: "export"})

	html, err := appCtx.Doc.HTML()
	if err != nil {
		return nil, &Error{Message: "failed to capture page", Cause: err}
	}
	if baseURL != "" {
		if html, err = WithBase(html, baseURL); err != nil {
			return nil, err
		}
	}

	return printer.PrintHTML(ctx, html)
}

// WithBase returns html with <base href="baseURL"> as the first child of <head>,
// replacing any existing base element.
func WithBase(html, baseURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", &Error{Message: "failed to parse page", Cause: err}
	}
	doc.Find("head base").Remove()
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	head := doc.Find("head").First()
	head.PrependHtml("<base>")
	head.Children().First().SetAttr("href", baseURL)

	out, err := doc.Html()
	if err != nil {
		return "", &Error{Message: "failed to serialize page", Cause: err}
	}
	return out, nil
}
