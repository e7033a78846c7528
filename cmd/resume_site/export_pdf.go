package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-site/internal/config"
	"github.com/jonathan/resume-site/internal/export"
	"github.com/jonathan/resume-site/internal/fetch"
	"github.com/jonathan/resume-site/internal/site"
	"github.com/jonathan/resume-site/internal/storage"
	"github.com/jonathan/resume-site/internal/switcher"
)

var (
	exportResume  string
	exportTheme   string
	exportOut     string
	exportPDFMode bool
)

var exportPDFCmd = &cobra.Command{
	Use:   "export-pdf",
	Short: "Print a résumé to PDF",
	Long:  "Render the page for the chosen résumé and theme and print it to an A4 PDF through headless Chrome (CHROME_PATH or chrome_path selects the binary).",
	RunE:  runExportPDF,
}

func init() {
	exportPDFCmd.Flags().StringVarP(&exportResume, "resume", "r", "", "Résumé document path, as listed in data/resumes.json")
	exportPDFCmd.Flags().StringVarP(&exportTheme, "theme", "t", "", "Theme key, as listed in data/themes.json")
	exportPDFCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Path to output PDF file (required)")
	exportPDFCmd.Flags().BoolVar(&exportPDFMode, "pdf-mode", false, "Turn on PDF mode before printing")

	if err := exportPDFCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(exportPDFCmd)
}

func runExportPDF(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	printer := export.NewChromePrinter(export.ChromeOptions{ExecPath: cfg.ChromePath, Verbose: cfg.Verbose})

	pdf, err := exportPDF(ctx, cfg, printer, exportResume, exportTheme, exportPDFMode)
	if err != nil {
		return err
	}

	if err := os.WriteFile(exportOut, pdf, 0o644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "Wrote %s (%d bytes)\n", exportOut, len(pdf))
	return nil
}

// exportPDF boots the page for the given selection and prints it. Assets
// resolve against the site directory through a file:// base.
func exportPDF(ctx context.Context, cfg config.Config, printer export.Printer, resume, theme string, pdfMode bool) ([]byte, error) {
	abs, err := filepath.Abs(cfg.SiteDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve site directory: %w", err)
	}

	query := url.Values{}
	if resume != "" {
		query.Set(switcher.ResumeParam, resume)
	}
	if theme != "" {
		query.Set(switcher.ThemeParam, theme)
	}

	source := fetch.NewDirSource(cfg.SiteDir)
	page, err := site.Boot(ctx, site.Options{
		Source:        source,
		Store:         storage.NewMemory(nil),
		Location:      &url.URL{Path: "/", RawQuery: query.Encode()},
		DefaultResume: resolveDefaultResume(ctx, source, cfg),
		Sanitize:      cfg.Sanitize,
		Watchdog:      cfg.Watchdog(),
		Verbose:       cfg.Verbose,
	})
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if resume != "" && page.Resumes.CurrentResume() != resume {
		return nil, fmt.Errorf("résumé %s is not listed in the manifest", resume)
	}
	if theme != "" && page.Themes.CurrentTheme() != theme {
		return nil, fmt.Errorf("theme %s is not listed in the manifest", theme)
	}
	if pdfMode {
		page.PDF.SetActive(true)
	}

	base := &url.URL{Scheme: "file", Path: filepath.ToSlash(abs) + "/"}
	return export.Export(ctx, page.App, printer, base.String())
}
