package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-site/internal/manifestgen"
	"github.com/jonathan/resume-site/internal/observability"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Regenerate data/resumes.json and data/themes.json",
	Long: `Scan resources/ and .private/resources/ for résumé directories (first *.json
plus first *.png) and css/ and .private/css/ for theme directories holding a
theme.css, then write both manifests under data/.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	summary, err := manifestgen.Generate(cfg.SiteDir)
	if err != nil {
		return fmt.Errorf("failed to generate manifests: %w", err)
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintFiles("GENERATED MANIFESTS", summary.Written)
	}
	_, _ = fmt.Fprintf(os.Stdout, "Generated %d résumés and %d themes (%d directories skipped)\n",
		summary.Resumes, summary.Themes, len(summary.Skipped))
	return nil
}
