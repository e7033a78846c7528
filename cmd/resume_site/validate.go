package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-site/internal/fetch"
	"github.com/jonathan/resume-site/internal/manifest"
	"github.com/jonathan/resume-site/internal/observability"
	"github.com/jonathan/resume-site/internal/schemas"
	"github.com/jonathan/resume-site/internal/types"
)

var (
	validateSchema string
	validateInput  string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the site's manifests and résumé documents",
	Long: `Check data/resumes.json, data/themes.json and every résumé document the
manifest lists against the built-in JSON Schemas and the document rules
(required names, skill levels 0-5, unique jsonFile paths). With --schema and
--in, validate a single file against a schema file instead.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Path to a JSON Schema file (use with --in)")
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to a JSON file to validate against --schema")
	validateCmd.MarkFlagsRequiredTogether("schema", "in")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	var checks []observability.Check

	if validateSchema != "" {
		checks = []observability.Check{{Path: validateInput, Err: schemas.ValidateJSON(validateSchema, validateInput)}}
	} else {
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		checks = validateSite(ctx, fetch.NewDirSource(cfg.SiteDir))
	}

	observability.NewPrinter(os.Stdout).PrintChecks(checks)
	failed := 0
	for _, c := range checks {
		if c.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(checks))
	}
	return nil
}

// validateSite checks both manifests and every listed résumé document.
func validateSite(ctx context.Context, source fetch.Source) []observability.Check {
	var checks []observability.Check

	var resumes types.ResumeManifest
	checks = append(checks, checkDocument(ctx, source, manifest.ResumesPath, &resumes, resumes.Validate))

	var themes types.ThemeManifest
	checks = append(checks, checkDocument(ctx, source, manifest.ThemesPath, &themes, themes.Validate))

	for _, e := range resumes.Entries() {
		var doc types.ResumeData
		checks = append(checks, checkDocument(ctx, source, e.Entry.JSONFile, &doc, doc.Validate))
	}
	return checks
}

// checkDocument fetches relPath, validates it against its schema, decodes it
// into v and runs the struct rules.
func checkDocument(ctx context.Context, source fetch.Source, relPath string, v any, rules func() error) observability.Check {
	check := observability.Check{Path: relPath}

	data, err := source.Fetch(ctx, relPath)
	if err != nil {
		check.Err = err
		return check
	}
	if schema, ok := schemas.SchemaFor(relPath); ok {
		if err := schemas.ValidateDocument(schema, data); err != nil {
			check.Err = err
			return check
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		check.Err = fmt.Errorf("failed to decode: %w", err)
		return check
	}
	check.Err = rules()
	return check
}
