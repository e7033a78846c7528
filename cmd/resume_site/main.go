// Package main provides the entry point for the résumé site CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_site",
	Short: "Résumé site server and static builder",
	Long: `resume_site serves and builds a single-page résumé site: a manifest of résumé
variants, a manifest of stylesheet themes, and a renderer that lays a résumé
document out as sidebar and main column. Selections are remembered between
visits and pages can be printed to PDF.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
