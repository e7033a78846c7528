package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-site/internal/export"
	"github.com/jonathan/resume-site/internal/fetch"
	"github.com/jonathan/resume-site/internal/server"
)

var (
	servePort     int
	serveStorage  string
	serveSanitize bool
	serveDefault  string
	serveNoExport bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the résumé site",
	Long: `Start an HTTP server that serves the site's assets and renders the page per
request. Selections are stored in the configured backend (file, memory or
postgres) and GET /export.pdf prints the page through headless Chrome.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveStorage, "storage", "", "Selection storage: file, memory or postgres")
	serveCmd.Flags().BoolVar(&serveSanitize, "sanitize", false, "Sanitize résumé values instead of trusting them")
	serveCmd.Flags().StringVar(&serveDefault, "default-resume", "", "Résumé document rendered first (defaults to the first manifest entry)")
	serveCmd.Flags().BoolVar(&serveNoExport, "no-export", false, "Disable PDF export")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("storage") {
		cfg.Storage = serveStorage
	}
	if cmd.Flags().Changed("sanitize") {
		cfg.Sanitize = serveSanitize
	}
	if cmd.Flags().Changed("default-resume") {
		cfg.DefaultResume = serveDefault
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open selection store: %w", err)
	}
	defer closeStore()

	var printer export.Printer
	if !serveNoExport {
		printer = export.NewChromePrinter(export.ChromeOptions{ExecPath: cfg.ChromePath, Verbose: cfg.Verbose})
	}

	srv, err := server.New(server.Config{
		Port:          cfg.Port,
		SiteDir:       cfg.SiteDir,
		Store:         store,
		DefaultResume: resolveDefaultResume(ctx, fetch.NewDirSource(cfg.SiteDir), cfg),
		Sanitize:      cfg.Sanitize,
		Printer:       printer,
		Watchdog:      cfg.Watchdog(),
		Verbose:       cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
