package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-site/internal/config"
	"github.com/jonathan/resume-site/internal/db"
	"github.com/jonathan/resume-site/internal/fetch"
	"github.com/jonathan/resume-site/internal/manifest"
	"github.com/jonathan/resume-site/internal/storage"
)

var (
	configPath string
	siteDir    string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to resume-site.json (defaults to ./resume-site.json when present)")
	rootCmd.PersistentFlags().StringVarP(&siteDir, "site", "s", "", "Site directory holding data/, css/ and resources/")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

// loadSettings resolves the configuration: config file, then environment,
// then flags the user set explicitly, then defaults.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config

	path := configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigFile); err == nil {
			path = config.DefaultConfigFile
		}
	}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("site") {
		cfg.SiteDir = siteDir
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Verbose && path != "" {
		_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", path)
	}
	return cfg, nil
}

// openStore opens the selection store the configuration names. The returned
// function releases it.
func openStore(ctx context.Context, cfg config.Config) (storage.Store, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return storage.NewMemory(nil), func() {}, nil
	case config.StorageFile, "":
		return storage.NewFile(cfg.PreferencesFile), func() {}, nil
	case config.StoragePostgres:
		if cfg.Database == "" {
			return nil, nil, errors.New("DATABASE_URL environment variable or database_url config is required for postgres storage")
		}
		database, err := db.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		return storage.NewPostgres(database, cfg.Profile), database.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

// resolveDefaultResume returns the configured default résumé, or the first
// manifest entry.
func resolveDefaultResume(ctx context.Context, source fetch.Source, cfg config.Config) string {
	if cfg.DefaultResume != "" {
		return cfg.DefaultResume
	}
	first, _ := manifest.NewLoader(source).LoadResumes(ctx, manifest.ResumesPath).First()
	if cfg.Verbose {
		log.Printf("[resume_site] default résumé: %s", first.Entry.JSONFile)
	}
	return first.Entry.JSONFile
}
