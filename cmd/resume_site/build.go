package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-site/internal/config"
	"github.com/jonathan/resume-site/internal/fetch"
	"github.com/jonathan/resume-site/internal/manifest"
	"github.com/jonathan/resume-site/internal/observability"
	"github.com/jonathan/resume-site/internal/site"
	"github.com/jonathan/resume-site/internal/storage"
	"github.com/jonathan/resume-site/internal/switcher"
)

// assetRoots are copied verbatim into the build output.
var assetRoots = []string{"data", "css", "resources", ".private"}

// buildConcurrency bounds the pages rendered at once.
const buildConcurrency = 4

var (
	buildOut      string
	buildSanitize bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the site to static HTML",
	Long: `Render index.html with the default selection plus one page per résumé and
theme combination (<resume>--<theme>.html), and copy the site's assets next to
them so the output can be hosted by any static file server.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "Output directory (defaults to output_dir from config, then dist)")
	buildCmd.Flags().BoolVar(&buildSanitize, "sanitize", false, "Sanitize résumé values instead of trusting them")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("out") {
		cfg.OutputDir = buildOut
	}
	if cmd.Flags().Changed("sanitize") {
		cfg.Sanitize = buildSanitize
	}

	files, err := buildSite(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintFiles("BUILD OUTPUT", files)
	}
	_, _ = fmt.Fprintf(os.Stdout, "Built %d pages into %s\n", len(files), cfg.OutputDir)
	return nil
}

type buildTarget struct {
	file  string
	query url.Values
}

// buildSite renders every page into cfg.OutputDir and returns the written
// page paths, sorted.
func buildSite(ctx context.Context, cfg config.Config) ([]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	source := fetch.NewDirSource(cfg.SiteDir)
	loader := manifest.NewLoader(source)
	resumes := loader.LoadResumes(ctx, manifest.ResumesPath)
	themes := loader.LoadThemes(ctx, manifest.ThemesPath)
	defaultResume := resolveDefaultResume(ctx, source, cfg)

	if err := copyAssets(cfg.SiteDir, cfg.OutputDir); err != nil {
		return nil, err
	}

	targets := []buildTarget{{file: "index.html"}}
	for _, r := range resumes.Entries() {
		for _, t := range themes.Entries() {
			targets = append(targets, buildTarget{
				file: fmt.Sprintf("%s--%s.html", slug(r.Name), slug(t.Key)),
				query: url.Values{
					switcher.ResumeParam: {r.Entry.JSONFile},
					switcher.ThemeParam:  {t.Key},
				},
			})
		}
	}

	var (
		mu      sync.Mutex
		written []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(buildConcurrency)
	for _, target := range targets {
		g.Go(func() error {
			out, err := renderTarget(gctx, cfg, source, defaultResume, target)
			if err != nil {
				return err
			}
			mu.Lock()
			written = append(written, out)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(written)
	return written, nil
}

func renderTarget(ctx context.Context, cfg config.Config, source fetch.Source, defaultResume string, target buildTarget) (string, error) {
	page, err := site.Boot(ctx, site.Options{
		Source:        source,
		Store:         storage.NewMemory(nil),
		Location:      &url.URL{Path: "/", RawQuery: target.query.Encode()},
		DefaultResume: defaultResume,
		Sanitize:      cfg.Sanitize,
		Watchdog:      cfg.Watchdog(),
		Verbose:       cfg.Verbose,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", target.file, err)
	}
	defer page.Close()

	if nav := page.Navigation(); nav != nil {
		log.Printf("[build] %s: renderer unavailable, page would reload to %s", target.file, nav)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", target.file, err)
	}

	out := filepath.Join(cfg.OutputDir, target.file)
	if err := os.WriteFile(out, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", out, err)
	}
	return out, nil
}

// copyAssets mirrors the asset directories of siteDir into outDir,
// overwriting files already there.
func copyAssets(siteDir, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, root := range assetRoots {
		src := filepath.Join(siteDir, root)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(siteDir, p)
			if err != nil {
				return err
			}
			dst := filepath.Join(outDir, rel)
			if d.IsDir() {
				return os.MkdirAll(dst, 0o755)
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			return os.WriteFile(dst, data, 0o644)
		})
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", root, err)
		}
	}
	return nil
}

// slug makes a manifest key safe as a file name.
func slug(key string) string {
	return strings.NewReplacer("/", "-", "\\", "-", " ", "_").Replace(key)
}
