// Package app wires configuration, fetching, extraction and serving into a
// single application object shared by the CLI subcommands.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goextract/internal/altversion"
	"github.com/hyperifyio/goextract/internal/batch"
	"github.com/hyperifyio/goextract/internal/cache"
	"github.com/hyperifyio/goextract/internal/engine"
	"github.com/hyperifyio/goextract/internal/fetch"
	"github.com/hyperifyio/goextract/internal/server"
	"github.com/hyperifyio/goextract/internal/siterules"
)

// ShutdownTimeout bounds graceful server shutdown.
const ShutdownTimeout = 10 * time.Second

type App struct {
	cfg    Config
	engine *engine.Engine
	batch  *batch.Processor
}

// New validates cfg and builds the application. Cache maintenance runs once
// here; failures are logged and do not stop startup.
func New(cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	pageCache := cache.New(cfg.CacheDir)
	if pageCache != nil {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
			if err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache purge failed")
			} else if n > 0 {
				log.Info().Int("removed", n).Msg("purged stale cache entries")
			}
		}
	}

	var opts []engine.Option
	if strings.TrimSpace(cfg.SiteRulesPath) != "" {
		reg, err := siterules.Load(cfg.SiteRulesPath)
		if err != nil {
			return nil, err
		}
		log.Info().Int("sites", reg.Len()).Str("path", cfg.SiteRulesPath).Msg("site rules loaded")
		opts = append(opts, engine.WithSiteRules(reg))
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = batch.DefaultWorkers()
	}
	fc := &fetch.Client{
		HTTPClient:        newHTTPClient(workers),
		UserAgent:         cfg.UserAgent,
		AcceptLanguage:    cfg.AcceptLanguage,
		MaxAttempts:       cfg.MaxAttempts,
		PerRequestTimeout: cfg.FetchTimeout,
		RetryBackoff:      cfg.RetryBackoff,
		RedirectMaxHops:   cfg.RedirectMaxHops,
		Cache:             pageCache,
	}
	eng := engine.New(opts...)

	return &App{
		cfg:    cfg,
		engine: eng,
		batch: &batch.Processor{
			Fetcher: fc,
			Engine:  eng,
			Alt: &altversion.Resolver{
				Fetcher: fc,
				Timeout: cfg.AltFetchTimeout,
				Ratio:   altversion.DefaultRatio,
			},
			Workers: workers,
		},
	}, nil
}

// Run extracts urls and returns the batch body. It satisfies server.Runner.
func (a *App) Run(ctx context.Context, urls []string, preferAlt bool) string {
	return a.batch.Run(ctx, urls, preferAlt)
}

// Extract runs the configured batch over newline-separated URLs.
func (a *App) Extract(ctx context.Context, raw string) string {
	return a.batch.RunText(ctx, raw, a.cfg.PreferAlt)
}

// ExtractFile runs the engine over a local HTML file as if it had been
// fetched from finalURL. No network I/O happens.
func (a *App) ExtractFile(path, finalURL string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read html: %w", err)
	}
	html, err := fetch.Decode(b, "")
	if err != nil {
		return "", fmt.Errorf("decode html: %w", err)
	}
	return a.engine.Extract(finalURL, html), nil
}

// Serve runs the HTTP server until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	return server.New(a).ListenAndServe(ctx, a.cfg.Addr, ShutdownTimeout)
}
