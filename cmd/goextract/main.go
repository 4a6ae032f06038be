package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/goextract/internal/app"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("goextract failed")
		os.Exit(1)
	}
}

// options holds the persistent flags shared by every subcommand.
type options struct {
	cfg        app.Config
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	o := &options{cfg: app.Defaults()}
	root := &cobra.Command{
		Use:           "goextract",
		Short:         "Extract the main content of web pages as plain-text templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "Path to YAML or JSON config file")
	pf.StringVar(&o.envFile, "env-file", "", "Additional dotenv file loaded after .env")
	pf.BoolVarP(&o.cfg.Verbose, "verbose", "v", false, "Verbose logging")
	pf.StringVar(&o.cfg.CacheDir, "cache.dir", o.cfg.CacheDir, "Page cache directory (empty disables caching)")
	pf.DurationVar(&o.cfg.CacheMaxAge, "cache.maxAge", o.cfg.CacheMaxAge, "Purge cache entries older than this at startup (0 disables)")
	pf.BoolVar(&o.cfg.CacheClear, "cache.clear", false, "Clear the cache directory at startup")
	pf.StringVar(&o.cfg.SiteRulesPath, "site-rules", o.cfg.SiteRulesPath, "Path to YAML site rules registry")
	pf.StringVar(&o.cfg.UserAgent, "user-agent", o.cfg.UserAgent, "User-Agent header for page fetches")
	pf.StringVar(&o.cfg.AcceptLanguage, "accept-language", o.cfg.AcceptLanguage, "Accept-Language header for page fetches")
	pf.DurationVar(&o.cfg.FetchTimeout, "fetch.timeout", o.cfg.FetchTimeout, "Per-attempt fetch timeout")
	pf.IntVar(&o.cfg.MaxAttempts, "fetch.attempts", o.cfg.MaxAttempts, "Fetch attempts including the first")
	pf.IntVar(&o.cfg.Workers, "workers", o.cfg.Workers, "Concurrent URLs per batch (0 picks from CPU count)")

	root.AddCommand(newExtractCmd(o), newFileCmd(o), newServeCmd(o))
	return root
}

// load applies dotenv files, environment and the config file on top of the
// flag values, then configures logging and builds the application.
func (o *options) load() (*app.App, error) {
	if err := app.LoadEnvFiles(".env", o.envFile); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	app.ApplyEnvToConfig(&o.cfg)
	if o.configPath != "" {
		fc, err := app.LoadConfigFile(o.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&o.cfg, fc)
	}
	if o.cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return app.New(o.cfg)
}

func newExtractCmd(o *options) *cobra.Command {
	var noAlt bool
	cmd := &cobra.Command{
		Use:   "extract [urls...]",
		Short: "Fetch and extract URLs given as arguments or one per line on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if noAlt {
				o.cfg.PreferAlt = false
			}
			a, err := o.load()
			if err != nil {
				return err
			}
			raw := strings.Join(args, "\n")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				raw = string(b)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), a.Extract(cmd.Context(), raw))
			return err
		},
	}
	cmd.Flags().BoolVar(&noAlt, "no-alt", false, "Do not try AMP or print versions")
	return cmd
}

func newFileCmd(o *options) *cobra.Command {
	var finalURL string
	cmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Extract a local HTML file without network access",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.load()
			if err != nil {
				return err
			}
			u := finalURL
			if u == "" {
				u = "file://" + args[0]
			}
			out, err := a.ExtractFile(args[0], u)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out+"\n")
			return err
		},
	}
	cmd.Flags().StringVar(&finalURL, "url", "", "URL the page was fetched from (defaults to a file:// URL)")
	return cmd
}

func newServeCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /extract over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.load()
			if err != nil {
				return err
			}
			return a.Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&o.cfg.Addr, "addr", o.cfg.Addr, "Listen address")
	return cmd
}
