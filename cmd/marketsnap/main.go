// Command marketsnap collects crypto and macro market data into scored
// snapshots. `collect` runs one cycle and prints it; `serve` runs cycles on
// an interval behind the ops HTTP server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quantpulse/marketsnap/internal/cache"
	"github.com/quantpulse/marketsnap/internal/collector"
	"github.com/quantpulse/marketsnap/internal/config"
	"github.com/quantpulse/marketsnap/internal/httpx"
	applog "github.com/quantpulse/marketsnap/internal/log"
	"github.com/quantpulse/marketsnap/internal/metrics"
	"github.com/quantpulse/marketsnap/internal/ops"
	"github.com/quantpulse/marketsnap/internal/validate"
)

var (
	configPath string
	console    bool
)

func main() {
	root := &cobra.Command{
		Use:           "marketsnap",
		Short:         "Resilient crypto and macro market-data snapshot collector",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	root.PersistentFlags().BoolVar(&console, "console", false, "human-readable log output")

	root.AddCommand(collectCmd(), serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *collector.Collector, *validate.Validator, *metrics.Set, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	applog.Setup(cfg.LogLevel, console)

	var store cache.Cache
	if cfg.Cache.RedisAddr != "" {
		store = cache.NewRedisCache(cfg.Cache.RedisAddr)
	} else {
		store = cache.NewTTLCache()
	}

	met := metrics.New()
	client := httpx.NewClient(cfg.API, nil)
	col := collector.New(cfg, client, store, met)
	return cfg, col, validate.New(), met, nil
}

func collectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Run one collection cycle and print the snapshot with its report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, col, val, met, err := setup()
			if err != nil {
				return err
			}
			snap := col.Collect(cmd.Context())
			report := val.Score(snap)
			met.Completeness.Set(report.Overall)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"snapshot": snap, "report": report})
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Collect on an interval and expose snapshots over HTTP",
		RunE: func(*cobra.Command, []string) error {
			cfg, col, val, met, err := setup()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store := &ops.Store{}
			errCh := make(chan error, 1)
			if cfg.Ops.Enabled {
				srv := ops.NewServer(cfg.Ops.Addr, store, met)
				go func() { errCh <- srv.Run(ctx) }()
			}

			cycle := func() {
				snap := col.Collect(ctx)
				report := val.Score(snap)
				met.Completeness.Set(report.Overall)
				store.Put(snap, report)
				log.Info().Str("snapshot", snap.ID).
					Float64("completeness", report.Overall).
					Bool("sufficient", report.Sufficient).
					Int("issues", len(report.Issues)).Msg("snapshot scored")
			}

			cycle()
			ticker := time.NewTicker(cfg.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					log.Info().Msg("shutting down")
					return nil
				case err := <-errCh:
					return err
				case <-ticker.C:
					cycle()
				}
			}
		},
	}
}
