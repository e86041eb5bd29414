package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/planetgen/internal/api"
	"github.com/talgya/planetgen/internal/builder"
	"github.com/talgya/planetgen/internal/engine"
	"github.com/talgya/planetgen/internal/observability"
	"github.com/talgya/planetgen/internal/persistence"
)

type serveOptions struct {
	addr        string
	dbPath      string
	adminKey    string
	catalogPath string
	speedFactor float64
	preload     int
	genPerHour  int
	trustProxy  bool
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and animate generated systems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", envOr("PLANETGEN_ADDR", ":8080"), "HTTP listen address")
	cmd.Flags().StringVar(&opts.dbPath, "db", envOr("PLANETGEN_DB", ""), "SQLite file for stored systems (empty disables storage)")
	cmd.Flags().StringVar(&opts.adminKey, "admin-key", envOr("PLANETGEN_ADMIN_KEY", ""), "bearer token for admin endpoints")
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "material catalog YAML (default: bundled)")
	cmd.Flags().Float64Var(&opts.speedFactor, "orbit-speed", 1, "multiplier on orbital angular speed")
	cmd.Flags().IntVar(&opts.preload, "preload", 20, "stored systems to animate at startup")
	cmd.Flags().IntVar(&opts.genPerHour, "generate-rate", 30, "generation requests allowed per client per hour")
	cmd.Flags().BoolVar(&opts.trustProxy, "trust-proxy", false, "key rate limits by X-Forwarded-For (only behind a reverse proxy)")
	return cmd
}

func runServe(ctx context.Context, opts serveOptions) error {
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv())
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing)

	cat, err := loadCatalog(opts.catalogPath)
	if err != nil {
		return err
	}
	metrics, err := observability.NewGenCollector(nil)
	if err != nil {
		return err
	}

	sim := engine.NewSimulation(opts.speedFactor)
	eng := engine.NewEngine()
	eng.OnTick = sim.TickOrbits

	limiter := api.NewRateLimiter(opts.genPerHour, time.Hour)
	limiter.TrustForwarded = opts.trustProxy
	defer limiter.Stop()

	srv := &api.Server{
		Sim:             sim,
		Eng:             eng,
		Builder:         builder.New(builder.DefaultGenConfig(), cat),
		Metrics:         metrics,
		Addr:            opts.addr,
		AdminKey:        opts.adminKey,
		GenerateLimiter: limiter,
	}

	if opts.dbPath != "" {
		db, err := persistence.Open(opts.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		srv.DB = db
		if err := preload(db, sim, opts.preload); err != nil {
			return err
		}
		metrics.SetLive(sim.Len())
		defer func() {
			if err := db.SaveMeta("last_tick", strconv.FormatUint(eng.Tick(), 10)); err != nil {
				slog.Warn("failed to record last tick", "error", err)
			}
		}()
	}

	go eng.Run(ctx)
	return srv.ListenAndServe(ctx)
}

// preload animates the most recent stored systems.
func preload(db *persistence.DB, sim *engine.Simulation, n int) error {
	if n <= 0 {
		return nil
	}
	stored, err := db.ListSystems(n)
	if err != nil {
		return fmt.Errorf("list stored systems: %w", err)
	}
	for _, s := range stored {
		sys, err := db.LoadSystem(s.UUID())
		if err != nil {
			slog.Warn("skipping stored system", "id", s.ID, "error", err)
			continue
		}
		sim.Add(sys)
	}
	slog.Info("stored systems loaded", "count", sim.Len())
	return nil
}
