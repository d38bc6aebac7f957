// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/absmach/cuecast"
	"github.com/absmach/cuecast/pkg/api"
	"github.com/absmach/cuecast/pkg/classify"
	"github.com/absmach/cuecast/pkg/clients"
	cerrors "github.com/absmach/cuecast/pkg/errors"
	"github.com/absmach/cuecast/pkg/health"
	"github.com/absmach/cuecast/pkg/metrics"
	cuehttp "github.com/absmach/cuecast/pkg/parser/http"
	"github.com/absmach/cuecast/pkg/ratelimit"
	"github.com/absmach/cuecast/pkg/server/tcp"
	"github.com/absmach/cuecast/pkg/store"
	"github.com/absmach/cuecast/pkg/users"
	"github.com/absmach/cuecast/web"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the viewer server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// .env file is optional
			envErr := godotenv.Load(envFile)

			cfg, err := cuecast.NewConfig(env.Options{})
			if err != nil {
				return err
			}

			logger := newLogger(cfg)
			if envErr != nil {
				logger.Debug("no .env file found, using environment variables", slog.String("file", envFile))
			}

			return serve(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before reading CUECAST_* variables")
	return cmd
}

func serve(ctx context.Context, cfg cuecast.Config, logger *slog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	tlsConfig, err := cfg.TLSConfig()
	if err != nil {
		return err
	}
	operators, err := users.Parse(cfg.Users)
	if err != nil {
		return err
	}
	if operators.Len() == 0 {
		logger.Warn("no operators configured, write endpoints are disabled")
	}

	m := metrics.New("cuecast", nil)

	st := store.New(store.WithLocation(loc), store.WithLogger(logger))
	defer st.Close()

	if cfg.SeedFile != "" {
		seed, err := store.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return err
		}
		st.Apply(seed)
		logger.Info("seed applied",
			slog.String("file", cfg.SeedFile),
			slog.Int("stacks", len(seed.Stacks)))
	}

	tracker := clients.NewTracker(nil, &classify.OSHostNamer{}, &classify.SystemInterfaces{})
	h := clients.NewHandler(clients.Config{
		Tracker:    tracker,
		Limiter:    ratelimit.NewLimiter(cfg.RateLimit, cfg.RateBurst, cfg.RateMaxClients, nil),
		Authorizer: operators,
		Metrics:    m,
		Logger:     logger,
		Paths:      api.Paths(),
	})

	router := api.NewRouter(api.Config{
		State:   st,
		Clients: tracker,
		Viewer:  web.Viewer,
		Metrics: m,
		Logger:  logger,
	})

	server := tcp.New(tcp.Config{
		Address:         cfg.Address,
		TLSConfig:       tlsConfig,
		IdleTimeout:     cfg.IdleTimeout,
		MaxRequests:     cfg.MaxRequests,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Logger:          logger,
	}, cuehttp.NewParser(router, logger, cfg.MaxRequestSize), h)

	checker := health.NewChecker(5*time.Second, nil)
	checker.Register("store", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := st.Flush(ctx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return cerrors.ErrTimeout
			}
			return err
		}
		return nil
	})
	checker.Register("sessions", func(ctx context.Context) error {
		m.Sessions.Set(float64(tracker.SessionCount()))
		return nil
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("viewer server starting", slog.String("address", cfg.Address))
		return server.Listen(ctx)
	})

	if cfg.OpsAddress != "" {
		g.Go(func() error {
			return serveOps(ctx, cfg.OpsAddress, checker, logger)
		})
	}

	g.Go(func() error {
		watchStore(ctx, st, m, logger)
		return nil
	})

	g.Go(func() error {
		return StopSignalHandler(ctx, cancel, logger)
	})

	if err := g.Wait(); err != nil {
		logger.Error("cuecast service terminated with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("cuecast service stopped")
	return nil
}

// serveOps serves metrics and health probes until ctx is cancelled.
func serveOps(ctx context.Context, addr string, checker *health.Checker, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", checker.HTTPHandler())
	mux.HandleFunc("/ready", checker.ReadinessHandler())
	mux.HandleFunc("/live", health.LivenessHandler())

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("ops server shutdown error", slog.String("error", err.Error()))
		}
	}()

	logger.Info("ops server starting", slog.String("address", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// watchStore counts store events and logs the debounced ones.
func watchStore(ctx context.Context, st *store.Store, m *metrics.Metrics, logger *slog.Logger) {
	events, cancel := st.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.StoreEvents.WithLabelValues(string(ev.Type)).Inc()
			switch ev.Type {
			case store.EventOfflineReady:
				logger.Debug("state ready for offline viewers", slog.Time("at", ev.At))
			case store.EventClientsNotified:
				logger.Info("viewers notified of cue changes", slog.Time("at", ev.At))
			}
		}
	}
}
