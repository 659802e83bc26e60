package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pos-gateway/internal/logger"
	"pos-gateway/middleware/ratelimit/infra"
	"pos-gateway/middleware/session"
	sessioninfra "pos-gateway/middleware/session/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		slog.Error("gateway stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New("pos-gateway", cfg.AppEnv, logger.WithLevel(cfg.LogLevel))
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	stats, err := newStatsBackend(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer stats.closeFn()

	codec, err := sessioninfra.NewJWTCodec(cfg.Secrets(), sessioninfra.WithIssuer(cfg.SessionIssuer))
	if err != nil {
		return err
	}
	sessions, err := session.NewManager(session.Options{
		Codec:             codec,
		CookieName:        cfg.SessionCookieName,
		LegacyCookieNames: cfg.SessionLegacyCookies,
		Secure:            logger.IsProduction(cfg.AppEnv),
		Domain:            cfg.SessionCookieDomain,
		Logger:            log,
	})
	if err != nil {
		return err
	}

	store := infra.NewStore(infra.WithSweepEvery(cfg.RateJanitorEvery))
	store.StartJanitor(ctx)

	h, err := newRouter(deps{
		cfg:      cfg,
		log:      log,
		store:    store,
		stats:    stats.store,
		sessions: sessions,
		metrics:  stats.metrics,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("gateway listening",
		slog.String("addr", cfg.ListenAddr),
		slog.String("upstream", cfg.UpstreamURL),
		slog.Bool("rate_enabled", cfg.RateEnabled),
		slog.String("rate_default_profile", cfg.RateDefaultProfile),
		slog.String("stats_backend", cfg.StatsBackend),
		slog.Int("concurrency_max", cfg.ConcurrencyMax),
		slog.Duration("concurrency_timeout", cfg.ConcurrencyTimeout),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
