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

	"pos-gateway/internal/config"
	"pos-gateway/internal/logger"
	"pos-gateway/middleware/ratelimit/infra"
	"pos-gateway/middleware/session"
	sessioninfra "pos-gateway/middleware/session/infra"
)

func main() {
	if err := run(); err != nil {
		slog.Error("example server stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New("pos-example", cfg.AppEnv, logger.WithLevel(cfg.LogLevel))
	slog.SetDefault(log)

	auth, err := parseDemoUsers(cfg.DemoUsers)
	if err != nil {
		return err
	}
	codec, err := sessioninfra.NewJWTCodec(config.SplitList(cfg.SessionSecrets))
	if err != nil {
		return err
	}
	sessions, err := session.NewManager(session.Options{
		Codec:  codec,
		Secure: logger.IsProduction(cfg.AppEnv),
		Logger: log,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := infra.NewStore()
	store.StartJanitor(ctx)

	s := &server{log: log, auth: auth, sessions: sessions, store: store}
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.routes(cfg.ConcurrencyMax),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("example server listening", slog.String("addr", cfg.ListenAddr), slog.Int("demo_users", len(cfg.DemoUsers)))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
