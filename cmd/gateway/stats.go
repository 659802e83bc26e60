package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"pos-gateway/middleware/ratelimit/domain"
	"pos-gateway/middleware/ratelimit/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// statsBackend é o destino das estatísticas de admissão.
// closeFn é sempre não-nil.
type statsBackend struct {
	store   domain.StatsStore
	metrics http.Handler
	closeFn func()
}

func newStatsBackend(ctx context.Context, cfg Config, reg *prometheus.Registry) (statsBackend, error) {
	noop := func() {}

	switch cfg.StatsBackend {
	case statsMemory:
		return statsBackend{
			store:   infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.StatsTrackKeys)),
			closeFn: noop,
		}, nil

	case statsRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.StatsRedisAddr,
			Password: cfg.StatsRedisPassword,
			DB:       cfg.StatsRedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return statsBackend{}, fmt.Errorf("redis stats ping: %w", err)
		}
		return statsBackend{
			store: infra.NewRedisStatsStore(rdb,
				infra.WithStatsPrefix(cfg.StatsPrefix),
				infra.WithStatsTTL(cfg.StatsTTL),
				infra.WithStatsBucket(cfg.StatsBucket),
				infra.WithStatsTrackKeys(cfg.StatsTrackKeys),
			),
			closeFn: func() { _ = rdb.Close() },
		}, nil

	case statsPrometheus:
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		store, err := infra.NewPrometheusStatsStore(reg)
		if err != nil {
			return statsBackend{}, fmt.Errorf("prometheus stats: %w", err)
		}
		return statsBackend{
			store:   store,
			metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			closeFn: noop,
		}, nil

	default:
		return statsBackend{closeFn: noop}, nil
	}
}
