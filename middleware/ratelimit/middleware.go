package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"pos-gateway/middleware/ratelimit/application"
	"pos-gateway/middleware/ratelimit/domain"
)

const rejectMessage = "Too many requests, please try again later."

type Options struct {
	Store  domain.CounterStore
	Config domain.Config
	Stats  domain.StatsStore
	KeyFn  KeyFunc
	// UseRemoteAddr usa o RemoteAddr antes do sentinela "unknown"
	// quando não há X-Forwarded-For/X-Real-IP.
	UseRemoteAddr bool
	Logger        *slog.Logger
	// Now é o relógio usado para o Retry-After (testes).
	Now func() time.Time
}

// Middleware aplica o contador de janela fixa por "<ip>:<path>".
//
// Headers de rate limit vão em toda resposta que passou pelo gate.
// Store nil ou Config inválida é erro de montagem e entra em pânico aqui.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Store == nil {
		panic("ratelimit.Middleware: Store is required")
	}
	if err := opts.Config.Validate(); err != nil {
		panic(fmt.Errorf("ratelimit.Middleware: %w", err))
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.UseRemoteAddr)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	svc := application.Service{Store: opts.Store}
	log := opts.Logger.With(slog.String("component", "ratelimit"), slog.String("policy", opts.Config.Name))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := domain.Key(opts.KeyFn(r))
			res := svc.Check(key, opts.Config)

			h := w.Header()
			h.Set(HeaderLimit, formatInt(res.Limit))
			h.Set(HeaderRemaining, formatInt(res.Remaining))
			h.Set(HeaderReset, formatTime(res.ResetAt))

			if opts.Stats != nil {
				recordStats(r.Context(), log, opts.Stats, domain.StatsEvent{
					Key:     key,
					Policy:  opts.Config.Name,
					Allowed: res.Allowed,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      opts.Now(),
				})
			}

			if !res.Allowed {
				log.DebugContext(r.Context(), "request rejected",
					slog.String("key", string(key)),
					slog.Time("reset_at", res.ResetAt),
				)
				h.Set(HeaderRetry, retryAfterSeconds(res.RetryAfter(opts.Now())))
				writeJSON(w, http.StatusTooManyRequests, errorBody{
					Success:    false,
					Error:      rejectMessage,
					RetryAfter: formatTime(res.ResetAt),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// recordStats é best-effort: falha de estatística só vira log.
func recordStats(ctx context.Context, log *slog.Logger, stats domain.StatsStore, ev domain.StatsEvent) {
	if err := stats.Record(ctx, ev); err != nil {
		log.WarnContext(ctx, "failed to record rate limit stats", slog.Any("error", err))
	}
}
