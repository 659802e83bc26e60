package ratelimit

import (
	"log/slog"
	"net/http"
	"time"

	"pos-gateway/middleware/ratelimit/application"
	"pos-gateway/middleware/ratelimit/infra"
)

// ConcurrencyOptions limita requisições em voo, antes mesmo do rate limit.
type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	Logger         *slog.Logger
}

// ConcurrencyMiddleware responde RejectStatus (503 por padrão) quando não há
// vaga dentro do AcquireTimeout. Max <= 0 desliga.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	pool := infra.NewChanPool(opts.Max)
	svc := application.ConcurrencyService{
		Pool:           pool,
		AcquireTimeout: opts.AcquireTimeout,
	}
	log := opts.Logger.With(slog.String("component", "concurrency"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				log.WarnContext(r.Context(), "no slot available",
					slog.Int("in_use", pool.InUse()),
					slog.Int("capacity", pool.Capacity()),
				)
				writeJSON(w, opts.RejectStatus, errorBody{
					Success: false,
					Error:   http.StatusText(opts.RejectStatus),
				})
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
