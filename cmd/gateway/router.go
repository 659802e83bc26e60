package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path"
	"strings"

	"pos-gateway/internal/logger"
	"pos-gateway/middleware/ratelimit"
	"pos-gateway/middleware/ratelimit/domain"
	"pos-gateway/middleware/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// deps reúne o que o roteador precisa; main monta, os testes também.
type deps struct {
	cfg      Config
	log      *slog.Logger
	store    domain.CounterStore
	stats    domain.StatsStore
	sessions *session.Manager
	// metrics é nil quando o backend de stats não é prometheus.
	metrics http.Handler
}

func newRouter(d deps) (http.Handler, error) {
	target, err := url.Parse(d.cfg.UpstreamURL)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cleanPath)
	r.Use(middleware.CleanPath)

	if d.metrics != nil {
		r.Handle(d.cfg.MetricsPath, d.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
			Max:            d.cfg.ConcurrencyMax,
			RejectStatus:   http.StatusServiceUnavailable,
			AcquireTimeout: d.cfg.ConcurrencyTimeout,
			Logger:         d.log,
		}))
		if d.cfg.RateEnabled {
			r.Use(rateLimitByRoute(d))
		}
		r.Use(d.sessions.Middleware)
		r.Use(protect(d.cfg, d.sessions))

		r.Post(d.cfg.LogoutPath, logoutHandler(d.sessions))
		r.Handle("/*", newProxy(target, d.log))
	})

	return r, nil
}

// cleanPath normaliza r.URL.Path ("//api/x/", "/api/./x") antes de perfil,
// proteção, chave de rate limit e proxy olharem o path. O CleanPath do chi só
// mexe no path de roteamento.
func cleanPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		p = path.Clean(p)
		if p == r.URL.Path {
			next.ServeHTTP(w, r)
			return
		}

		u := *r.URL
		u.Path = p
		u.RawPath = ""
		r2 := r.WithContext(r.Context())
		r2.URL = &u
		next.ServeHTTP(w, r2)
	})
}

// rateLimitByRoute monta um middleware por perfil, todos sobre o mesmo store,
// e escolhe pelo path da requisição.
func rateLimitByRoute(d deps) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		byProfile := make(map[string]http.Handler, len(ratelimit.Profiles))
		for name, profile := range ratelimit.Profiles {
			byProfile[name] = ratelimit.Middleware(ratelimit.Options{
				Store:         d.store,
				Config:        profile,
				Stats:         d.stats,
				UseRemoteAddr: d.cfg.RateUseRemoteAddr,
				Logger:        d.log,
			})(next)
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h, ok := byProfile[d.cfg.profileFor(r.URL.Path)]
			if !ok {
				h = byProfile[ratelimit.API.Name]
			}
			h.ServeHTTP(w, r)
		})
	}
}

func protect(cfg Config, sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		required := sessions.RequireSession(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.isProtected(r.URL.Path) {
				required.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func logoutHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		sessions.Clear(w)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}
}

// newProxy repassa ao upstream. Headers de identidade vindos do cliente são
// sempre descartados; só a sessão validada os preenche.
func newProxy(target *url.URL, log *slog.Logger) http.Handler {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.Header["X-Forwarded-For"] = pr.In.Header["X-Forwarded-For"]
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = pr.In.Host

			session.StripIdentityHeaders(pr.Out.Header)
			if rec, ok := session.FromContext(pr.In.Context()); ok {
				session.SetIdentityHeaders(pr.Out.Header, rec)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.ErrorContext(r.Context(), "proxy error",
				slog.String("path", r.URL.Path),
				logger.Error(err),
			)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Bad Gateway"})
		},
	}
}
