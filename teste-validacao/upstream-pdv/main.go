package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"pos-gateway/internal/logger"
	"pos-gateway/middleware/session"
)

// Upstream de validação manual: devolve a identidade que o gateway repassou.
func main() {
	log := logger.New("upstream-pdv", os.Getenv("APP_ENV"))

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		identity := map[string]string{}
		for _, k := range []string{
			session.HeaderUserID,
			session.HeaderUsername,
			session.HeaderEmail,
			session.HeaderName,
			session.HeaderRole,
			session.HeaderBranchID,
		} {
			if v := r.Header.Get(k); v != "" {
				identity[k] = v
			}
		}
		log.Info("request received",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("role", identity[session.HeaderRole]),
		)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":  true,
			"path":     r.URL.Path,
			"identity": identity,
		})
	})

	addr := ":3000"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}
	log.Info("upstream-pdv listening", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error("server error", logger.Error(err))
		os.Exit(1)
	}
}
