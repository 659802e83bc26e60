package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"pos-gateway/internal/logger"
	"pos-gateway/middleware/ratelimit"
	"pos-gateway/middleware/ratelimit/domain"
	"pos-gateway/middleware/session"
	sessiondomain "pos-gateway/middleware/session/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type server struct {
	log      *slog.Logger
	auth     *authenticator
	sessions *session.Manager
	store    domain.CounterStore
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role"`
	BranchID  string `json:"branchId,omitempty"`
	ExpiresAt string `json:"expiresAt"`
}

func toUserResponse(rec sessiondomain.Record) userResponse {
	return userResponse{
		UserID:    rec.UserID,
		Username:  rec.Username,
		Email:     rec.Email,
		Name:      rec.Name,
		Role:      rec.Role.String(),
		BranchID:  rec.BranchID,
		ExpiresAt: rec.ExpiresAt.UTC().Format(time.RFC3339Nano),
	}
}

// routes injeta os middlewares direto no webserver, sem proxy.
func (s *server) routes(concurrencyMax int) http.Handler {
	limit := func(profile domain.Config) func(http.Handler) http.Handler {
		return ratelimit.Middleware(ratelimit.Options{
			Store:         s.store,
			Config:        profile,
			UseRemoteAddr: true,
			Logger:        s.log,
		})
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{Max: concurrencyMax, Logger: s.log}))
	r.Use(s.sessions.Middleware)

	r.With(limit(ratelimit.Login)).Post("/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(limit(ratelimit.API))
		r.Post("/logout", s.logout)
		r.With(s.sessions.RequireSession).Get("/me", s.me)
	})
	r.With(limit(ratelimit.Sensitive)).Post("/session/renew", s.renew)

	return r
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid request body"})
		return
	}

	claims, err := s.auth.Authenticate(req.Username, req.Password)
	if err != nil {
		s.log.InfoContext(r.Context(), "login failed", slog.String("username", req.Username))
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid credentials"})
		return
	}

	rec, err := s.sessions.Create(w, claims)
	if err != nil {
		s.log.ErrorContext(r.Context(), "session create failed", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Internal Server Error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": toUserResponse(rec)})
}

func (s *server) logout(w http.ResponseWriter, _ *http.Request) {
	s.sessions.Clear(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *server) me(w http.ResponseWriter, r *http.Request) {
	rec, _ := session.FromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": toUserResponse(rec)})
}

func (s *server) renew(w http.ResponseWriter, r *http.Request) {
	rec, err := s.sessions.Renew(w, r)
	switch {
	case errors.Is(err, sessiondomain.ErrNoSession):
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Unauthorized"})
	case err != nil:
		s.log.ErrorContext(r.Context(), "session renew failed", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Internal Server Error"})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": toUserResponse(rec)})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
