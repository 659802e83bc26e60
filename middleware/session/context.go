package session

import (
	"context"
	"encoding/json"
	"net/http"

	"pos-gateway/middleware/session/domain"
)

type recordContextKey struct{}

// resolved é o resultado do Read já feito para a requisição.
// ok=false marca a requisição como anônima.
type resolved struct {
	rec domain.Record
	ok  bool
}

// WithRecord guarda o registro no contexto.
func WithRecord(ctx context.Context, rec domain.Record) context.Context {
	return context.WithValue(ctx, recordContextKey{}, resolved{rec: rec, ok: true})
}

func withAnonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, recordContextKey{}, resolved{})
}

// FromContext é o acesso somente-leitura à sessão corrente.
func FromContext(ctx context.Context) (domain.Record, bool) {
	v, _ := ctx.Value(recordContextKey{}).(resolved)
	return v.rec, v.ok
}

// Middleware resolve a sessão uma vez e deixa o resultado no contexto,
// inclusive quando a requisição é anônima.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rec, ok := m.Read(r); ok {
			r = r.WithContext(WithRecord(r.Context(), rec))
		} else {
			r = r.WithContext(withAnonymous(r.Context()))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSession responde 401 para requisição anônima.
// Depois do Middleware usa o que já está no contexto; sozinho, lê o cookie.
func (m *Manager) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, resolvedBefore := r.Context().Value(recordContextKey{}).(resolved)
		if !resolvedBefore {
			v.rec, v.ok = m.Read(r)
			if v.ok {
				r = r.WithContext(WithRecord(r.Context(), v.rec))
			}
		}
		if !v.ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
