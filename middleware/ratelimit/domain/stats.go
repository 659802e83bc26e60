package domain

import (
	"context"
	"strings"
	"time"
)

const (
	DecisionAllowed = "allowed"
	DecisionDenied  = "denied"
)

// StatsEvent é uma decisão de admissão já tomada, com a política que a tomou.
//
// Key e Path têm cardinalidade aberta: os stores decidem se guardam.
type StatsEvent struct {
	Key     Key
	Policy  string
	Allowed bool

	Method string
	Path   string

	At time.Time
}

// Decision é o rótulo usado por todos os stores: "allowed" ou "denied".
func (e StatsEvent) Decision() string {
	if e.Allowed {
		return DecisionAllowed
	}
	return DecisionDenied
}

// Route junta método e path ("POST /api/auth/login"); vazio se ambos faltarem.
func (e StatsEvent) Route() string {
	return strings.TrimSpace(strings.TrimSpace(e.Method) + " " + strings.TrimSpace(e.Path))
}

// StatsStore recebe as decisões para observabilidade.
//
// Nunca alimenta o contador de admissão. Erro de Record vira log no
// middleware e a requisição segue.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
