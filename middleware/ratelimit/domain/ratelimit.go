package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"errors"
	"time"
)

var (
	ErrKeyRequired    = errors.New("ratelimit: key is required")
	ErrInvalidLimit   = errors.New("ratelimit: max requests must be > 0")
	ErrInvalidWindow  = errors.New("ratelimit: window must be > 0")
	ErrUnknownProfile = errors.New("ratelimit: unknown profile")
)

// Key identifica um contador, por convenção "<ip>:<path>".
type Key string

// Config é a política aplicada a uma chave: MaxRequests por Window.
type Config struct {
	// Name é opcional e só aparece em estatísticas.
	Name        string
	MaxRequests int
	Window      time.Duration
}

func (c Config) Validate() error {
	if c.MaxRequests <= 0 {
		return ErrInvalidLimit
	}
	if c.Window <= 0 {
		return ErrInvalidWindow
	}
	return nil
}

// Counter é o consumo de uma chave dentro da janela corrente.
//
// Count só incrementa enquanto now < ResetAt. Quando now >= ResetAt o contador
// é substituído por uma janela nova no próximo toque.
type Counter struct {
	Count   int
	ResetAt time.Time
}

// Expired informa se a janela já passou.
func (c Counter) Expired(now time.Time) bool {
	return !now.Before(c.ResetAt)
}

// Result é a decisão de admissão para uma requisição.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter é quanto falta para a janela reiniciar (0 quando admitido).
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed {
		return 0
	}
	if d := r.ResetAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// CounterStore guarda os contadores por chave.
//
// Hit precisa ser atômico por chave: duas chamadas concorrentes na mesma janela
// devem ambas aparecer no Count final.
type CounterStore interface {
	Hit(key Key, cfg Config) Result
}
