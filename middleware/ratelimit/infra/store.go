package infra

import (
	"context"
	"sync"
	"time"

	"pos-gateway/middleware/ratelimit/domain"
)

// Store é a tabela de contadores de janela fixa, em memória, por processo.
//
// Um único mutex cobre o mapa inteiro: com o tamanho esperado da tabela isso é
// mais simples que lock por entrada e impede incremento perdido.
// Entradas com janela vencida são removidas pelo janitor.
type Store struct {
	mu         sync.Mutex
	entries    map[domain.Key]*domain.Counter
	now        func() time.Time
	sweepEvery time.Duration
}

type StoreOption func(*Store)

// WithClock troca o relógio (testes).
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSweepEvery define o intervalo do janitor. <= 0 desliga.
func WithSweepEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.sweepEvery = d }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		entries:    make(map[domain.Key]*domain.Counter),
		now:        time.Now,
		sweepEvery: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) SweepEvery() time.Duration { return s.sweepEvery }

// Hit implementa domain.CounterStore.
func (s *Store) Hit(key domain.Key, cfg domain.Config) domain.Result {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.entries[key]
	if !ok || c.Expired(now) {
		c = &domain.Counter{Count: 1, ResetAt: now.Add(cfg.Window)}
		s.entries[key] = c
		return domain.Result{
			Allowed:   true,
			Limit:     cfg.MaxRequests,
			Remaining: cfg.MaxRequests - 1,
			ResetAt:   c.ResetAt,
		}
	}

	if c.Count < cfg.MaxRequests {
		c.Count++
		return domain.Result{
			Allowed:   true,
			Limit:     cfg.MaxRequests,
			Remaining: cfg.MaxRequests - c.Count,
			ResetAt:   c.ResetAt,
		}
	}

	// esgotado: não mexe no contador
	return domain.Result{
		Allowed:   false,
		Limit:     cfg.MaxRequests,
		Remaining: 0,
		ResetAt:   c.ResetAt,
	}
}

// Status devolve o estado da chave sem consumir nada.
func (s *Store) Status(key domain.Key, cfg domain.Config) domain.Result {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.entries[key]
	if !ok || c.Expired(now) {
		return domain.Result{
			Allowed:   true,
			Limit:     cfg.MaxRequests,
			Remaining: cfg.MaxRequests,
			ResetAt:   now.Add(cfg.Window),
		}
	}
	remaining := max(cfg.MaxRequests-c.Count, 0)
	return domain.Result{
		Allowed:   remaining > 0,
		Limit:     cfg.MaxRequests,
		Remaining: remaining,
		ResetAt:   c.ResetAt,
	}
}

// Reset apaga o contador da chave.
func (s *Store) Reset(key domain.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len é o número de entradas na tabela, inclusive vencidas ainda não varridas.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep remove entradas cuja janela já passou e devolve quantas saíram.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, c := range s.entries {
		if c.Expired(now) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// StartJanitor inicia uma goroutine que varre janelas vencidas periodicamente.
// Pare cancelando o contexto.
func (s *Store) StartJanitor(ctx context.Context) {
	if s.sweepEvery <= 0 {
		return
	}

	t := time.NewTicker(s.sweepEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Sweep()
			}
		}
	}()
}
