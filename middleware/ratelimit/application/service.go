package application

import (
	"fmt"

	"pos-gateway/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas devolve um Result.
type Service struct {
	Store domain.CounterStore
}

// Check consome uma vaga da janela de key segundo cfg.
//
// Chave vazia ou cfg inválida é erro de montagem (wiring), não de runtime:
// entra em pânico no ponto da chamada.
func (s Service) Check(key domain.Key, cfg domain.Config) domain.Result {
	if key == "" {
		panic(domain.ErrKeyRequired)
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Errorf("check %q: %w", key, err))
	}
	if s.Store == nil {
		panic("ratelimit: Service.Store is nil")
	}
	return s.Store.Hit(key, cfg)
}
