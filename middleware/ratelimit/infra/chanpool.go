package infra

import (
	"context"
	"sync"

	"pos-gateway/middleware/ratelimit/domain"
)

// chanPool implementa domain.SlotPool com um canal bufferizado: cada vaga
// ocupada é um item no buffer.
type chanPool struct {
	slots chan struct{}
}

// NewChanPool devolve um pool com `size` vagas (mínimo 1).
func NewChanPool(size int) domain.SlotPool {
	return &chanPool{slots: make(chan struct{}, max(size, 1))}
}

// Acquire espera vaga até o ctx encerrar. ctx já encerrado nunca ocupa vaga,
// mesmo com o pool livre. O release devolvido pode ser chamado mais de uma
// vez; só a primeira libera.
func (p *chanPool) Acquire(ctx context.Context) (func(), bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	select {
	case p.slots <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-p.slots }) }, true
	case <-ctx.Done():
		return nil, false
	}
}

func (p *chanPool) InUse() int    { return len(p.slots) }
func (p *chanPool) Capacity() int { return cap(p.slots) }
