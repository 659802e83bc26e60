package domain

import "context"

// SlotPool limita quantas requisições ficam em voo ao mesmo tempo.
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar. Ao adquirir,
// retorna um release que deve ser chamado exatamente uma vez.
// InUse é um retrato aproximado, só para logs e métricas.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
	InUse() int
	Capacity() int
}
