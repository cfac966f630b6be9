package domain

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNoSlot indica que nenhuma vaga ficou livre antes do ctx encerrar.
var ErrNoSlot = errors.New("no concurrency slot available")

// Release devolve a vaga adquirida. Deve ser chamada exatamente uma vez.
type Release func()

// SlotPool limita quantas requisições o gateway atende ao mesmo tempo.
// Acquire espera por uma vaga até o ctx encerrar e então retorna ErrNoSlot.
type SlotPool interface {
	Acquire(ctx context.Context) (Release, error)
	InFlight() int
}
