package infra

import (
	"context"

	"request-gateway/gateway/domain"
)

// SlotPool é um semáforo baseado em channel com capacidade fixa.
type SlotPool struct {
	sem chan struct{}
}

var _ domain.SlotPool = (*SlotPool)(nil)

// NewSlotPool cria um pool com capacidade `max`.
func NewSlotPool(max int) *SlotPool {
	return &SlotPool{sem: make(chan struct{}, max)}
}

func (p *SlotPool) Acquire(ctx context.Context) (domain.Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrNoSlot
	}
	select {
	case p.sem <- struct{}{}:
		return func() { <-p.sem }, nil
	case <-ctx.Done():
		return nil, domain.ErrNoSlot
	}
}

// InFlight retorna quantas vagas estão ocupadas agora.
func (p *SlotPool) InFlight() int { return len(p.sem) }

func (p *SlotPool) Cap() int { return cap(p.sem) }
