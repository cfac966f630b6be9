package infra

import (
	"context"
	"sync"

	"request-gateway/gateway/domain"
)

// MemoryCounter é o rate limiter de janela fixa em memória.
//
// Cada chave guarda um contador que começa em 1 no primeiro acesso. Enquanto o
// contador não passar de max, a requisição é permitida e o contador incrementa.
// Não há expiração nem reset: o estado vive enquanto o MemoryCounter viver.
type MemoryCounter struct {
	mu      sync.Mutex
	max     uint64
	entries map[string]uint64
}

var _ domain.Counter = (*MemoryCounter)(nil)

func NewMemoryCounter(maxAllowed uint64) *MemoryCounter {
	return &MemoryCounter{
		max:     maxAllowed,
		entries: make(map[string]uint64),
	}
}

func (c *MemoryCounter) Max() uint64 { return c.max }

// CheckAndIncrement implementa domain.Counter. Nunca retorna erro.
func (c *MemoryCounter) CheckAndIncrement(_ context.Context, key domain.Key) (domain.Decision, error) {
	return c.Check(string(key)), nil
}

func (c *MemoryCounter) Check(key string) domain.Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		n = 1
		c.entries[key] = n
	}
	if n > c.max {
		return domain.Decision{Allowed: false, Used: c.max, Limit: c.max}
	}
	c.entries[key] = n + 1
	return domain.Decision{Allowed: true, Used: n, Limit: c.max}
}

// Len retorna quantas chaves já foram vistas.
func (c *MemoryCounter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
