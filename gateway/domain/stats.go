package domain

import (
	"context"
	"time"
)

// Outcome é como o gateway terminou uma requisição.
type Outcome string

const (
	// OutcomeAllowed: o contador liberou e o backend respondeu (qualquer status).
	OutcomeAllowed Outcome = "allowed"
	// OutcomeDenied: limite da chave excedido, 403.
	OutcomeDenied Outcome = "denied"
	// OutcomeError: o contador não conseguiu decidir (ex: Redis fora), 503.
	OutcomeError Outcome = "error"
)

// StatsEvent é o registro de uma requisição que passou pelo gateway.
//
// Method/Path são strings genéricas, sem depender de net/http.
// Cuidado com cardinalidade ao guardar Key/Path em Redis ou Prometheus.
type StatsEvent struct {
	Key     Key
	Outcome Outcome
	Status  int
	Method  string
	Path    string
	At      time.Time
}

// StatsStore persiste os eventos do gateway. Erros são best-effort: o gateway
// loga e segue, a resposta ao cliente não muda.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
