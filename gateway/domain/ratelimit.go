package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "context"

// Key identifica o recurso limitado (no gateway, a URL/path da requisição).
type Key string

// Decision é o resultado de uma passagem pelo contador.
type Decision struct {
	Allowed bool
	// Used é quantas requisições já passaram para a chave, incluindo esta quando permitida.
	Used uint64
	// Limit é o máximo de requisições permitidas por chave.
	Limit uint64
}

// Remaining retorna quantas requisições ainda passam para a chave.
func (d Decision) Remaining() uint64 {
	if d.Used >= d.Limit {
		return 0
	}
	return d.Limit - d.Used
}

// Counter é o rate limiter de janela fixa sem expiração.
//
// CheckAndIncrement deve ser atômico (ler, comparar e incrementar numa única
// seção crítica). As primeiras Limit chamadas para uma chave são permitidas;
// a partir da Limit+1 todas são negadas, pelo tempo de vida do contador.
type Counter interface {
	CheckAndIncrement(ctx context.Context, key Key) (Decision, error)
}
