package application

import (
	"context"
	"time"

	"request-gateway/gateway/domain"

	"go.uber.org/atomic"
)

// Admission decide se uma requisição entra agora, segurando uma vaga do pool
// enquanto ela é atendida. Não sabe nada sobre HTTP.
type Admission struct {
	pool     domain.SlotPool
	timeout  time.Duration
	rejected atomic.Int64
}

// NewAdmission cria a admissão sobre `pool`. Com pool nil toda requisição entra.
//
// timeout <= 0 espera por uma vaga até o ctx da requisição encerrar.
func NewAdmission(pool domain.SlotPool, timeout time.Duration) *Admission {
	return &Admission{pool: pool, timeout: timeout}
}

// Run executa fn segurando uma vaga. Sem vaga a tempo, fn não roda e o erro é
// domain.ErrNoSlot.
func (a *Admission) Run(ctx context.Context, fn func()) error {
	release, err := a.acquire(ctx)
	if err != nil {
		a.rejected.Inc()
		return err
	}
	defer release()

	fn()
	return nil
}

func (a *Admission) acquire(ctx context.Context) (domain.Release, error) {
	if a.pool == nil {
		return func() {}, nil
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return a.pool.Acquire(ctx)
}

// Rejected conta as requisições recusadas por falta de vaga desde a criação.
func (a *Admission) Rejected() int64 { return a.rejected.Load() }

func (a *Admission) InFlight() int {
	if a.pool == nil {
		return 0
	}
	return a.pool.InFlight()
}
