package application

import (
	"context"
	"net/http"
	"time"

	"request-gateway/gateway/domain"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// NotAllowed é a resposta quando o limite da chave foi excedido.
	NotAllowed = domain.Response{Status: http.StatusForbidden, Body: "Not Allowed"}

	// Unavailable é a resposta quando o contador não conseguiu decidir (ex: Redis fora).
	Unavailable = domain.Response{Status: http.StatusServiceUnavailable, Body: http.StatusText(http.StatusServiceUnavailable)}
)

// Gateway concentra a regra do gateway: checa o contador da URL e, se permitido,
// delega ao backend sem alterar a resposta.
//
// Ele não sabe nada sobre HTTP (headers/listener). É seguro para uso concorrente
// desde que o Counter e o Backend também sejam.
type Gateway struct {
	counter domain.Counter
	backend domain.Backend
	stats   domain.StatsStore
	logger  *zap.Logger
	denyLog *rate.Sometimes
	now     func() time.Time
}

type Option func(*Gateway)

func WithStats(s domain.StatsStore) Option {
	return func(g *Gateway) { g.stats = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithDenyLogInterval limita os logs de negação a no máximo um por intervalo.
// Zero loga todas.
func WithDenyLogInterval(d time.Duration) Option {
	return func(g *Gateway) {
		if d <= 0 {
			g.denyLog = nil
			return
		}
		g.denyLog = &rate.Sometimes{Interval: d}
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

func NewGateway(counter domain.Counter, backend domain.Backend, opts ...Option) *Gateway {
	g := &Gateway{
		counter: counter,
		backend: backend,
		logger:  zap.NewNop(),
		denyLog: &rate.Sometimes{Interval: time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// HandleRequest aplica o rate limit à url e, se permitido, chama o backend.
func (g *Gateway) HandleRequest(ctx context.Context, url, method string) domain.Response {
	resp, _ := g.HandleRequestDecision(ctx, url, method)
	return resp
}

// HandleRequestDecision é HandleRequest devolvendo também a decisão do contador,
// para quem precisa expor limite/restante (ex: headers HTTP).
func (g *Gateway) HandleRequestDecision(ctx context.Context, url, method string) (domain.Response, domain.Decision) {
	key := domain.Key(url)

	dec, err := g.decide(ctx, key)
	if err != nil {
		g.logger.Error("rate limit check failed",
			zap.String("key", url),
			zap.String("method", method),
			zap.Error(err))
		g.record(ctx, key, domain.OutcomeError, method, url, Unavailable.Status)
		return Unavailable, dec
	}

	if !dec.Allowed {
		g.logDenied(url, method, dec)
		g.record(ctx, key, domain.OutcomeDenied, method, url, NotAllowed.Status)
		return NotAllowed, dec
	}

	resp := g.backend.Handle(ctx, url, method)
	g.record(ctx, key, domain.OutcomeAllowed, method, url, resp.Status)
	return resp, dec
}

func (g *Gateway) decide(ctx context.Context, key domain.Key) (domain.Decision, error) {
	if g.counter == nil {
		return domain.Decision{Allowed: true}, nil
	}
	return g.counter.CheckAndIncrement(ctx, key)
}

func (g *Gateway) logDenied(url, method string, dec domain.Decision) {
	log := func() {
		g.logger.Info("request not allowed",
			zap.String("key", url),
			zap.String("method", method),
			zap.Uint64("limit", dec.Limit))
	}
	if g.denyLog == nil {
		log()
		return
	}
	g.denyLog.Do(log)
}

func (g *Gateway) record(ctx context.Context, key domain.Key, outcome domain.Outcome, method, path string, status int) {
	if g.stats == nil {
		return
	}
	err := g.stats.Record(ctx, domain.StatsEvent{
		Key:     key,
		Outcome: outcome,
		Status:  status,
		Method:  method,
		Path:    path,
		At:      g.now(),
	})
	if err != nil {
		g.logger.Debug("stats record failed", zap.Error(err))
	}
}
