package application

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"request-gateway/gateway/backend"
	"request-gateway/gateway/domain"
	"request-gateway/gateway/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingBackend struct {
	calls int
	next  domain.Backend
}

func (b *countingBackend) Handle(ctx context.Context, url, method string) domain.Response {
	b.calls++
	return b.next.Handle(ctx, url, method)
}

type failingCounter struct{}

func (failingCounter) CheckAndIncrement(context.Context, domain.Key) (domain.Decision, error) {
	return domain.Decision{}, assert.AnError
}

func TestGateway_AllowsTwiceThenDenies(t *testing.T) {
	be := &countingBackend{next: backend.Application{}}
	g := NewGateway(infra.NewMemoryCounter(2), be)
	ctx := context.Background()

	assert.Equal(t, domain.Response{Status: 200, Body: "Ok"}, g.HandleRequest(ctx, "/app/status", http.MethodGet))
	assert.Equal(t, domain.Response{Status: 200, Body: "Ok"}, g.HandleRequest(ctx, "/app/status", http.MethodGet))
	assert.Equal(t, domain.Response{Status: 403, Body: "Not Allowed"}, g.HandleRequest(ctx, "/app/status", http.MethodGet))
	assert.Equal(t, 2, be.calls, "backend must not be called when denied")
}

func TestGateway_UnknownRouteIsNotFound(t *testing.T) {
	g := NewGateway(infra.NewMemoryCounter(2), backend.Application{})

	resp := g.HandleRequest(context.Background(), "/missing", http.MethodGet)
	assert.Equal(t, domain.Response{Status: 404, Body: "Not found"}, resp)
}

func TestGateway_NotFoundStillCountsTowardsLimit(t *testing.T) {
	counter := infra.NewMemoryCounter(1)
	g := NewGateway(counter, backend.Application{})
	ctx := context.Background()

	assert.Equal(t, 404, g.HandleRequest(ctx, "/missing", http.MethodGet).Status)
	assert.Equal(t, 403, g.HandleRequest(ctx, "/missing", http.MethodGet).Status)
}

func TestGateway_ZeroThresholdDeniesFirstCall(t *testing.T) {
	be := &countingBackend{next: backend.Application{}}
	g := NewGateway(infra.NewMemoryCounter(0), be)

	assert.Equal(t, NotAllowed, g.HandleRequest(context.Background(), "/app/status", http.MethodGet))
	assert.Zero(t, be.calls)
}

func TestGateway_LimitIsPerURL(t *testing.T) {
	g := NewGateway(infra.NewMemoryCounter(1), backend.Application{})
	ctx := context.Background()

	assert.Equal(t, 200, g.HandleRequest(ctx, "/app/status", http.MethodGet).Status)
	assert.Equal(t, 403, g.HandleRequest(ctx, "/app/status", http.MethodGet).Status)
	assert.Equal(t, 200, g.HandleRequest(ctx, "/create/user", http.MethodPost).Status)
}

func TestGateway_MethodDoesNotSplitTheKey(t *testing.T) {
	g := NewGateway(infra.NewMemoryCounter(1), backend.Application{})
	ctx := context.Background()

	assert.Equal(t, 404, g.HandleRequest(ctx, "/create/user", http.MethodGet).Status)
	assert.Equal(t, 403, g.HandleRequest(ctx, "/create/user", http.MethodPost).Status)
}

func TestGateway_CounterErrorIsUnavailable(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	be := &countingBackend{next: backend.Application{}}
	g := NewGateway(failingCounter{}, be, WithLogger(zap.New(core)))

	resp := g.HandleRequest(context.Background(), "/app/status", http.MethodGet)
	assert.Equal(t, Unavailable, resp)
	assert.Zero(t, be.calls)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "rate limit check failed", logs.All()[0].Message)
}

func TestGateway_CounterErrorIsRecordedAsError(t *testing.T) {
	stats := infra.NewMemoryStatsStore()
	prom := infra.NewPrometheusStatsStore("gateway")
	reg := prometheus.NewRegistry()
	prom.MustRegister(reg)
	g := NewGateway(failingCounter{}, backend.Application{}, WithStats(infra.MultiStatsStore{stats, prom}))

	g.HandleRequest(context.Background(), "/app/status", http.MethodGet)

	assert.Equal(t, infra.Counters{Errors: 1}, stats.ByRoute()["GET /app/status"])
	assert.Equal(t, int64(1), stats.Snapshot().ByStatus[http.StatusServiceUnavailable])

	expected := `
# HELP gateway_ratelimit_decisions_total Number of rate limit decisions by result (allowed, denied, error).
# TYPE gateway_ratelimit_decisions_total counter
gateway_ratelimit_decisions_total{method="GET",result="error"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "gateway_ratelimit_decisions_total"))
}

func TestGateway_NilCounterForwardsEverything(t *testing.T) {
	g := NewGateway(nil, backend.Application{})
	for i := 0; i < 5; i++ {
		assert.Equal(t, 200, g.HandleRequest(context.Background(), "/app/status", http.MethodGet).Status)
	}
}

func TestGateway_DecisionIsReturned(t *testing.T) {
	g := NewGateway(infra.NewMemoryCounter(3), backend.Application{})

	_, dec := g.HandleRequestDecision(context.Background(), "/app/status", http.MethodGet)
	assert.True(t, dec.Allowed)
	assert.Equal(t, uint64(3), dec.Limit)
	assert.Equal(t, uint64(2), dec.Remaining())
}

func TestGateway_RecordsStats(t *testing.T) {
	at := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	stats := infra.NewMemoryStatsStore()
	g := NewGateway(infra.NewMemoryCounter(1), backend.Application{},
		WithStats(stats),
		WithClock(func() time.Time { return at }))
	ctx := context.Background()

	g.HandleRequest(ctx, "/app/status", http.MethodGet)
	g.HandleRequest(ctx, "/app/status", http.MethodGet)

	assert.Equal(t, infra.Counters{Allowed: 1, Denied: 1}, stats.ByRoute()["GET /app/status"])
	snap := stats.Snapshot()
	assert.Equal(t, int64(1), snap.ByStatus[200])
	assert.Equal(t, int64(1), snap.ByStatus[403])
}

type erroringStats struct{}

func (erroringStats) Record(context.Context, domain.StatsEvent) error { return assert.AnError }

func TestGateway_StatsErrorDoesNotChangeResponse(t *testing.T) {
	g := NewGateway(infra.NewMemoryCounter(1), backend.Application{}, WithStats(erroringStats{}))

	assert.Equal(t, 200, g.HandleRequest(context.Background(), "/app/status", http.MethodGet).Status)
}

func TestGateway_DenyLogIsSampled(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	g := NewGateway(infra.NewMemoryCounter(0), backend.Application{},
		WithLogger(zap.New(core)),
		WithDenyLogInterval(time.Hour))

	for i := 0; i < 5; i++ {
		g.HandleRequest(context.Background(), "/app/status", http.MethodGet)
	}
	assert.Equal(t, 1, logs.FilterMessage("request not allowed").Len())
}

func TestGateway_DenyLogUnsampled(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	g := NewGateway(infra.NewMemoryCounter(0), backend.Application{},
		WithLogger(zap.New(core)),
		WithDenyLogInterval(0))

	for i := 0; i < 3; i++ {
		g.HandleRequest(context.Background(), "/app/status", http.MethodGet)
	}
	assert.Equal(t, 3, logs.FilterMessage("request not allowed").Len())
}
