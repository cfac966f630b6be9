package infra

import (
	"context"
	"strconv"

	"request-gateway/gateway/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStatsStore expõe as decisões como métricas.
//
// O path não vira label (cardinalidade); apenas método, resultado e status.
type PrometheusStatsStore struct {
	decisions *prometheus.CounterVec
	responses *prometheus.CounterVec
}

var _ domain.StatsStore = (*PrometheusStatsStore)(nil)

func NewPrometheusStatsStore(namespace string) *PrometheusStatsStore {
	return &PrometheusStatsStore{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_decisions_total",
			Help:      "Number of rate limit decisions by result (allowed, denied, error).",
		}, []string{"method", "result"}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "Number of responses returned by the gateway by status code.",
		}, []string{"status"}),
	}
}

// MustRegister registra os coletores no registry informado.
func (s *PrometheusStatsStore) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(s.decisions, s.responses)
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.decisions.WithLabelValues(ev.Method, string(ev.Outcome)).Inc()
	if ev.Status != 0 {
		s.responses.WithLabelValues(strconv.Itoa(ev.Status)).Inc()
	}
	return nil
}
