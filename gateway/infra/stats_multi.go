package infra

import (
	"context"

	"request-gateway/gateway/domain"
)

// MultiStatsStore repassa o evento para todos os stores; o primeiro erro é retornado,
// mas todos recebem o evento.
type MultiStatsStore []domain.StatsStore

func (m MultiStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
