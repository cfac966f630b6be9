package backend

import "context"

type rawQueryKey struct{}

// WithRawQuery guarda a query string da requisição original no ctx.
// O contrato Backend só recebe url e método; Upstream lê a query daqui.
func WithRawQuery(ctx context.Context, rawQuery string) context.Context {
	if rawQuery == "" {
		return ctx
	}
	return context.WithValue(ctx, rawQueryKey{}, rawQuery)
}

// RawQuery retorna a query guardada por WithRawQuery, ou "".
func RawQuery(ctx context.Context) string {
	q, _ := ctx.Value(rawQueryKey{}).(string)
	return q
}
