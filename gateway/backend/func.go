package backend

import (
	"context"

	"request-gateway/gateway/domain"
)

// Func adapta uma função comum para domain.Backend.
type Func func(ctx context.Context, url, method string) domain.Response

func (f Func) Handle(ctx context.Context, url, method string) domain.Response {
	return f(ctx, url, method)
}
