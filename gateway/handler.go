package gateway

import (
	"context"
	"io"
	"net/http"

	"request-gateway/gateway/backend"
	"request-gateway/gateway/domain"

	"go.uber.org/zap"
)

// RequestHandler é o caso de uso chamado pelo handler HTTP.
// *application.Gateway satisfaz esta interface.
type RequestHandler interface {
	HandleRequestDecision(ctx context.Context, url, method string) (domain.Response, domain.Decision)
}

type Options struct {
	KeyFn               KeyFunc
	AddRateLimitHeaders bool
	Logger              *zap.Logger
}

// Handler traduz uma requisição HTTP (path P, método V) para HandleRequest(P, V)
// e devolve o status e o corpo resultantes.
func Handler(gw RequestHandler, opts Options) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = PathKeyFunc
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := opts.KeyFn(r)

		ctx := backend.WithRawQuery(r.Context(), r.URL.RawQuery)
		resp, dec := gw.HandleRequestDecision(ctx, key, r.Method)

		if opts.AddRateLimitHeaders {
			w.Header().Set("X-RateLimit-Key", key)
			w.Header().Set("X-RateLimit-Limit", formatUint(dec.Limit))
			w.Header().Set("X-RateLimit-Remaining", formatUint(dec.Remaining()))
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(resp.Status)
		if _, err := io.WriteString(w, resp.Body); err != nil {
			opts.Logger.Debug("failed to write response body",
				zap.String("path", r.URL.Path),
				zap.Error(err))
		}
	})
}
