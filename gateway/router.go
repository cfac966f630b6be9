package gateway

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader é devolvido em toda resposta do gateway.
const RequestIDHeader = "X-Request-ID"

type requestIDContextKey struct{}

// RequestID reaproveita o id do chi ou do header e, se não houver, gera um UUID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDContextKey{}, id)
		ctx = context.WithValue(ctx, middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retorna o id colocado por RequestID.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDContextKey{}).(string); ok {
		return id
	}
	return middleware.GetReqID(ctx)
}

// AccessLog escreve uma linha por requisição.
func AccessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.String("requestID", GetRequestID(r.Context())))
		})
	}
}

// NewChain envolve h com RequestID, Recoverer, AccessLog e mws, nessa ordem.
//
// Não há roteamento: qualquer path e qualquer método (inclusive verbos fora do
// padrão, como PURGE) chegam em h.
func NewChain(h http.Handler, logger *zap.Logger, mws ...func(http.Handler) http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	chain := chi.Chain(RequestID, middleware.Recoverer, AccessLog(logger))
	return append(chain, mws...).Handler(h)
}
