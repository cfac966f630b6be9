package gateway

import (
	"net/http"
	"time"

	"request-gateway/gateway/application"
	"request-gateway/gateway/infra"

	"go.uber.org/zap"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	Logger         *zap.Logger
}

func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	adm := application.NewAdmission(infra.NewSlotPool(opts.Max), opts.AcquireTimeout)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := adm.Run(r.Context(), func() { next.ServeHTTP(w, r) })
			if err != nil {
				opts.Logger.Warn("no concurrency slot available",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("max", opts.Max),
					zap.Int64("rejected", adm.Rejected()),
					zap.Error(err))
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
			}
		})
	}
}
