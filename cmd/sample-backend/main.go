// Command sample-backend serve a aplicação de exemplo por HTTP, para rodar o
// gateway com BACKEND=upstream apontando para ela.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"request-gateway/gateway/backend"
	"request-gateway/internal/logging"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "sample-backend:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger, err := logging.New(os.Getenv("LOG_LEVEL"), "console")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newHandler(logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("sample backend listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrapf(err, "listen %s", addr)
	}
	return nil
}

func newHandler(logger *zap.Logger) http.Handler {
	app := backend.Application{}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := app.Handle(r.Context(), r.URL.Path, r.Method)
		logger.Debug("request", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Int("status", resp.Status))

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(resp.Status)
		_, _ = io.WriteString(w, resp.Body)
	})
}
