package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"request-gateway/internal/logging"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// version é sobrescrito no build com -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gateway",
		Short:         "Request gateway with a per-URL request limit",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gateway version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func newServeCmd() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway (and the admin listener when ADMIN_ADDR is set)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := readConfig(v)
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.logLevel, cfg.logFormat)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, cfg, logger)
		},
	}
	cobra.CheckErr(bindFlags(v, cmd.Flags()))
	return cmd
}

func serve(ctx context.Context, cfg config, logger *zap.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	servers := []*http.Server{newServer(cfg.listenAddr, a.handler)}
	if cfg.adminAddr != "" {
		servers = append(servers, newServer(cfg.adminAddr, a.admin))
	}

	logger.Info("gateway listening",
		zap.String("addr", cfg.listenAddr),
		zap.String("admin", cfg.adminAddr),
		zap.String("backend", cfg.backend),
		zap.String("upstream", cfg.upstreamURL))
	logger.Info("rate limit",
		zap.Bool("enabled", cfg.rateEnabled),
		zap.Uint64("maxRequests", cfg.rateMaxRequests),
		zap.String("store", cfg.rateStore),
		zap.Bool("headers", cfg.addHeaders))
	logger.Info("rate stats",
		zap.Bool("enabled", cfg.rateStatsEnabled),
		zap.String("redisAddr", cfg.redisAddr),
		zap.String("bucket", cfg.rateStatsBucket),
		zap.Duration("ttl", cfg.rateStatsTTL),
		zap.Bool("trackKeys", cfg.rateStatsTrackKeys))
	logger.Info("concurrency",
		zap.Int("max", cfg.concurrencyMax),
		zap.Duration("acquireTimeout", cfg.concurrencyTimeout))

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrapf(err, "listen %s", srv.Addr)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, srv := range servers {
			_ = srv.Shutdown(shutdownCtx)
		}
		return nil
	})

	err = g.Wait()
	if err != nil {
		logger.Error("server error", zap.Error(err))
	}
	return err
}

func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}
}
