package main

import (
	"context"
	"net/http"
	"time"

	"request-gateway/gateway"
	"request-gateway/gateway/application"
	"request-gateway/gateway/backend"
	"request-gateway/gateway/domain"
	"request-gateway/gateway/infra"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app junta tudo que o serve precisa: os dois handlers e o que fechar no fim.
type app struct {
	handler http.Handler
	admin   http.Handler
	rdb     *redis.Client
}

func (a *app) Close() error {
	if a.rdb != nil {
		return a.rdb.Close()
	}
	return nil
}

func newApp(ctx context.Context, cfg config, logger *zap.Logger) (*app, error) {
	a := &app{}

	if cfg.needsRedis() {
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.redisAddr,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := a.rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = a.rdb.Close()
			return nil, errors.WithMessage(err, "redis ping")
		}
	}

	be, err := newBackend(cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promStats := infra.NewPrometheusStatsStore("gateway")
	promStats.MustRegister(registry)
	memStats := infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.rateStatsTrackKeys))

	stats := infra.MultiStatsStore{promStats, memStats}
	if cfg.rateStatsEnabled {
		stats = append(stats, infra.NewRedisStatsStore(
			a.rdb,
			infra.WithStatsPrefix(cfg.rateStatsPrefix),
			infra.WithStatsTTL(cfg.rateStatsTTL),
			infra.WithStatsBucket(cfg.rateStatsBucket),
			infra.WithStatsTrackKeys(cfg.rateStatsTrackKeys),
		))
	}

	gw := application.NewGateway(newCounter(cfg, a.rdb), be,
		application.WithStats(stats),
		application.WithLogger(logger),
		application.WithDenyLogInterval(cfg.denyLogInterval),
	)

	a.handler = gateway.NewChain(
		gateway.Handler(gw, gateway.Options{
			AddRateLimitHeaders: cfg.addHeaders,
			Logger:              logger,
		}),
		logger,
		gateway.ConcurrencyMiddleware(gateway.ConcurrencyOptions{
			Max:            cfg.concurrencyMax,
			RejectStatus:   http.StatusServiceUnavailable,
			AcquireTimeout: cfg.concurrencyTimeout,
			Logger:         logger,
		}),
	)

	var health pinger
	if a.rdb != nil {
		health = a.rdb
	}
	a.admin = newAdminRouter(registry, memStats, health)
	return a, nil
}

func newBackend(cfg config, logger *zap.Logger) (domain.Backend, error) {
	if cfg.backend == backendUpstream {
		return backend.NewUpstream(cfg.upstreamURL,
			backend.WithTimeout(cfg.upstreamTimeout),
			backend.WithLogger(logger),
		)
	}
	return backend.Application{}, nil
}

// newCounter devolve nil quando o rate limit está desligado: o Gateway então
// encaminha tudo.
func newCounter(cfg config, rdb redis.UniversalClient) domain.Counter {
	if !cfg.rateEnabled {
		return nil
	}
	if cfg.rateStore == storeRedis {
		return infra.NewRedisCounter(rdb, cfg.rateMaxRequests, infra.WithCounterPrefix(cfg.rateCounterPrefix))
	}
	return infra.NewMemoryCounter(cfg.rateMaxRequests)
}
