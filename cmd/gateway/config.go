package main

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	backendApplication = "application"
	backendUpstream    = "upstream"

	storeMemory = "memory"
	storeRedis  = "redis"
)

type config struct {
	listenAddr      string
	adminAddr       string
	backend         string
	upstreamURL     string
	upstreamTimeout time.Duration

	rateEnabled       bool
	rateMaxRequests   uint64
	rateStore         string
	rateCounterPrefix string
	addHeaders        bool
	denyLogInterval   time.Duration

	redisAddr     string
	redisPassword string
	redisDB       int

	concurrencyMax     int
	concurrencyTimeout time.Duration

	rateStatsEnabled   bool
	rateStatsPrefix    string
	rateStatsTTL       time.Duration
	rateStatsBucket    string
	rateStatsTrackKeys bool

	logLevel  string
	logFormat string
}

// needsRedis diz se algum componente configurado usa o Redis.
func (c config) needsRedis() bool {
	return (c.rateEnabled && c.rateStore == storeRedis) || c.rateStatsEnabled
}

// cada chave é lida do env em maiúsculas (LISTEN_ADDR, RATE_MAX_REQUESTS, ...)
// e do flag com "-" no lugar de "_".
var defaults = map[string]any{
	"listen_addr":      ":8080",
	"admin_addr":       "",
	"backend":          backendApplication,
	"upstream_url":     "",
	"upstream_timeout": 10 * time.Second,

	"rate_enabled":          true,
	"rate_max_requests":     2,
	"rate_store":            storeMemory,
	"rate_counter_prefix":   "gateway:counter",
	"add_ratelimit_headers": false,
	"deny_log_interval":     time.Second,

	"redis_addr":     "",
	"redis_password": "",
	"redis_db":       0,

	"concurrency_max":     100,
	"concurrency_timeout": time.Duration(0),

	"rate_stats_enabled":    false,
	"rate_stats_prefix":     "gateway:stats",
	"rate_stats_ttl":        24 * time.Hour,
	"rate_stats_bucket":     "minute",
	"rate_stats_track_keys": false,

	"log_level":  "info",
	"log_format": "json",
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()
	return v
}

// bindFlags registra um flag para cada chave de config e liga ao viper.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for k, d := range defaults {
		name := strings.ReplaceAll(k, "_", "-")
		switch dv := d.(type) {
		case string:
			fs.String(name, dv, "")
		case bool:
			fs.Bool(name, dv, "")
		case int:
			fs.Int(name, dv, "")
		case time.Duration:
			fs.Duration(name, dv, "")
		}
		if err := v.BindPFlag(k, fs.Lookup(name)); err != nil {
			return errors.Wrapf(err, "bind flag %s", name)
		}
	}
	return nil
}

func readConfig(v *viper.Viper) (config, error) {
	cfg := config{
		listenAddr:      v.GetString("listen_addr"),
		adminAddr:       v.GetString("admin_addr"),
		backend:         strings.ToLower(strings.TrimSpace(v.GetString("backend"))),
		upstreamURL:     strings.TrimSpace(v.GetString("upstream_url")),
		upstreamTimeout: v.GetDuration("upstream_timeout"),

		rateEnabled:       v.GetBool("rate_enabled"),
		rateStore:         strings.ToLower(strings.TrimSpace(v.GetString("rate_store"))),
		rateCounterPrefix: v.GetString("rate_counter_prefix"),
		addHeaders:        v.GetBool("add_ratelimit_headers"),
		denyLogInterval:   v.GetDuration("deny_log_interval"),

		redisAddr:     strings.TrimSpace(v.GetString("redis_addr")),
		redisPassword: v.GetString("redis_password"),
		redisDB:       v.GetInt("redis_db"),

		concurrencyMax:     v.GetInt("concurrency_max"),
		concurrencyTimeout: v.GetDuration("concurrency_timeout"),

		rateStatsEnabled:   v.GetBool("rate_stats_enabled"),
		rateStatsPrefix:    v.GetString("rate_stats_prefix"),
		rateStatsTTL:       v.GetDuration("rate_stats_ttl"),
		rateStatsBucket:    v.GetString("rate_stats_bucket"),
		rateStatsTrackKeys: v.GetBool("rate_stats_track_keys"),

		logLevel:  v.GetString("log_level"),
		logFormat: v.GetString("log_format"),
	}

	maxRequests := v.GetInt64("rate_max_requests")
	if maxRequests < 0 {
		return config{}, errors.New("RATE_MAX_REQUESTS must be >= 0")
	}
	cfg.rateMaxRequests = uint64(maxRequests)

	switch cfg.backend {
	case backendApplication:
	case backendUpstream:
		if cfg.upstreamURL == "" {
			return config{}, errors.New("UPSTREAM_URL is required when BACKEND=upstream")
		}
	default:
		return config{}, errors.Errorf("unknown BACKEND %q", cfg.backend)
	}

	switch cfg.rateStore {
	case storeMemory, storeRedis:
	default:
		return config{}, errors.Errorf("unknown RATE_STORE %q", cfg.rateStore)
	}

	if cfg.needsRedis() && cfg.redisAddr == "" {
		return config{}, errors.New("REDIS_ADDR is required when RATE_STORE=redis or RATE_STATS_ENABLED=true")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}
