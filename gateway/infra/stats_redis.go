package infra

import (
	"context"
	"strconv"
	"strings"
	"time"

	"request-gateway/gateway/domain"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type RedisStatsStore struct {
	rdb redis.UniversalClient

	prefix string
	// ttl aplica apenas em chaves de série temporal / por key.
	// total é cumulativo e não expira.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackKeys bool
}

var _ domain.StatsStore = (*RedisStatsStore)(nil)

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb redis.UniversalClient, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "gateway:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record grava o evento em hashes:
//
//	<prefix>:total              outcome -> n
//	<prefix>:minute:<yyyymmddhhmm> outcome -> n (expira em ttl)
//	<prefix>:route              "METHOD PATH:status" -> n
//	<prefix>:key:<key>          outcome -> n (opcional, expira em ttl)
//
// Falhas do contador (OutcomeError) vão ainda para <prefix>:errors por rota,
// para que uma queda do Redis não se misture com os 403.
func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	if ev.Outcome == "" {
		ev.Outcome = domain.OutcomeError
	}
	outcome := string(ev.Outcome)
	route := routeOf(ev)
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.key("total"), outcome, 1)

	if s.bucket == "minute" {
		s.incrExpiring(ctx, pipe, s.key("minute", at.UTC().Format("200601021504")), outcome)
	}

	if route != "" {
		pipe.HIncrBy(ctx, s.key("route"), route+":"+strconv.Itoa(ev.Status), 1)
		if ev.Outcome == domain.OutcomeError {
			pipe.HIncrBy(ctx, s.key("errors"), route, 1)
		}
	}
	if ev.Status != 0 {
		pipe.HIncrBy(ctx, s.key("status"), strconv.Itoa(ev.Status), 1)
	}
	if k := strings.TrimSpace(string(ev.Key)); s.trackKeys && k != "" {
		s.incrExpiring(ctx, pipe, s.key("key", k), outcome)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.WithMessage(err, "redis stats/pipeline exec")
	}
	return nil
}

func (s *RedisStatsStore) key(parts ...string) string {
	return s.prefix + ":" + strings.Join(parts, ":")
}

func (s *RedisStatsStore) incrExpiring(ctx context.Context, pipe redis.Pipeliner, key, field string) {
	pipe.HIncrBy(ctx, key, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
}

func routeOf(ev domain.StatsEvent) string {
	return strings.TrimSpace(strings.TrimSpace(ev.Method) + " " + strings.TrimSpace(ev.Path))
}
