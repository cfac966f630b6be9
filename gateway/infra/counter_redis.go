package infra

import (
	"context"
	"strings"

	"request-gateway/gateway/domain"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// checkAndIncrementScript replica MemoryCounter.Check de forma atômica no Redis.
// Retorna {allowed (0/1), contador antes do incremento}.
var checkAndIncrementScript = redis.NewScript(`
local n = tonumber(redis.call("GET", KEYS[1]))
if not n then
	n = 1
	redis.call("SET", KEYS[1], n)
end
if n > tonumber(ARGV[1]) then
	return {0, n}
end
redis.call("INCR", KEYS[1])
return {1, n}
`)

// RedisCounter é o mesmo contador de MemoryCounter, guardado no Redis para que
// várias instâncias do gateway compartilhem o limite. As chaves não têm TTL.
type RedisCounter struct {
	rdb    redis.UniversalClient
	max    uint64
	prefix string
}

var _ domain.Counter = (*RedisCounter)(nil)

type RedisCounterOption func(*RedisCounter)

func WithCounterPrefix(prefix string) RedisCounterOption {
	return func(c *RedisCounter) {
		c.prefix = strings.Trim(prefix, ":")
	}
}

func NewRedisCounter(rdb redis.UniversalClient, maxAllowed uint64, opts ...RedisCounterOption) *RedisCounter {
	c := &RedisCounter{
		rdb:    rdb,
		max:    maxAllowed,
		prefix: "gateway:counter",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCounter) Max() uint64 { return c.max }

func (c *RedisCounter) CheckAndIncrement(ctx context.Context, key domain.Key) (domain.Decision, error) {
	res, err := checkAndIncrementScript.Run(ctx, c.rdb, []string{c.key(key)}, c.max).Int64Slice()
	if err != nil {
		return domain.Decision{}, errors.WithMessage(err, "redis counter/check and increment")
	}
	if len(res) != 2 {
		return domain.Decision{}, errors.Errorf("redis counter: unexpected script reply %v", res)
	}

	if res[0] == 0 {
		return domain.Decision{Allowed: false, Used: c.max, Limit: c.max}, nil
	}
	return domain.Decision{Allowed: true, Used: uint64(res[1]), Limit: c.max}, nil
}

func (c *RedisCounter) key(key domain.Key) string {
	return c.prefix + ":" + string(key)
}
