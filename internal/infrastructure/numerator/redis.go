package numerator

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"custody/internal/core/apperror"
	corenumerator "custody/internal/core/numerator"
)

// RedisCounter is the subset of the go-redis client used by RedisAllocator.
type RedisCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// raiseScript sets KEYS[1] to ARGV[1] unless it already holds a larger value
// and returns the resulting counter. It runs atomically with respect to INCR.
const raiseScript = `
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local want = tonumber(ARGV[1])
if want > cur then
	redis.call('SET', KEYS[1], want)
	return want
end
return cur`

// RedisAllocator allocates sequence values with INCR.
// INCR is atomic per key, so no extra locking is needed. Durability relies on
// the server's AOF setting. Values are not tied to the invoice transaction:
// an invoice that fails after allocation leaves a gap.
type RedisAllocator struct {
	client    RedisCounter
	keyPrefix string
	metrics   *instruments
}

// Ensure compile-time interface compliance.
var (
	_ corenumerator.Allocator = (*RedisAllocator)(nil)
	_ corenumerator.Observer  = (*RedisAllocator)(nil)
)

// NewRedis creates an allocator storing counters under invoice_seq:{prefix}:{year}.
func NewRedis(client RedisCounter) *RedisAllocator {
	return &RedisAllocator{
		client:    client,
		keyPrefix: "invoice_seq",
		metrics:   newInstruments(),
	}
}

// Allocate implements corenumerator.Allocator.
func (a *RedisAllocator) Allocate(ctx context.Context, key corenumerator.Key) (int64, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}
	if a == nil || a.client == nil {
		return 0, apperror.NewStorageUnavailable(fmt.Errorf("redis allocator not configured"))
	}

	ctx, span := tracer.Start(ctx, "numerator.allocate",
		trace.WithAttributes(
			attribute.String("sequence.prefix", key.Prefix),
			attribute.Int("sequence.year", key.Year),
			attribute.String("sequence.backend", "redis"),
		))
	defer span.End()

	num, err := a.client.Incr(ctx, a.redisKey(key)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "allocate failed")
		return 0, apperror.NewStorageUnavailable(fmt.Errorf("allocate %s: %w", key, err))
	}

	a.metrics.recordAllocation(ctx, key, "redis")
	return num, nil
}

// Observe raises the counter of key to at least sequence. The raise is not
// undone if the caller's transaction later fails.
func (a *RedisAllocator) Observe(ctx context.Context, key corenumerator.Key, sequence int64) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if sequence < 1 {
		return nil
	}
	if a == nil || a.client == nil {
		return apperror.NewStorageUnavailable(fmt.Errorf("redis allocator not configured"))
	}

	if err := a.client.Eval(ctx, raiseScript, []string{a.redisKey(key)}, sequence).Err(); err != nil {
		return apperror.NewStorageUnavailable(fmt.Errorf("observe %s: %w", key, err))
	}
	return nil
}

// Transactional reports whether allocations roll back with the caller's transaction.
func (a *RedisAllocator) Transactional() bool { return false }

func (a *RedisAllocator) redisKey(key corenumerator.Key) string {
	return fmt.Sprintf("%s:%s:%d", a.keyPrefix, key.Prefix, key.Year)
}
