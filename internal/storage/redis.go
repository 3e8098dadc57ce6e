package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/gymtracker/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
)

// RedisStore keeps each key as a plain string value under prefix+key.
type RedisStore struct {
	rdb    redis.Cmdable
	closer func() error
	prefix string
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		rdb:    rdb,
		closer: rdb.Close,
		prefix: prefix,
	}
}

// NewRedisStoreWithCmdable is used with clients the store does not own, e.g. redismock.
func NewRedisStoreWithCmdable(rdb redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{
		rdb:    rdb,
		closer: func() error { return nil },
		prefix: prefix,
	}
}

func (s *RedisStore) Load(ctx context.Context, key string) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redisStore.load")
	span.SetAttributes(attribute.String("key", key))
	defer func() {
		if errors.Is(err, ErrNotFound) {
			tracing.EndSpanWithErrCheck(span, nil)
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()

	blob, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get [%s]: %w", key, err)
	}
	return blob, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, blob []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redisStore.save")
	span.SetAttributes(attribute.String("key", key), attribute.Int("size", len(blob)))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.rdb.Set(ctx, s.prefix+key, blob, 0).Err(); err != nil {
		return fmt.Errorf("redis set [%s]: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.closer()
}
