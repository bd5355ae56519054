package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const redisKeyPrefix = "dashboard:"

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps client storage under dashboard:<namespace>:<key>.
// A zero ttl keeps values until they are deleted. Pending logins always
// expire after PendingLoginTTL.
type RedisStore struct {
	client RedisClient
	tracer trace.Tracer
	ttl    time.Duration
}

func NewRedisStore(client RedisClient, tracer trace.Tracer, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, tracer: tracer, ttl: ttl}
}

func (r *RedisStore) Namespace(ns string) (Store, error) {
	if !validNamespace(ns) {
		return nil, ErrInvalidNamespace
	}
	ttl := r.ttl
	if ns == LoginNamespace {
		ttl = PendingLoginTTL
	}
	return &redisScope{parent: r, prefix: redisKeyPrefix + ns + ":", ttl: ttl}, nil
}

type redisScope struct {
	parent *RedisStore
	prefix string
	ttl    time.Duration
}

func (s *redisScope) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := s.parent.tracer.Start(ctx, "redis-store.get")
	defer span.End()
	span.SetAttributes(attribute.String("storage.key", key))

	v, err := s.parent.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		span.RecordError(err)
		return "", false, err
	}
	return v, true, nil
}

func (s *redisScope) Set(ctx context.Context, key, value string) error {
	ctx, span := s.parent.tracer.Start(ctx, "redis-store.set")
	defer span.End()
	span.SetAttributes(attribute.String("storage.key", key))

	return s.parent.client.Set(ctx, s.prefix+key, value, s.ttl).Err()
}

func (s *redisScope) Delete(ctx context.Context, key string) error {
	ctx, span := s.parent.tracer.Start(ctx, "redis-store.delete")
	defer span.End()
	span.SetAttributes(attribute.String("storage.key", key))

	return s.parent.client.Del(ctx, s.prefix+key).Err()
}
