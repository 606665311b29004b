package cache

//go:generate go run go.uber.org/mock/mockgen -source=./cache.go -destination=./mocks/cache_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"cafebook/infras/otel"
)

const (
	otelScopeName         = "cache"
	otelCacheKeyAttribute = "cache.key"
	Nil                   = redis.Nil
)

// unlockScript deletes KEYS[1] only when it still holds ARGV[1].
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisCache interface {
	Save(ctx context.Context, key string, value any, duration int) (err error)
	Get(ctx context.Context, key string, value any) (err error)
	// Lock sets key to a fresh token if absent. The token is needed to
	// release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error)
	// Unlock deletes key only while it still holds token.
	Unlock(ctx context.Context, key, token string) error
}

// redisCache degrades to a no-op when client is nil: reads miss, writes are
// dropped and locks are always granted.
type redisCache struct {
	client *redis.Client
	otel   otel.Otel
}

func NewRedisCache(client *redis.Client, ot otel.Otel) RedisCache {
	return &redisCache{
		client: client,
		otel:   ot,
	}
}

// Get implements RedisCache.
func (cache *redisCache) Get(ctx context.Context, key string, value any) (err error) {
	ctx, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelCacheKeyAttribute, key)

	if cache.client == nil {
		return fmt.Errorf("cache disabled: %w", Nil)
	}

	cacheValue, err := cache.client.Get(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to get cache value: %w", err)
	}

	switch v := value.(type) {
	case *string:
		*v = cacheValue
	default:
		if err = json.Unmarshal([]byte(cacheValue), value); err != nil {
			log.Error().Err(err).Str("RedisCache", "Get").Msg("failed to unmarshal cache")

			return fmt.Errorf("failed to unmarshal cache value: %w", err)
		}
	}

	return nil
}

// Save implements RedisCache.
func (cache *redisCache) Save(ctx context.Context, key string, value any, duration int) (err error) {
	ctx, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".Save")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelCacheKeyAttribute, key)

	if cache.client == nil {
		return nil
	}

	var strValue []byte
	switch v := value.(type) {
	case string:
		strValue = []byte(v)
	default:
		strValue, err = json.Marshal(v)
		if err != nil {
			log.Error().Err(err).Str("key", key).Str("RedisCache", "Save").Msg("failed to marshal cache")

			return fmt.Errorf("failed to marshal cache value: %w", err)
		}
	}

	err = cache.client.Set(ctx, key, strValue, time.Second*time.Duration(duration)).Err()
	if err != nil {
		log.Error().Err(err).Str("key", key).Str("RedisCache", "Save").Msg("failed to set cache")

		return fmt.Errorf("failed to set cache value: %w", err)
	}

	log.Debug().Str("RedisCache", "Save").Str("key", key).Msg("success to set cache")

	return nil
}

// Lock implements RedisCache.
func (cache *redisCache) Lock(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error) {
	ctx, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".Lock")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelCacheKeyAttribute, key)

	token = uuid.NewString()

	if cache.client == nil {
		return token, true, nil
	}

	acquired, err = cache.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		log.Error().Err(err).Str("key", key).Str("RedisCache", "Lock").Msg("failed to acquire lock")

		return "", false, fmt.Errorf("failed to acquire lock: %w", err)
	}

	scope.SetAttribute("cache.lock.acquired", acquired)

	if !acquired {
		return "", false, nil
	}

	return token, true, nil
}

// Unlock implements RedisCache.
func (cache *redisCache) Unlock(ctx context.Context, key, token string) (err error) {
	ctx, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".Unlock")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelCacheKeyAttribute, key)

	if cache.client == nil {
		return nil
	}

	released, err := unlockScript.Run(ctx, cache.client, []string{key}, token).Int()
	if err != nil {
		log.Error().Err(err).Str("key", key).Str("RedisCache", "Unlock").Msg("failed to release lock")

		return fmt.Errorf("failed to release lock: %w", err)
	}

	if released == 0 {
		log.Warn().Str("key", key).Msg("lock expired or taken over before release")
	}

	return nil
}
