package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
	"github.com/redis/go-redis/v9"
)

const defaultPickupKeyPrefix = "clickcollect:pickup:"

// RedisPickupCodeRegistry reserves pickup codes in Redis so that every
// instance behind the load balancer draws from the same pool
type RedisPickupCodeRegistry struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisPickupCodeRegistry connects to Redis and pings it
func NewRedisPickupCodeRegistry(cfg RedisConfig) (*RedisPickupCodeRegistry, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisPickupCodeRegistryWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisPickupCodeRegistryWithClient wraps an existing client
func NewRedisPickupCodeRegistryWithClient(client *redis.Client, keyPrefix string) *RedisPickupCodeRegistry {
	if keyPrefix == "" {
		keyPrefix = defaultPickupKeyPrefix
	}
	return &RedisPickupCodeRegistry{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Reserve claims code with SETNX so concurrent instances race on a
// single atomic command
func (r *RedisPickupCodeRegistry) Reserve(ctx context.Context, code string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.key(code), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve pickup code: %w", err)
	}
	return ok, nil
}

// Release deletes the reservation
func (r *RedisPickupCodeRegistry) Release(ctx context.Context, code string) error {
	if err := r.client.Del(ctx, r.key(code)).Err(); err != nil {
		return fmt.Errorf("failed to release pickup code: %w", err)
	}
	return nil
}

// IsReserved reports whether a live reservation exists
func (r *RedisPickupCodeRegistry) IsReserved(ctx context.Context, code string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(code)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check pickup code: %w", err)
	}
	return n > 0, nil
}

// Ping checks connectivity, used by the readiness probe
func (r *RedisPickupCodeRegistry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (r *RedisPickupCodeRegistry) Close() error {
	return r.client.Close()
}

func (r *RedisPickupCodeRegistry) key(code string) string {
	return r.keyPrefix + strings.ToUpper(code)
}

var _ shopping.PickupCodeRegistry = (*RedisPickupCodeRegistry)(nil)
