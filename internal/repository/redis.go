package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cabinbook/internal/config"
	"cabinbook/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisIdentityRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisIdentityRepository(client *redis.Client, ttl time.Duration) *RedisIdentityRepository {
	return &RedisIdentityRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisIdentityRepository) GetIdentity(ctx context.Context, deviceID string) (*models.GuestRecord, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("guest_identity:%s", deviceID)
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity from redis: %w", err)
	}

	var record models.GuestRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity: %w", err)
	}

	return &record, nil
}

func (r *RedisIdentityRepository) SetIdentity(ctx context.Context, deviceID string, record *models.GuestRecord) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("guest_identity:%s", deviceID)
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set identity in redis: %w", err)
	}

	return nil
}

func (r *RedisIdentityRepository) ClearIdentity(ctx context.Context, deviceID string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("guest_identity:%s", deviceID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete identity from redis: %w", err)
	}
	return nil
}

func (r *RedisIdentityRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	rlKey := fmt.Sprintf("rate_limit:%s", key)
	count, err := r.client.Incr(ctx, rlKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, rlKey, window)
	}

	return count <= int64(limit), nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
