package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"listings-service/internal/contracts"
	"listings-service/internal/core/domain"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultKey = "listings:raw:v1"

type Config struct {
	Addr     string
	Password string
	DB       int
	// Key - ключ, под которым хранится сырой ответ источника
	Key string
}

// RecordCache хранит сырой ответ источника целиком, одним JSON-массивом
type RecordCache struct {
	client *redis.Client
	key    string
}

func NewRecordCache(cfg Config) (*RecordCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newRecordCache(client, cfg.Key), nil
}

func newRecordCache(client *redis.Client, key string) *RecordCache {
	if key == "" {
		key = DefaultKey
	}
	return &RecordCache{client: client, key: key}
}

func (c *RecordCache) GetRecords(ctx context.Context) ([]domain.RawRecord, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", c.key, err)
	}

	records, err := contracts.DecodeRecords(data)
	if err != nil {
		// повреждённое значение не должно жить дальше TTL
		_ = c.client.Del(ctx, c.key).Err()
		return nil, fmt.Errorf("cached payload is invalid: %w", err)
	}
	return records, nil
}

func (c *RecordCache) SetRecords(ctx context.Context, records []domain.RawRecord, ttl time.Duration) error {
	if records == nil {
		records = []domain.RawRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key, err)
	}
	return nil
}

func (c *RecordCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

func (c *RecordCache) Close() error {
	return c.client.Close()
}
