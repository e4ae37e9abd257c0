package redis

import (
	"context"
	"errors"
	"time"

	"github.com/Gunvolt24/order-pipeline/internal/ports"
	"github.com/Gunvolt24/order-pipeline/pkg/metrics"
	goredis "github.com/redis/go-redis/v9"
)

// Проверка, что KV удовлетворяет порту KeyValueCache.
var _ ports.KeyValueCache = (*KV)(nil)

// KV — активная реализация кэш-порта на Redis.
// Все операции soft-fail: ошибка сети/таймаут логируется и превращается
// в промах или no-op, к вызывающему она не поднимается никогда.
type KV struct {
	client *goredis.Client
	log    ports.Logger
}

// New — конструктор поверх готового клиента (нужен тестам).
func New(client *goredis.Client, log ports.Logger) *KV {
	return &KV{client: client, log: log}
}

// Connect — клиент по URL (redis://host:port/db) с ping для fail-fast.
// Вызывающий сам решает, что делать при ошибке: сервер при недоступном
// Redis деградирует до no-op-кэша, а не падает.
func Connect(ctx context.Context, url string, log ports.Logger) (*KV, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &KV{client: client, log: log}, nil
}

// Close — закрывает соединения клиента.
func (c *KV) Close() error { return c.client.Close() }

// Get — значение по ключу; промах и любая ошибка неразличимы для вызывающего.
func (c *KV) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		metrics.CacheOps.WithLabelValues("error").Inc()
		c.log.Warnf(ctx, "cache read failed key=%s err=%v", key, err)
		return nil, false
	}
	return val, true
}

// SetWithTTL — запись с TTL; ttl <= 0 — no-op (бессрочные ключи не пишем,
// кроме счётчика версий, который живёт через Incr).
func (c *KV) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		metrics.CacheOps.WithLabelValues("error").Inc()
		c.log.Warnf(ctx, "cache write failed key=%s err=%v", key, err)
	}
}

// Incr — атомарный инкремент; 0 при ошибке.
func (c *KV) Incr(ctx context.Context, key string) int64 {
	val, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		metrics.CacheOps.WithLabelValues("error").Inc()
		c.log.Warnf(ctx, "cache incr failed key=%s err=%v", key, err)
		return 0
	}
	return val
}

// DeleteMatching — SCAN по шаблону + DEL каждого ключа.
// Перечисление prior-ключей списка не требуется: версия в ключе
// инвалидирует все страницы одним инкрементом.
func (c *KV) DeleteMatching(ctx context.Context, pattern string) {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.log.Warnf(ctx, "cache delete failed key=%s err=%v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		metrics.CacheOps.WithLabelValues("error").Inc()
		c.log.Warnf(ctx, "cache scan failed pattern=%s err=%v", pattern, err)
	}
}
