// Package cache guarda en Redis los reportes agregados (dashboard, cobertura).
// Los valores se serializan en JSON y expiran según CACHE_TTL_SECONDS.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/registro-escuelas/internal/application/importer"
	"github.com/jhoicas/registro-escuelas/internal/application/ports"
	"github.com/jhoicas/registro-escuelas/internal/application/usecase"
)

const scanBatch = 100

var (
	_ ports.ReportCache         = (*RedisCache)(nil)
	_ importer.CacheInvalidator = (*RedisCache)(nil)
)

// NewClient crea el cliente go-redis y valida la conexión.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: url inválida: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

// RedisCache implementa ports.ReportCache.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache construye la caché. ttl <= 0 guarda sin expiración.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// Get carga el valor de key en dst. Devuelve false si no existe.
func (c *RedisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis: get %s: %w", key, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("redis: decodificar %s: %w", key, err)
	}
	return true, nil
}

// Set guarda value con el TTL configurado.
func (c *RedisCache) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis: codificar %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

// InvalidateReports borra todas las claves bajo el prefijo de reportes.
// Primero recorre el keyspace completo y luego borra por lotes.
func (c *RedisCache) InvalidateReports(ctx context.Context) error {
	var keys []string
	iter := c.rdb.Scan(ctx, 0, usecase.ReportKeyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis: scan reportes: %w", err)
	}
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		if err := c.rdb.Del(ctx, keys[start:end]...).Err(); err != nil {
			return fmt.Errorf("redis: borrar reportes: %w", err)
		}
	}
	return nil
}
