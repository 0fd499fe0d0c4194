// Package cache implementa la caché versionada del bosque de categorías sobre Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	appcategory "github.com/jhoicas/categorias-api/internal/application/category"
	"github.com/jhoicas/categorias-api/pkg/config"
)

var _ appcategory.TreeCache = (*RedisTreeCache)(nil)

const defaultPrefix = "categorias:tree"

// RedisTreeCache guarda el bosque serializado bajo <prefix>:v<versión>. La versión vive en
// <prefix>:version y cada mutación la incrementa, dejando huérfanas (hasta su TTL) las entradas viejas.
type RedisTreeCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedisTreeCache construye la caché. prefix vacío usa el prefijo por defecto.
func NewRedisTreeCache(client *redis.Client, prefix string, ttl time.Duration) *RedisTreeCache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisTreeCache{client: client, prefix: prefix, ttl: ttl}
}

// VersionKey clave del contador de versión.
func (c *RedisTreeCache) VersionKey() string {
	return c.prefix + ":version"
}

// EntryKey clave del bosque para una versión.
func (c *RedisTreeCache) EntryKey(version int64) string {
	return fmt.Sprintf("%s:v%d", c.prefix, version)
}

// Version versión vigente; 0 si nunca hubo mutaciones.
func (c *RedisTreeCache) Version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, c.VersionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("leer versión: %w", err)
	}
	return v, nil
}

// Get devuelve el bosque cacheado para version.
func (c *RedisTreeCache) Get(ctx context.Context, version int64) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, c.EntryKey(version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("leer árbol: %w", err)
	}
	return b, true, nil
}

// Set guarda el bosque de version con el TTL configurado.
func (c *RedisTreeCache) Set(ctx context.Context, version int64, payload []byte) error {
	if err := c.client.Set(ctx, c.EntryKey(version), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("guardar árbol: %w", err)
	}
	return nil
}

// Invalidate incrementa la versión; las lecturas siguientes no ven el bosque anterior.
func (c *RedisTreeCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.VersionKey()).Err(); err != nil {
		return fmt.Errorf("incrementar versión: %w", err)
	}
	return nil
}
