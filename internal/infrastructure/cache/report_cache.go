package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockpilot/stockpilot-api/internal/application/analytics"
	"github.com/stockpilot/stockpilot-api/internal/application/inventory"
)

var (
	_ analytics.ReportCache    = (*ReportCache)(nil)
	_ inventory.ChangeNotifier = (*ReportCache)(nil)
)

// ReportCache guarda reportes en JSON bajo "<prefix>:v<versión>:<clave>".
// Bump incrementa la versión: las claves anteriores quedan inalcanzables y expiran por TTL.
type ReportCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewReportCache construye la caché. client nil devuelve nil (sin caché).
func NewReportCache(client *redis.Client, prefix string, ttl time.Duration) *ReportCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReportCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *ReportCache) versionKey() string { return c.prefix + ":version" }

func (c *ReportCache) key(ctx context.Context, name string) (string, error) {
	v, err := c.client.Get(ctx, c.versionKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("cache: versión: %w", err)
	}
	return fmt.Sprintf("%s:v%d:%s", c.prefix, v, name), nil
}

// Get decodifica la clave en dest. ok=false si no existe.
// key es la clave versionada leída; Set debe recibirla para que un Bump
// durante la carga deje el valor bajo la versión anterior.
func (c *ReportCache) Get(ctx context.Context, name string, dest any) (key string, ok bool, err error) {
	if c == nil {
		return "", false, nil
	}
	key, err = c.key(ctx, name)
	if err != nil {
		return "", false, err
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return key, false, nil
	}
	if err != nil {
		return key, false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return key, false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return key, true, nil
}

// Set guarda value como JSON bajo key (la devuelta por Get) con el TTL configurado.
// key vacía no guarda nada.
func (c *ReportCache) Set(ctx context.Context, key string, value any) error {
	if c == nil || key == "" {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// Bump invalida todos los reportes en caché.
func (c *ReportCache) Bump(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.client.Incr(ctx, c.versionKey()).Err(); err != nil {
		return fmt.Errorf("cache: bump: %w", err)
	}
	return nil
}
