package caching

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultTenantTTL keeps slug lookups cheap without letting a stale
// mapping live long. Registry rows are immutable, so staleness only
// matters for freshly created tenants.
const DefaultTenantTTL = 5 * time.Minute

// TenantCache caches the slug to schema-name mapping in front of the
// registry on the request hot path. Best effort: a miss or a cache
// error just falls through to the registry.
type TenantCache interface {
	GetSchemaName(ctx context.Context, slug string) (string, bool)
	SetSchemaName(ctx context.Context, slug, schemaName string)
}

type redisTenantCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTenantCache(addr, password string, db int) TenantCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logrus.WithError(err).Warn("redis ping failed, tenant cache will degrade to registry lookups")
	}

	return &redisTenantCache{client: client, ttl: DefaultTenantTTL}
}

func tenantKey(slug string) string {
	return fmt.Sprintf("tenantly:tenant:%s", slug)
}

func (c *redisTenantCache) GetSchemaName(ctx context.Context, slug string) (string, bool) {
	schemaName, err := c.client.Get(ctx, tenantKey(slug)).Result()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).WithField("slug", slug).Debug("tenant cache read failed")
		}
		return "", false
	}
	return schemaName, true
}

func (c *redisTenantCache) SetSchemaName(ctx context.Context, slug, schemaName string) {
	if err := c.client.Set(ctx, tenantKey(slug), schemaName, c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("slug", slug).Debug("tenant cache write failed")
	}
}

// NoopTenantCache satisfies TenantCache when Redis is not configured.
type NoopTenantCache struct{}

func (NoopTenantCache) GetSchemaName(context.Context, string) (string, bool) { return "", false }
func (NoopTenantCache) SetSchemaName(context.Context, string, string)       {}
