//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"fellinglicence/internal/platform/config"
	redisclient "fellinglicence/internal/platform/redis"
)

// RedisContainer is a throwaway Redis for the species catalog cache.
type RedisContainer struct {
	Container testcontainers.Container
	URL       string
	// Client is built the same way the server builds its client.
	Client *redisclient.Client
}

func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("redis connection string: %v", err)
	}

	client, err := redisclient.New(ctx, config.RedisConfig{URL: url, PoolSize: 4})
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("connect to redis: %v", err)
	}

	// Shared through the Manager; Ryuk reaps it.
	return &RedisContainer{Container: container, URL: url, Client: client}
}

// FlushAll empties the database between tests.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
