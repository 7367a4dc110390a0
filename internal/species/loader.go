package species

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Schema is the DDL for the species reference table.
//
//go:embed schema.sql
var Schema string

// LoadFromRedis reads the catalog from the hash at key. A missing or empty
// hash yields an empty catalog, not an error.
func LoadFromRedis(ctx context.Context, client redis.Cmdable, key string) (*Catalog, error) {
	entries, err := client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("load species catalog from redis: %w", err)
	}
	return NewCatalog(entries), nil
}

// StoreInRedis replaces the hash at key with the catalog contents.
func StoreInRedis(ctx context.Context, client redis.Cmdable, key string, catalog *Catalog) error {
	entries := catalog.Entries()
	if len(entries) == 0 {
		return nil
	}
	values := make(map[string]any, len(entries))
	for code, name := range entries {
		values[code] = name
	}
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store species catalog in redis: %w", err)
	}
	return nil
}

// LoadFromPostgres reads the species table.
func LoadFromPostgres(ctx context.Context, db *sql.DB) (*Catalog, error) {
	rows, err := db.QueryContext(ctx, `SELECT code, name FROM species`)
	if err != nil {
		return nil, fmt.Errorf("query species: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var code, name string
		if err := rows.Scan(&code, &name); err != nil {
			return nil, fmt.Errorf("scan species: %w", err)
		}
		entries[code] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate species: %w", err)
	}
	return NewCatalog(entries), nil
}

// Sources lists where Load looks, in order. Nil sources are skipped.
type Sources struct {
	Redis    redis.Cmdable
	RedisKey string
	DB       *sql.DB
}

// Load returns the first non-empty catalog from Redis, then Postgres, then
// the built-in default. A catalog read from Postgres is written back to Redis.
func Load(ctx context.Context, src Sources) (*Catalog, error) {
	if src.Redis != nil {
		catalog, err := LoadFromRedis(ctx, src.Redis, src.RedisKey)
		if err != nil {
			return nil, err
		}
		if catalog.Len() > 0 {
			return catalog, nil
		}
	}

	if src.DB != nil {
		catalog, err := LoadFromPostgres(ctx, src.DB)
		if err != nil {
			return nil, err
		}
		if catalog.Len() > 0 {
			if src.Redis != nil {
				if err := StoreInRedis(ctx, src.Redis, src.RedisKey, catalog); err != nil {
					return nil, err
				}
			}
			return catalog, nil
		}
	}

	return Default(), nil
}
