package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/saideep-g/blue-ninja/internal/cache"
)

// KV is a cache.KV stored in the kv_entries table. It serves deployments
// without Redis; expired rows are filtered on read and swept by Purge.
type KV struct {
	db *sql.DB
	b  *entsql.DialectBuilder
}

var _ cache.KV = (*KV)(nil)

func (k *KV) live(now int64) *entsql.Predicate {
	return entsql.Or(entsql.EQ("expires_at", 0), entsql.GT("expires_at", now))
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	query, args := k.b.Select("value").
		From(k.b.Table("kv_entries")).
		Where(entsql.And(entsql.EQ("cache_key", key), k.live(time.Now().UnixMilli()))).
		Query()

	var value string
	err := k.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = time.Now().Add(ttl).UnixMilli()
	}
	query, args := k.b.Insert("kv_entries").
		Columns("cache_key", "value", "expires_at").
		Values(key, string(value), expires).
		OnConflict(entsql.ConflictColumns("cache_key"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := k.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (k *KV) Delete(ctx context.Context, key string) error {
	query, args := k.b.Delete("kv_entries").Where(entsql.EQ("cache_key", key)).Query()
	if _, err := k.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (k *KV) Keys(ctx context.Context, prefix string) ([]string, error) {
	query, args := k.b.Select("cache_key").
		From(k.b.Table("kv_entries")).
		Where(entsql.And(entsql.HasPrefix("cache_key", prefix), k.live(time.Now().UnixMilli()))).
		OrderBy("cache_key").
		Query()

	rows, err := k.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("keys %s: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Purge deletes expired rows and returns how many were removed.
func (k *KV) Purge(ctx context.Context) (int64, error) {
	now := time.Now().UnixMilli()
	query, args := k.b.Delete("kv_entries").
		Where(entsql.And(entsql.GT("expires_at", 0), entsql.LTE("expires_at", now))).
		Query()
	res, err := k.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge kv: %w", err)
	}
	return res.RowsAffected()
}
