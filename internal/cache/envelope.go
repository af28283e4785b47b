package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrStale is returned when a cached value was written under a different
// schema version. Callers treat it as a miss; the entry is never migrated.
var ErrStale = errors.New("cache: stale schema version")

// Envelope wraps every cached payload with the schema version it was
// written under.
type Envelope struct {
	SchemaVersion int             `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// Load reads key and decodes its payload into v. It returns ErrNotFound
// on a miss and ErrStale (after deleting the entry) on a version mismatch.
func Load(ctx context.Context, kv KV, key string, version int, v any) error {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.SchemaVersion != version {
		if delErr := kv.Delete(ctx, key); delErr != nil {
			return fmt.Errorf("drop stale %s: %w", key, delErr)
		}
		return ErrStale
	}

	if err := json.Unmarshal(env.Payload, v); err != nil {
		if delErr := kv.Delete(ctx, key); delErr != nil {
			return fmt.Errorf("drop undecodable %s: %w", key, delErr)
		}
		return ErrStale
	}
	return nil
}

// Save encodes v inside a versioned envelope and writes it under key.
func Save(ctx context.Context, kv KV, key string, version int, v any, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	raw, err := json.Marshal(Envelope{SchemaVersion: version, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal envelope %s: %w", key, err)
	}
	return kv.Set(ctx, key, raw, ttl)
}

// IsMiss reports whether err means "regenerate": a missing or stale entry.
func IsMiss(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrStale)
}
