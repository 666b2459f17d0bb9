package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Aside implements cache-aside lookup: on a hit the cached JSON is
// decoded into dest; on a miss the loader runs, filling dest, and the
// result is stored under key with the given TTL. When Redis is
// unavailable the loader runs directly and nothing is cached.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func() error) error {
	if client != nil {
		raw, err := client.Get(ctx, key).Bytes()
		if err == nil {
			if unmarshalErr := json.Unmarshal(raw, dest); unmarshalErr == nil {
				return nil
			}
			// Corrupt entry: drop it and fall through to the loader.
			client.Del(ctx, key)
		}
	}

	if err := loader(); err != nil {
		return err
	}

	if client != nil {
		if raw, err := json.Marshal(dest); err == nil {
			client.Set(ctx, key, raw, ttl)
		}
	}
	return nil
}
