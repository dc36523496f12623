package viacep

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// ErrCacheMiss is returned by a Cache when the key is absent.
var ErrCacheMiss = errors.New("viacep: cache miss")

// Cache is the key/value store CachingClient keeps results in.
type Cache interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key string, value any, ttl time.Duration) error
}

const cacheNamespace = "viacep"

// CachingClient serves repeated lookups from a Cache. Only successful
// lookups are stored; cache failures never fail a lookup.
type CachingClient struct {
	next  Client
	cache Cache
	ttl   time.Duration
}

// NewCachingClient wraps next with cache.
func NewCachingClient(next Client, cache Cache, ttl time.Duration) *CachingClient {
	return &CachingClient{next: next, cache: cache, ttl: ttl}
}

var _ Client = (*CachingClient)(nil)

func (c *CachingClient) Lookup(ctx context.Context, postalCode string) (*Result, error) {
	cep := Normalize(postalCode)
	if len(cep) != 8 {
		return nil, ErrInvalidPostalCode
	}

	if raw, err := c.cache.Get(ctx, cacheNamespace, cep); err == nil {
		var cached Result
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
		slog.Warn("postal code cache entry unreadable", "cep", cep)
	} else if !errors.Is(err, ErrCacheMiss) {
		slog.Warn("postal code cache read failed", "cep", cep, "error", err)
	}

	result, err := c.next.Lookup(ctx, cep)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(result); err == nil {
		if err := c.cache.Set(ctx, cacheNamespace, cep, raw, c.ttl); err != nil {
			slog.Warn("postal code cache write failed", "cep", cep, "error", err)
		}
	}
	return result, nil
}
