package cache

import (
	"context"
	"time"
)

// NullCache backs --no-cache and the "none" backend: every lookup misses,
// so each render runs the full pipeline. It has no entries to clear, so it
// does not implement [Clearer].
type NullCache struct{}

// NewNullCache returns a cache that keeps no artifacts.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
