package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryCache struct {
	lru *expirable.LRU[string, []byte]
}

func newMemoryCache(maxEntries int, ttl time.Duration) *memoryCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &memoryCache{
		lru: expirable.NewLRU[string, []byte](maxEntries, nil, ttl),
	}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	return m.lru.Get(key)
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte) {
	m.lru.Add(key, value)
}

func (m *memoryCache) Stop() {}
