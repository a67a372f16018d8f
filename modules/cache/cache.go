// Package cache provides the shared key value cache used for search
// results and autocomplete suggestions, backed by in process memory or
// redis.
package cache

import (
	"context"
	"flag"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Cache is a byte oriented cache with a fixed per entry lifetime.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Stop()
}

// Config selects and tunes the backend.
type Config struct {
	Backend string `yaml:"backend"`
	// TTL is how long an entry stays valid.
	TTL time.Duration `yaml:"ttl"`
	// MaxEntries bounds the memory backend.
	MaxEntries int `yaml:"max_entries"`

	Redis RedisConfig `yaml:"redis"`
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	cfg.Backend = BackendMemory
	cfg.TTL = 10 * time.Minute
	cfg.MaxEntries = 1024
	cfg.Redis.RegisterFlagsAndApplyDefaults(prefix, f)
}

// New builds the configured cache. The none backend yields a cache that
// never hits, so callers need no nil checks.
func New(cfg Config, logger log.Logger) (Cache, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		level.Info(logger).Log("msg", "configuring memory cache", "max_entries", cfg.MaxEntries, "ttl", cfg.TTL)
		return newMemoryCache(cfg.MaxEntries, cfg.TTL), nil
	case BackendRedis:
		level.Info(logger).Log("msg", "configuring redis cache", "endpoint", cfg.Redis.Endpoint, "ttl", cfg.TTL)
		return newRedisCache(cfg.Redis, cfg.TTL, logger), nil
	case BackendNone:
		return nopCache{}, nil
	default:
		return nil, errors.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (nopCache) Set(context.Context, string, []byte)        {}
func (nopCache) Stop()                                      {}
