package cache

import (
	"context"
	"flag"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-redis/redis/v8"
)

// RedisConfig mirrors the client options we expose in YAML.
type RedisConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Timeout  time.Duration `yaml:"timeout"`
	// KeyPrefix namespaces entries when the instance is shared.
	KeyPrefix string `yaml:"key_prefix"`
}

func (cfg *RedisConfig) RegisterFlagsAndApplyDefaults(string, *flag.FlagSet) {
	cfg.Endpoint = "localhost:6379"
	cfg.Timeout = 500 * time.Millisecond
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger log.Logger
}

func newRedisCache(cfg RedisConfig, ttl time.Duration, logger log.Logger) *redisCache {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Endpoint,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})
	return &redisCache{
		client: client,
		ttl:    ttl,
		prefix: cfg.KeyPrefix,
		logger: logger,
	}
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			level.Warn(r.logger).Log("msg", "redis get failed", "err", err)
		}
		return nil, false
	}
	return val, true
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte) {
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		level.Warn(r.logger).Log("msg", "redis set failed", "err", err)
	}
}

func (r *redisCache) Stop() {
	_ = r.client.Close()
}
