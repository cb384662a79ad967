package redisad

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is the per-visitor session storage: every key lives under
// hbnb:session:<sid>: and shares the session TTL, refreshed on every read and write.
type KV struct {
	c   *redis.Client
	sid string
	ttl time.Duration
}

func NewKV(c *redis.Client, sid string, ttl time.Duration) *KV {
	return &KV{c: c, sid: sid, ttl: ttl}
}

func (k *KV) key(name string) string { return "hbnb:session:" + k.sid + ":" + name }

func (k *KV) Get(ctx context.Context, name string) (string, bool, error) {
	v, err := k.c.GetEx(ctx, k.key(name), k.ttl).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (k *KV) Set(ctx context.Context, name, value string) error {
	return k.c.Set(ctx, k.key(name), value, k.ttl).Err()
}

func (k *KV) Del(ctx context.Context, name string) error {
	return k.c.Del(ctx, k.key(name)).Err()
}
