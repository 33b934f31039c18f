// Package redisadapter backs the search cache and cart sessions with Redis.
package redisadapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"companyhouse/internal/ports"
)

func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Cache implements ports.Cache. Every key lives under prefix so Flush only
// touches this cache's entries.
type Cache struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewCache(rdb redis.UniversalClient, prefix string) *Cache {
	return &Cache{rdb: rdb, prefix: prefix}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.rdb.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *Cache) Flush(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, c.prefix+"*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.rdb.Del(ctx, batch...).Err()
	}
	return nil
}

// Sessions implements ports.SessionProvider. Session keys expire ttl after
// their last write.
type Sessions struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewSessions(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Sessions {
	return &Sessions{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *Sessions) Session(id string) ports.SessionStore {
	return &session{parent: s, id: id}
}

type session struct {
	parent *Sessions
	id     string
}

func (s *session) key(k string) string { return sessionKey(s.parent.prefix, s.id, k) }

func sessionKey(prefix, id, key string) string {
	return fmt.Sprintf("%s%s:%s", prefix, id, key)
}

func (s *session) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.parent.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *session) Put(ctx context.Context, key string, value []byte) error {
	return s.parent.rdb.Set(ctx, s.key(key), value, s.parent.ttl).Err()
}

func (s *session) Delete(ctx context.Context, key string) error {
	return s.parent.rdb.Del(ctx, s.key(key)).Err()
}
