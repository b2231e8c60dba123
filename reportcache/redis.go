package reportcache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ts4z/shortlist/model"
)

const redisPrefix = "shortlist:report:"

// Redis shares cached reports between instances.  Redis being down only
// costs a rebuild; it never fails a request.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Cache = (*Redis)(nil)

func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (c *Redis) Close() error {
	return c.client.Close()
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.client.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	} else if err != nil {
		failures.Add(1)
		log.Printf("reportcache: redis get %s: %v", key, err)
		return nil, false
	}
	return b, true
}

func (c *Redis) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, redisPrefix+key, value, c.ttl).Err(); err != nil {
		failures.Add(1)
		log.Printf("reportcache: redis set %s: %v", key, err)
	}
}

// CacheInvalidate deletes every key of round.
func (c *Redis) CacheInvalidate(ctx context.Context, round model.RoundID) {
	pattern := redisPrefix + roundPrefix(round) + "*"
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			failures.Add(1)
			log.Printf("reportcache: redis scan %s: %v", pattern, err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				failures.Add(1)
				log.Printf("reportcache: redis del: %v", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	log.Printf("reportcache: dropped %d reports of round %s", deleted, round)
}
