package reportcache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ts4z/shortlist/model"
)

// LRU is an in-process cache.  Entries expire after ttl so that writes made
// by other instances show up eventually even without dbnotify.
type LRU struct {
	cache *expirable.LRU[string, []byte]
}

var _ Cache = (*LRU)(nil)

func NewLRU(size int, ttl time.Duration) *LRU {
	return &LRU{cache: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *LRU) Get(_ context.Context, key string) ([]byte, bool) {
	return c.cache.Get(key)
}

func (c *LRU) Set(_ context.Context, key string, value []byte) {
	c.cache.Add(key, value)
}

func (c *LRU) CacheInvalidate(_ context.Context, round model.RoundID) {
	prefix := roundPrefix(round)
	for _, k := range c.cache.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Remove(k)
		}
	}
}
