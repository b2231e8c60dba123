// Package reportcache keeps computed reports, encoded as JSON, so a busy
// results page doesn't rebuild the leaderboard on every request.
//
// Entries are keyed "<round>/<report>[/<user>]" and dropped per round when
// answers are revealed or a user finalizes.
package reportcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/ts4z/shortlist/model"
	"github.com/ts4z/shortlist/varz"
)

var (
	hits     = varz.NewInt("hits")
	misses   = varz.NewInt("misses")
	failures = varz.NewInt("failures")
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	CacheInvalidate(ctx context.Context, round model.RoundID)
}

func Key(round model.RoundID, report string, more ...string) string {
	parts := append([]string{string(round), report}, more...)
	return strings.Join(parts, "/")
}

func roundPrefix(round model.RoundID) string {
	return string(round) + "/"
}

// Through returns the cached report under key, or builds, caches and returns
// it.  Errors are never cached.
func Through[T any](ctx context.Context, c Cache, key string, build func() (*T, error)) (*T, error) {
	if b, ok := c.Get(ctx, key); ok {
		v := new(T)
		err := json.Unmarshal(b, v)
		if err == nil {
			hits.Add(1)
			return v, nil
		}
		log.Printf("reportcache: dropping undecodable %s: %v", key, err)
	}
	misses.Add(1)
	v, err := build()
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", key, err)
	}
	c.Set(ctx, key, b)
	return v, nil
}

// Nop caches nothing.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool)     { return nil, false }
func (Nop) Set(context.Context, string, []byte)            {}
func (Nop) CacheInvalidate(context.Context, model.RoundID) {}
