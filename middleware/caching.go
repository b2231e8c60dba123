package middleware

import (
	"fmt"
	"net/http"
	"time"
)

// CacheHeaderAdder lets browsers keep successful GET responses for a while.
// Reports are only recomputed every report cache TTL anyway.
type CacheHeaderAdder struct {
	next   http.Handler
	header string
}

// NewCacheHeaderAdder returns next unchanged when maxAge is under a second.
func NewCacheHeaderAdder(next http.Handler, maxAge time.Duration, private bool) http.Handler {
	seconds := int(maxAge.Seconds())
	if seconds <= 0 {
		return next
	}
	scope := "public"
	if private {
		scope = "private"
	}
	return &CacheHeaderAdder{next: next, header: fmt.Sprintf("%s, max-age=%d", scope, seconds)}
}

func (ch *CacheHeaderAdder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		ch.next.ServeHTTP(w, r)
		return
	}
	ch.next.ServeHTTP(&cacheOnOK{ResponseWriter: w, header: ch.header}, r)
}

// cacheOnOK sets Cache-Control only if the response turns out to be a 200.
type cacheOnOK struct {
	http.ResponseWriter
	header string
	wrote  bool
}

func (c *cacheOnOK) WriteHeader(statusCode int) {
	if !c.wrote {
		c.wrote = true
		if statusCode == http.StatusOK {
			c.Header().Set("Cache-Control", c.header)
		} else {
			c.Header().Set("Cache-Control", "no-store")
		}
	}
	c.ResponseWriter.WriteHeader(statusCode)
}

func (c *cacheOnOK) Write(b []byte) (int, error) {
	if !c.wrote {
		c.WriteHeader(http.StatusOK)
	}
	return c.ResponseWriter.Write(b)
}

func (c *cacheOnOK) Unwrap() http.ResponseWriter {
	return c.ResponseWriter
}
