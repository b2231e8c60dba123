package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/ts4z/shortlist/permission"
)

type Clock interface {
	Now() time.Time
}

// RequestLogger writes one access log line per request.  It goes inside
// HeaderToContext so it can name the user.
type RequestLogger struct {
	next  http.Handler
	clock Clock
}

func NewRequestLogger(next http.Handler, clock Clock) *RequestLogger {
	return &RequestLogger{next: next, clock: clock}
}

func remoteAddr(r *http.Request) string {
	if r.Header.Get("X-Forwarded-For") != "" {
		return r.Header.Get("X-Forwarded-For")
	}
	return r.RemoteAddr
}

func (rl *RequestLogger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := rl.clock.Now()
	sr := &statusRecorder{ResponseWriter: w}
	rl.next.ServeHTTP(sr, r)

	who := "-"
	if id := permission.IdentityFromContext(r.Context()); id != nil {
		who = string(id.User)
	}
	log.Printf("[access log] %d %s %s %s %s (%v)", sr.Code(), remoteAddr(r), who, r.Method, r.URL.Path, rl.clock.Now().Sub(start))
}

// statusRecorder captures the status code for logging.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(statusCode int) {
	if sr.code == 0 {
		sr.code = statusCode
	}
	sr.ResponseWriter.WriteHeader(statusCode)
}

func (sr *statusRecorder) Code() int {
	if sr.code == 0 {
		return http.StatusOK
	}
	return sr.code
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}
