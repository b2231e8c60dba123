// Package he carries HTTP status codes along with errors.
package he

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
)

// HTTPError is an error that knows what status the client should see.
type HTTPError struct {
	code int
	err  error
}

func HTTPCodedErrorf(code int, f string, more ...any) *HTTPError {
	return &HTTPError{
		code: code,
		err:  fmt.Errorf(f, more...),
	}
}

func New(code int, err error) *HTTPError {
	return &HTTPError{
		code: code,
		err:  err,
	}
}

func (e *HTTPError) Error() string {
	return e.err.Error()
}

func (e *HTTPError) Unwrap() error {
	return e.err
}

func (e *HTTPError) Code() int {
	return e.code
}

// Code finds the status for err: the code of the first HTTPError in its
// chain, or 500.
func Code(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.code
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// SendErrorToHTTPClient sends err as a JSON error.  If it happens to be an
// HTTPError, the client gets its code; otherwise the client gets 500 and
// it's on us.
func SendErrorToHTTPClient(w http.ResponseWriter, while string, err error) {
	code := Code(err)
	txt := fmt.Sprintf("can't %s: %v", while, err)
	if code >= 500 {
		log.Println(txt)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(errorBody{Error: txt, Status: code}); err != nil {
		log.Printf("can't send error to client: %v", err)
	}
}
