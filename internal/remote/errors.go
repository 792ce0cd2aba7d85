package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse marks a response body that is not the expected JSON
var ErrMalformedResponse = errors.New("malformed response")

// Error is a failed call to a remote service: a transport fault, a non-2xx
// status or a body that could not be decoded.
type Error struct {
	Service    string
	Method     string
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s %s (status %d): %v", e.Service, e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", e.Service, e.Method, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a remote 404
func IsNotFound(err error) bool {
	var remoteErr *Error
	return errors.As(err, &remoteErr) && remoteErr.StatusCode == http.StatusNotFound
}
