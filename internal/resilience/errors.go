package resilience

import (
	"errors"
	"net/http"
	"strings"
)

// RateLimitError wraps an error that represents an upstream rate-limit
// rejection (HTTP 429) and is therefore safe to retry with backoff.
type RateLimitError struct {
	Err        error
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return e.Err.Error()
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError wraps an error as a rate-limit rejection.
func NewRateLimitError(err error, statusCode int) *RateLimitError {
	return &RateLimitError{Err: err, StatusCode: statusCode}
}

// statusCoder is implemented by transport errors that carry an HTTP status.
type statusCoder interface {
	HTTPStatus() int
}

// IsRateLimited reports whether the error chain signals an HTTP 429, either
// through an explicit RateLimitError, an error carrying the status code, or
// a rate-limit-shaped message. Everything else — including network timeouts —
// is not retryable.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus() == http.StatusTooManyRequests
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{"429", "rate limit", "too many requests"} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
