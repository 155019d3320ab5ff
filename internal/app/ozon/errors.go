package ozon

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a 404 from the seller API. For timeslot lookups this
// usually means the draft expired server-side and must be recreated.
var ErrNotFound = errors.New("seller api: not found")

// ErrInProgress marks an operation that is still being calculated and should
// simply be polled again.
var ErrInProgress = errors.New("seller api: operation in progress")

// RateLimitError is a 429 with the cooldown the server asked for.
type RateLimitError struct {
	Wait      int // seconds, already clamped
	PerSecond bool
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("seller api: rate limited, retry in %ds", e.Wait)
}

// ServerError is a retryable failure: 5xx, network trouble or a hard timeout.
type ServerError struct {
	Status int
	Err    error
}

func (e *ServerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("seller api: server error (status=%d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("seller api: server error (status=%d)", e.Status)
}

func (e *ServerError) Unwrap() error { return e.Err }

// APIError is a non-retryable seller-API rejection. The raw body is kept so
// the operator sees exactly what the API said.
type APIError struct {
	Status int
	Op     string
	Body   string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300]
	}
	return fmt.Sprintf("seller api: %s failed (status=%d): %s", e.Op, e.Status, body)
}

// RateLimitWait extracts the cooldown from a rate-limit error.
func RateLimitWait(err error) (int, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.Wait, true
	}
	return 0, false
}

// IsNotFound reports whether the error is the 404 classification.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInProgress reports whether the operation should be polled again.
func IsInProgress(err error) bool {
	return errors.Is(err, ErrInProgress)
}

// IsRetryable reports whether the error is transient on the server side.
func IsRetryable(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}
