// Package webclient provides the shared outbound HTTP plumbing: a client
// constructor with sane timeouts and a bounded retry loop for idempotent
// calls.
package webclient

import (
	"context"
	"net/http"
	"time"
)

const maxBackoff = 30 * time.Second

// NewDefault returns an HTTP client with sane timeouts.
func NewDefault(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// AttemptFunc performs one request attempt and reports its outcome.
type AttemptFunc func() (status int, body []byte, err error)

// DoWithRetry retries the attempt on transport errors, 429 and 5xx
// responses, doubling the delay between attempts up to a cap. Only use it
// for calls that are safe to repeat; mutations go out exactly once.
func DoWithRetry(ctx context.Context, attempts int, initialDelay time.Duration, fn AttemptFunc) (int, []byte, error) {
	if attempts <= 0 {
		attempts = 1
	}
	delay := initialDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	var (
		status int
		body   []byte
		err    error
	)
	for i := 0; i < attempts; i++ {
		status, body, err = fn()
		if err == nil && status != http.StatusTooManyRequests && status < 500 {
			return status, body, nil
		}
		if i == attempts-1 {
			break
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return status, body, ctx.Err()
		case <-t.C:
		}
		if delay < maxBackoff {
			delay *= 2
		}
	}
	return status, body, err
}
