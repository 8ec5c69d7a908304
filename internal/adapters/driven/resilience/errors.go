// Package resilience bounds upstream calls: status mapping, rate limiting,
// per-attempt timeouts and bounded retries with backoff.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// maxErrorBody bounds how much of an error body is kept in messages.
const maxErrorBody = 200

// StatusError maps a non-2xx HTTP response to a domain sentinel.
// 429 is rate limited, 408/504 time out, other 5xx are unavailable.
// Remaining 4xx are permanent and wrap nothing retryable.
func StatusError(provider string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}

	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%s: status %d: %s: %w", provider, status, msg, domain.ErrRateLimited)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return fmt.Errorf("%s: status %d: %w", provider, status, domain.ErrTimeout)
	case status >= 500:
		return fmt.Errorf("%s: status %d: %s: %w", provider, status, msg, domain.ErrUpstreamUnavailable)
	default:
		return fmt.Errorf("%s: status %d: %s", provider, status, msg)
	}
}

// TransportError maps a failed round trip to a domain sentinel.
// Caller cancellation is returned unchanged.
func TransportError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", provider, domain.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %w: %w", provider, domain.ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %w", provider, domain.ErrUpstreamUnavailable, err)
}

// RetryAfter parses a Retry-After header given in seconds.
// Zero means the header was absent or unparseable.
func RetryAfter(h http.Header) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
