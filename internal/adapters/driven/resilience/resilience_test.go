package resilience

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

func fastPolicy(retries int) Policy {
	return Policy{MaxRetries: retries, RetryDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status    int
		sentinel  error
		retryable bool
	}{
		{http.StatusTooManyRequests, domain.ErrRateLimited, true},
		{http.StatusGatewayTimeout, domain.ErrTimeout, true},
		{http.StatusRequestTimeout, domain.ErrTimeout, true},
		{http.StatusInternalServerError, domain.ErrUpstreamUnavailable, true},
		{http.StatusBadGateway, domain.ErrUpstreamUnavailable, true},
		{http.StatusServiceUnavailable, domain.ErrUpstreamUnavailable, true},
		{http.StatusUnauthorized, nil, false},
		{http.StatusBadRequest, nil, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := StatusError("openai", tt.status, []byte(`{"error":"x"}`))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "openai")
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
			assert.Equal(t, tt.retryable, domain.IsRetryable(err))
		})
	}
}

func TestStatusError_TruncatesBody(t *testing.T) {
	body := make([]byte, 1000)
	for i := range body {
		body[i] = 'a'
	}
	err := StatusError("ollama", 500, body)
	assert.Less(t, len(err.Error()), 300)
}

func TestTransportError(t *testing.T) {
	assert.NoError(t, TransportError("x", nil))
	assert.ErrorIs(t, TransportError("x", context.Canceled), context.Canceled)
	assert.False(t, domain.IsRetryable(TransportError("x", context.Canceled)))
	assert.ErrorIs(t, TransportError("x", context.DeadlineExceeded), domain.ErrTimeout)
	assert.ErrorIs(t, TransportError("x", errors.New("connection refused")), domain.ErrUpstreamUnavailable)
}

func TestRetryAfter(t *testing.T) {
	h := http.Header{}
	assert.Zero(t, RetryAfter(h))
	h.Set("Retry-After", "7")
	assert.Equal(t, 7*time.Second, RetryAfter(h))
	h.Set("Retry-After", "Wed, 21 Oct 2015 07:28:00 GMT")
	assert.Zero(t, RetryAfter(h))
}

func TestDo_RetriesTransientFailures(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastPolicy(3), "test", func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, domain.ErrUpstreamUnavailable
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUp(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastPolicy(2), "test", func(context.Context) (int, error) {
		calls++
		return 0, domain.ErrRateLimited
	})
	require.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "gave up after 3 attempts")
}

func TestDo_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastPolicy(5), "test", func(context.Context) (int, error) {
		calls++
		return 0, domain.ErrNoChartData
	})
	require.ErrorIs(t, err, domain.ErrNoChartData)
	assert.Equal(t, 1, calls)
}

func TestDo_AttemptTimeout(t *testing.T) {
	p := fastPolicy(1)
	p.Timeout = 5 * time.Millisecond
	calls := 0
	_, err := Do(context.Background(), p, "test", func(ctx context.Context) (int, error) {
		calls++
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, 2, calls)
}

func TestDo_CallerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, fastPolicy(5), "test", func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, domain.ErrUpstreamUnavailable
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicy_Backoff(t *testing.T) {
	p := Policy{RetryDelay: time.Second, MaxDelay: 5 * time.Second}
	assert.Equal(t, time.Second, p.backoff(1))
	assert.Equal(t, 2*time.Second, p.backoff(2))
	assert.Equal(t, 4*time.Second, p.backoff(3))
	assert.Equal(t, 5*time.Second, p.backoff(4))
	assert.Equal(t, 5*time.Second, p.backoff(10))
}

func TestPolicyFrom(t *testing.T) {
	p := PolicyFrom(domain.DefaultAppSettings().Upstream)
	assert.Equal(t, 30*time.Second, p.Timeout)
	assert.Equal(t, 3, p.MaxRetries)
}

func TestLimiter(t *testing.T) {
	var nilLimiter *Limiter
	assert.NoError(t, nilLimiter.Wait(context.Background()))
	nilLimiter.Backoff(time.Hour)
	assert.Nil(t, NewLimiter(0))

	l := NewLimiter(1000)
	require.NotNil(t, l)
	assert.NoError(t, l.Wait(context.Background()))

	l.Backoff(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
}

type countingRenderer struct {
	calls int
	err   error
}

func (c *countingRenderer) Render(context.Context, domain.ChartRequest) (domain.ChartResult, error) {
	c.calls++
	return domain.ChartResult{}, c.err
}

func TestWrapRenderer(t *testing.T) {
	assert.Nil(t, WrapRenderer(nil, fastPolicy(1)))

	inner := &countingRenderer{err: domain.ErrUpstreamUnavailable}
	_, err := WrapRenderer(inner, fastPolicy(2)).Render(context.Background(), domain.ChartRequest{})
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Equal(t, 3, inner.calls)

	inner = &countingRenderer{err: domain.ErrNoChartData}
	_, err = WrapRenderer(inner, fastPolicy(2)).Render(context.Background(), domain.ChartRequest{})
	require.ErrorIs(t, err, domain.ErrNoChartData)
	assert.Equal(t, 1, inner.calls)
}
