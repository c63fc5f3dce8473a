package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	outcomes []string
}

func (r *recordingObserver) FetchAttempt(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

func newTestClient(maxRetries int, opts ...Option) (*Client, *[]time.Duration) {
	var sleeps []time.Duration
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	base := []Option{
		WithSleep(func(ctx context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return ctx.Err()
		}),
		WithRand(func() float64 { return 0.5 }),
	}

	c := New(Config{
		BaseDelay:  100 * time.Millisecond,
		MaxRetries: maxRetries,
		JitterMin:  0.7,
		JitterMax:  1.3,
		Timeout:    5 * time.Second,
		UserAgent:  "test-agent",
	}, logger, append(base, opts...)...)

	return c, &sleeps
}

func TestDo_RetriesServerErrorsThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c, sleeps := newTestClient(3, WithObserver(obs))

	resp, err := c.Do(context.Background(), Request{URL: srv.URL, Structured: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *sleeps)
	assert.Equal(t, []string{"transient", "transient", "ok"}, obs.outcomes)
}

func TestDo_ExhaustedWrapsLastError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := newTestClient(2)

	_, err := c.Do(context.Background(), Request{URL: srv.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, ErrTransient)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDo_NonRetryableStatuses(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrBlocked},
		{http.StatusForbidden, ErrBlocked},
		{http.StatusTooManyRequests, ErrBlocked},
		{http.StatusNotFound, ErrStatus},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c, sleeps := newTestClient(3)

			_, err := c.Do(context.Background(), Request{URL: srv.URL})
			assert.ErrorIs(t, err, tt.want)
			assert.NotErrorIs(t, err, ErrExhausted)
			assert.Equal(t, int32(1), calls.Load())
			assert.Empty(t, *sleeps)
		})
	}
}

func TestDo_StructuredHTMLIsBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<!DOCTYPE html><html><body>captcha</body></html>"))
	}))
	defer srv.Close()

	c, _ := newTestClient(3)

	_, err := c.Do(context.Background(), Request{URL: srv.URL, Structured: true})
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestDo_StructuredInvalidJSONIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"truncated":`))
	}))
	defer srv.Close()

	c, _ := newTestClient(2)

	_, err := c.Do(context.Background(), Request{URL: srv.URL, Structured: true})
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDo_SendsParamsAndHeaders(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, _ := newTestClient(1)

	header := http.Header{}
	header.Set("Authorization", "Bearer token")

	_, err := c.Do(context.Background(), Request{
		URL:        srv.URL + "/vacancies?page=0",
		Params:     url.Values{"text": {"стажировка go"}},
		Header:     header,
		Structured: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "/vacancies", got.URL.Path)
	assert.Equal(t, "0", got.URL.Query().Get("page"))
	assert.Equal(t, "стажировка go", got.URL.Query().Get("text"))
	assert.Equal(t, "Bearer token", got.Header.Get("Authorization"))
	assert.Equal(t, "test-agent", got.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"found": 3}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(1)

	var out struct {
		Found int `json:"found"`
	}
	require.NoError(t, c.GetJSON(context.Background(), Request{URL: srv.URL}, &out))
	assert.Equal(t, 3, out.Found)
}

func TestRetry_OnlyTransientErrorsRetried(t *testing.T) {
	c, sleeps := newTestClient(3)

	calls := 0
	err := c.Retry(context.Background(), "llm", func(ctx context.Context) error {
		calls++
		return ErrBlocked
	})
	assert.ErrorIs(t, err, ErrBlocked)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *sleeps)

	calls = 0
	err = c.Retry(context.Background(), "llm", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return ErrTransient
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnCancelledContext(t *testing.T) {
	c, _ := newTestClient(5)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := c.Retry(ctx, "op", func(ctx context.Context) error {
		calls++
		cancel()
		return ErrTransient
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoff(t *testing.T) {
	c, _ := newTestClient(3, WithRand(func() float64 { return 0 }))
	assert.Equal(t, 70*time.Millisecond, c.Backoff(1))
	assert.Equal(t, 280*time.Millisecond, c.Backoff(3))

	c, _ = newTestClient(3, WithRand(func() float64 { return 1 }))
	assert.Equal(t, 130*time.Millisecond, c.Backoff(1))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(http.StatusOK))
	assert.NoError(t, Classify(http.StatusNoContent))
	assert.ErrorIs(t, Classify(http.StatusInternalServerError), ErrTransient)
	assert.ErrorIs(t, Classify(http.StatusGone), ErrStatus)
}
