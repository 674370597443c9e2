package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 2*time.Millisecond)}, opts...)
	client, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return client
}

type testLogger struct {
	lastMsg string
	count   int32
}

func (l *testLogger) Debugf(format string, args ...interface{}) { l.log(format, args...) }
func (l *testLogger) Infof(format string, args ...interface{})  { l.log(format, args...) }
func (l *testLogger) Errorf(format string, args ...interface{}) { l.log(format, args...) }
func (l *testLogger) log(format string, args ...interface{}) {
	atomic.AddInt32(&l.count, 1)
	l.lastMsg = fmt.Sprintf(format, args...)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"valid http", "http://localhost:8000", false},
		{"valid https with slash", "https://api.example.com/", false},
		{"empty", "", true},
		{"bad scheme", "ftp://example.com", true},
		{"unparseable", "http://[::1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.baseURL)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.NotContains(t, c.baseURL[len(c.baseURL)-1:], "/")
		})
	}
}

func TestClient_SubClientsAreSingletons(t *testing.T) {
	c, err := NewClient("http://localhost:8000")
	require.NoError(t, err)

	assert.Same(t, c.Risk(), c.Risk())
	assert.Same(t, c.Text(), c.Text())
	assert.Same(t, c.Graph(), c.Graph())
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(w, http.StatusOK, MessageResponse{Message: "hi"})
	}, WithUserAgent("ecoexpand-cli/test"))

	msg, err := c.Welcome(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "hi", msg)
	assert.Equal(t, "ecoexpand-cli/test", got.Get("User-Agent"))
	assert.Len(t, got.Get("X-Request-ID"), 36)
	assert.Empty(t, got.Get("Content-Type"))
}

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "COMMON_005", "detail": "No data available for Atlantis"})
	})

	_, err := c.Risk().Analyze(context.Background(), "Atlantis")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsNotFound())
	assert.False(t, apiErr.IsServerError())
	assert.Equal(t, "COMMON_005", apiErr.Code)
	assert.Equal(t, "No data available for Atlantis", apiErr.Detail)
	assert.Contains(t, apiErr.Error(), "HTTP 404")
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "plain failure")
	})

	_, err := c.Risk().Countries(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsBadRequest())
	assert.Equal(t, "plain failure", apiErr.Detail)
}

func TestClient_RetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		method    func(c *Client) error
		status    int
		wantCalls int32
	}{
		{
			name:      "GET retries 500",
			method:    func(c *Client) error { _, err := c.Risk().Countries(context.Background()); return err },
			status:    http.StatusInternalServerError,
			wantCalls: 3,
		},
		{
			name:      "POST does not retry 502",
			method:    func(c *Client) error { _, err := c.Text().Chat(context.Background(), "q", ""); return err },
			status:    http.StatusBadGateway,
			wantCalls: 1,
		},
		{
			name:      "POST retries 503",
			method:    func(c *Client) error { _, err := c.Risk().Analyze(context.Background(), "India"); return err },
			status:    http.StatusServiceUnavailable,
			wantCalls: 3,
		},
		{
			name:      "GET does not retry 404",
			method:    func(c *Client) error { _, err := c.Graph().Get(context.Background()); return err },
			status:    http.StatusNotFound,
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				writeJSON(w, tt.status, map[string]string{"code": "X", "detail": "nope"})
			})

			err := tt.method(c)

			require.Error(t, err)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestClient_RetryThenSuccess(t *testing.T) {
	var calls int32
	logger := &testLogger{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"countries": {"India"}})
	}, WithLogger(logger))

	countries, err := c.Risk().Countries(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"India"}, countries)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Greater(t, atomic.LoadInt32(&logger.count), int32(0))
}

func TestClient_ContextCancelledDuringBackoff(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithRetryWait(time.Second, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Risk().Countries(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCalculateBackoff(t *testing.T) {
	c, err := NewClient("http://localhost", WithRetryWait(100*time.Millisecond, 300*time.Millisecond))
	require.NoError(t, err)

	b1 := c.calculateBackoff(1)
	assert.GreaterOrEqual(t, b1, 100*time.Millisecond)
	assert.Less(t, b1, 125*time.Millisecond)

	b5 := c.calculateBackoff(5)
	assert.GreaterOrEqual(t, b5, 300*time.Millisecond)
	assert.Less(t, b5, 375*time.Millisecond)
}
