package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-risk-agent/internal/domain"
)

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Bonk","decimals":5}`))
	}))
	defer server.Close()

	c := NewClient()
	var out struct {
		Name     string `json:"name"`
		Decimals int    `json:"decimals"`
	}
	err := c.GetJSON(context.Background(), "test", server.URL, http.Header{"X-Test": {"yes"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Bonk", out.Name)
	assert.Equal(t, 5, out.Decimals)
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "not found", status: http.StatusNotFound, body: `{}`, want: domain.ErrNotFound},
		{name: "bad gateway", status: http.StatusBadGateway, body: `oops`, want: domain.ErrNetwork},
		{name: "forbidden", status: http.StatusForbidden, body: `nope`, want: domain.ErrNetwork},
		{name: "malformed", status: http.StatusOK, body: `<html>`, want: domain.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			var out map[string]any
			err := NewClient(WithBreaker(0, 0)).GetJSON(context.Background(), "test", server.URL, nil, &out)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	c := NewClient(WithTimeout(20 * time.Millisecond))
	_, err := c.Get(context.Background(), "slow", server.URL, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Contains(t, err.Error(), "timed out")
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(WithBreaker(2, time.Minute))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := c.Get(ctx, "flaky", server.URL, nil)
		assert.ErrorIs(t, err, domain.ErrNetwork)
	}

	assert.Equal(t, int32(2), hits.Load(), "breaker should stop calls after tripping")

	// Other sources keep their own breaker.
	_, err := c.Get(ctx, "other", server.URL, nil)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(WithBreaker(1, time.Minute))
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), "certik", server.URL, nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
	assert.Equal(t, int32(3), hits.Load())
}
