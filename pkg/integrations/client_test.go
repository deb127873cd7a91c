package integrations

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

	"github.com/depexplain/depexplain/pkg/cache"
)

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token abc", r.Header.Get("Authorization"))
		w.Write([]byte(`{"name":"torch"}`))
	}))
	defer srv.Close()

	c := NewClient(cache.NewNullCache(), nil, "test", time.Hour, map[string]string{"Authorization": "token abc"})

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.Get(context.Background(), srv.URL, &out))
	assert.Equal(t, "torch", out.Name)
}

func TestClientPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`[{"generated_text":"ok"}]`))
	}))
	defer srv.Close()

	c := NewClient(cache.NewNullCache(), nil, "test", time.Hour, nil)

	var out []struct {
		GeneratedText string `json:"generated_text"`
	}
	payload := map[string]string{"inputs": "prompt"}
	require.NoError(t, c.PostJSON(context.Background(), srv.URL, payload, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "ok", out[0].GeneratedText)
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		status    int
		wantErr   error
		retryable bool
	}{
		{http.StatusNotFound, ErrNotFound, false},
		{http.StatusUnauthorized, ErrUnauthorized, false},
		{http.StatusForbidden, ErrUnauthorized, false},
		{http.StatusBadRequest, ErrNetwork, false},
	}

	for _, tt := range tests {
		err := checkStatus(tt.status)
		assert.ErrorIs(t, err, tt.wantErr, "status %d", tt.status)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(cache.NewNullCache(), nil, "test", time.Hour, nil)
	c.http = srv.Client()

	var out struct {
		OK bool `json:"ok"`
	}
	err := c.Cached(context.Background(), "key", false, &out, func() error {
		return c.Get(context.Background(), srv.URL, &out)
	})
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientCachedSkipsFetchOnHit(t *testing.T) {
	ctx := context.Background()
	backend, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	c := NewClient(backend, nil, "test", time.Hour, nil)

	fetches := 0
	var out string
	fetch := func() error {
		fetches++
		out = "generated"
		return nil
	}

	require.NoError(t, c.Cached(ctx, "key", false, &out, fetch))
	out = ""
	require.NoError(t, c.Cached(ctx, "key", false, &out, fetch))

	assert.Equal(t, 1, fetches, "second call should be served from cache")
	assert.Equal(t, "generated", out)
}

func TestClientCachedRefreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	backend, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	c := NewClient(backend, nil, "test", time.Hour, nil)

	fetches := 0
	var out string
	fetch := func() error {
		fetches++
		out = "generated"
		return nil
	}

	require.NoError(t, c.Cached(ctx, "key", false, &out, fetch))
	require.NoError(t, c.Cached(ctx, "key", true, &out, fetch))
	assert.Equal(t, 2, fetches)
}

func TestClientCachedPropagatesFetchError(t *testing.T) {
	c := NewClient(cache.NewNullCache(), nil, "test", time.Hour, nil)

	boom := errors.New("boom")
	var out string
	err := c.Cached(context.Background(), "key", false, &out, func() error { return boom })
	assert.ErrorIs(t, err, boom)
}
