package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"advisor-routing/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func newZipServer(t *testing.T, calls *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		switch r.URL.Path {
		case "/99502":
			_, _ = w.Write([]byte(`{"post code":"99502","places":[{"place name":"Anchorage","state":"Alaska","state abbreviation":"AK"}]}`))
		case "/00000":
			_, _ = w.Write([]byte(`{"places":[]}`))
		case "/50000":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestZipLookup_StateForZip(t *testing.T) {
	var calls int32
	srv := newZipServer(t, &calls)
	defer srv.Close()

	mr, client := setupRedis(t)
	z := NewZipLookup(srv.URL, time.Second, client, time.Hour, logger.NewTestLogger(t))

	state, err := z.StateForZip(context.Background(), " 99502-1234 ")
	require.NoError(t, err)
	assert.Equal(t, "AK", state)

	cached, err := mr.Get("zip:state:99502")
	require.NoError(t, err)
	assert.Equal(t, "AK", cached)

	state, err = z.StateForZip(context.Background(), "99502")
	require.NoError(t, err)
	assert.Equal(t, "AK", state)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second lookup served from cache")
}

func TestZipLookup_Failures(t *testing.T) {
	var calls int32
	srv := newZipServer(t, &calls)
	defer srv.Close()

	z := NewZipLookup(srv.URL, time.Second, nil, 0, logger.NewTestLogger(t))

	tests := []struct {
		name    string
		zip     string
		unknown bool
	}{
		{name: "blank", zip: "  ", unknown: true},
		{name: "not found", zip: "12345", unknown: true},
		{name: "no places", zip: "00000", unknown: true},
		{name: "server error", zip: "50000", unknown: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := z.StateForZip(context.Background(), tt.zip)
			require.Error(t, err)
			assert.Empty(t, state)
			assert.Equal(t, tt.unknown, errors.Is(err, ErrUnknownZip))
		})
	}
}

func TestZipLookup_CacheUnavailable(t *testing.T) {
	var calls int32
	srv := newZipServer(t, &calls)
	defer srv.Close()

	mr, client := setupRedis(t)
	mr.Close()

	z := NewZipLookup(srv.URL, time.Second, client, time.Hour, logger.NewTestLogger(t))

	state, err := z.StateForZip(context.Background(), "99502")
	require.NoError(t, err)
	assert.Equal(t, "AK", state)
}
