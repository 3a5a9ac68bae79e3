package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(HTTPOptions{RatePerHost: 1000})
}

func TestFetchText_SendsBrowserHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, DefaultAccept, r.Header.Get("Accept"))
		w.Write([]byte("<html>hello</html>")) //nolint:errcheck
	}))
	defer srv.Close()

	page, err := newTestFetcher().FetchText(context.Background(), srv.URL+"/listing", time.Second)
	require.NoError(t, err)
	assert.True(t, page.OK())
	assert.Equal(t, http.StatusOK, page.Status)
	assert.Equal(t, "<html>hello</html>", page.Body)
}

func TestFetchText_CustomUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "seed-test", r.Header.Get("User-Agent"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{UserAgent: "seed-test", RatePerHost: 1000})
	_, err := f.FetchText(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
}

func TestFetchText_NonSuccessStatusIsAPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	page, err := newTestFetcher().FetchText(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	assert.False(t, page.OK())
	assert.Equal(t, http.StatusNotFound, page.Status)
}

func TestFetchText_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newTestFetcher().FetchText(context.Background(), srv.URL, 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
}

func TestFetchText_ParentCancelIsNotTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher().FetchText(ctx, srv.URL, time.Second)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetchText_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := newTestFetcher().FetchText(context.Background(), addr, time.Second)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestFetchText_BodyCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 4096))) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxBodyBytes: 100, RatePerHost: 1000})
	page, err := f.FetchText(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	assert.Len(t, page.Body, 100)
}

func TestFetchText_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("moved")) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page, err := newTestFetcher().FetchText(context.Background(), srv.URL+"/old", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "moved", page.Body)
	assert.True(t, strings.HasSuffix(page.URL, "/new"))
}

func TestFetchText_429SlowsHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := newTestFetcher()
	page, err := f.FetchText(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, page.Status)

	host := strings.TrimPrefix(srv.URL, "http://")
	assert.Equal(t, rate.Limit(500), f.LimiterFor(host).Limit())
}

func TestFetchText_InvalidURL(t *testing.T) {
	_, err := newTestFetcher().FetchText(context.Background(), "http://[::1", time.Second)
	require.Error(t, err)
}

func TestLimiterFor_SharedPerHost(t *testing.T) {
	f := newTestFetcher()
	assert.Same(t, f.LimiterFor("Example.com"), f.LimiterFor("example.com"))
	assert.NotSame(t, f.LimiterFor("a.com"), f.LimiterFor("b.com"))
}

func TestAdaptiveLimiter_Bounds(t *testing.T) {
	lim := NewAdaptiveLimiter(10, 1)
	for range 10 {
		lim.OnSuccess()
	}
	assert.Equal(t, rate.Limit(20), lim.Limit())

	for range 10 {
		lim.OnRateLimit()
	}
	assert.Equal(t, rate.Limit(2.5), lim.Limit())
}
