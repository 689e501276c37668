package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/artex"
	artexhttp "github.com/fwojciec/artex/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	t.Run("returns a queryable page", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body><h1>Hello World</h1></body></html>"))
		}))
		defer server.Close()

		loader := artexhttp.NewLoader()
		defer loader.Close()

		page, err := loader.Load(context.Background(), server.URL)
		require.NoError(t, err)
		defer page.Close()

		elems, err := page.QueryAll(context.Background(), "h1")
		require.NoError(t, err)
		require.Len(t, elems, 1)
		text, err := elems[0].Text(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Hello World", text)
	})

	t.Run("sends the user agent", func(t *testing.T) {
		t.Parallel()

		got := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got <- r.UserAgent()
			_, _ = w.Write([]byte("<html></html>"))
		}))
		defer server.Close()

		loader := artexhttp.NewLoader(artexhttp.WithUserAgent("test-agent"))

		_, err := loader.Load(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "test-agent", <-got)
	})

	t.Run("reports the final URL after redirects", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new/42", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/new/42", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html></html>"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		page, err := artexhttp.NewLoader().Load(context.Background(), server.URL+"/old")
		require.NoError(t, err)
		assert.Equal(t, server.URL+"/new/42", page.URL())
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		loader := artexhttp.NewLoader(artexhttp.WithTimeout(10 * time.Millisecond))

		_, err := loader.Load(context.Background(), server.URL)
		require.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := artexhttp.NewLoader().Load(ctx, server.URL)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("maps 404 to not found", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := artexhttp.NewLoader().Load(context.Background(), server.URL)
		require.Error(t, err)
		assert.Equal(t, artex.ENOTFOUND, artex.ErrorCode(err))
	})

	t.Run("returns error for other non-200 status codes", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := artexhttp.NewLoader().Load(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("rejects malformed URLs", func(t *testing.T) {
		t.Parallel()

		_, err := artexhttp.NewLoader().Load(context.Background(), "http://[::1")
		require.Error(t, err)
		assert.Equal(t, artex.EINVALID, artex.ErrorCode(err))
	})
}
