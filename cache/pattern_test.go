package cache_test

import (
	"testing"

	"github.com/fwojciec/artex/cache"
	"github.com/stretchr/testify/assert"
)

func TestURLPattern(t *testing.T) {
	t.Parallel()

	t.Run("numeric segments generalize", func(t *testing.T) {
		t.Parallel()

		a := cache.URLPattern("https://news.example/a/123456/")
		b := cache.URLPattern("https://news.example/a/789012/")

		assert.Equal(t, "news.example/a/*/", a)
		assert.Equal(t, a, b)
	})

	t.Run("date segments generalize", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "news.example/*/story", cache.URLPattern("https://news.example/2026-10-14/story"))
		assert.Equal(t, "news.example/*/*/*/story", cache.URLPattern("https://news.example/2026/10/14/story"))
	})

	t.Run("hex and uuid segments generalize", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "news.example/a/*", cache.URLPattern("https://news.example/a/5f3a9c1e7b"))
		assert.Equal(t, "news.example/a/*", cache.URLPattern("https://news.example/a/0b7c2d9e-1f3a-4b5c-8d6e-7f8091a2b3c4"))
	})

	t.Run("word segments are kept", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "news.example/sport/deadbeef", cache.URLPattern("https://news.example/sport/deadbeef"))
		assert.Equal(t, "news.example/a/storm-hits-coast", cache.URLPattern("https://news.example/a/storm-hits-coast"))
	})

	t.Run("normalizes host and drops query", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "news.example/a/*", cache.URLPattern("https://WWW.News.Example:8080/a/42?utm=x#top"))
		assert.Equal(t, "news.example/", cache.URLPattern("https://news.example"))
	})

	t.Run("returns unparsable input unchanged", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "not a url", cache.URLPattern("not a url"))
	})
}

func TestDomainPattern(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "news.example/*", cache.DomainPattern("www.news.example"))
	assert.Equal(t, cache.DomainPattern("news.example"), cache.URLPattern("https://news.example/123"))
}
