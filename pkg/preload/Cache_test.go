package preload

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(fetcher Fetcher) *Cache {
	return NewCache(CacheConfig{
		Fetcher: fetcher,
		Metrics: NewMetrics(nil),
	})
}

func ensureAndWait(t *testing.T, cache *Cache, url string, isThumbnail bool) {
	t.Helper()

	done := make(chan struct{})
	cache.Ensure(url, isThumbnail, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", url)
	}
}

func TestEnsureCachesImageAndServesRepeatsWithoutFetching(t *testing.T) {
	fetcher := newFakeFetcher()
	cache := newTestCache(fetcher)
	defer cache.Close()

	ensureAndWait(t, cache, "https://example.com/a.png", false)

	record, ok := cache.Get("https://example.com/a.png")
	require.True(t, ok)
	assert.Equal(t, 40, record.Width)
	assert.Equal(t, 30, record.Height)
	assert.False(t, record.IsThumbnail)
	assert.Equal(t, "image/png", record.ContentType)

	called := false
	cache.Ensure("https://example.com/a.png", false, func() { called = true })

	assert.True(t, called, "a cached url should notify on the calling goroutine")
	assert.Equal(t, 1, fetcher.CallCount("https://example.com/a.png"))
}

func TestEnsureFailureIsNotCachedAndStillNotifies(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.fail("https://example.com/broken.png")

	cache := newTestCache(fetcher)
	defer cache.Close()

	ensureAndWait(t, cache, "https://example.com/broken.png", false)

	_, ok := cache.Get("https://example.com/broken.png")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestEnsureUndecodableBodyIsNotCached(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.bodies["https://example.com/page.html"] = []byte("<html>not an image</html>")

	cache := newTestCache(fetcher)
	defer cache.Close()

	ensureAndWait(t, cache, "https://example.com/page.html", false)

	_, ok := cache.Get("https://example.com/page.html")
	assert.False(t, ok)
}

func TestEnsureDefaultsZeroDimensions(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.bodies["https://example.com/empty.gif"] = []byte("GIF89a\x00\x00\x00\x00\x00\x00\x00")

	cache := newTestCache(fetcher)
	defer cache.Close()

	ensureAndWait(t, cache, "https://example.com/empty.gif", true)

	record, ok := cache.Get("https://example.com/empty.gif")
	require.True(t, ok)
	assert.Equal(t, DefaultImageWidth, record.Width)
	assert.Equal(t, DefaultImageHeight, record.Height)
	assert.True(t, record.IsThumbnail)
}

func TestEnsureSharesConcurrentFetches(t *testing.T) {
	fetcher := newFakeFetcher()
	gate := fetcher.gate("https://example.com/slow.png")

	cache := newTestCache(fetcher)
	defer cache.Close()

	var wg sync.WaitGroup
	wg.Add(2)

	cache.Ensure("https://example.com/slow.png", false, wg.Done)
	cache.Ensure("https://example.com/slow.png", false, wg.Done)

	require.Eventually(t, func() bool {
		return fetcher.CallCount("https://example.com/slow.png") == 1
	}, time.Second, 5*time.Millisecond)

	close(gate)
	wg.Wait()

	_, ok := cache.Get("https://example.com/slow.png")
	assert.True(t, ok)
	assert.Equal(t, 1, fetcher.CallCount("https://example.com/slow.png"))
}

func TestEnsureAcceptsNilCallback(t *testing.T) {
	fetcher := newFakeFetcher()
	cache := newTestCache(fetcher)
	defer cache.Close()

	cache.Ensure("https://example.com/a.png", true, nil)

	require.Eventually(t, func() bool {
		_, ok := cache.Get("https://example.com/a.png")
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestEnsureAfterCloseStillCallsBack(t *testing.T) {
	fetcher := newFakeFetcher()
	cache := newTestCache(fetcher)
	cache.Close()

	ensureAndWait(t, cache, "A", false)

	_, ok := cache.Get("A")
	assert.False(t, ok)
	assert.Equal(t, 0, fetcher.CallCount("A"))
}

func TestEnsureAfterShutdownStillCallsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := newFakeFetcher()
	cache := NewCache(CacheConfig{
		Fetcher:     fetcher,
		Metrics:     NewMetrics(nil),
		ShutdownCtx: ctx,
	})

	ensureAndWait(t, cache, "A", false)

	_, ok := cache.Get("A")
	assert.False(t, ok)
}
