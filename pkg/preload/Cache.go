package preload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultMaxConcurrentFetches = 4
)

type CacheConfig struct {
	Fetcher              Fetcher
	MaxConcurrentFetches int
	Metrics              *Metrics
	ShutdownCtx          context.Context
}

// Cache is an in-memory store of loaded images keyed by URL. Only images
// that loaded and decoded successfully are ever stored, and nothing is
// evicted.
type Cache struct {
	fetcher     Fetcher
	group       singleflight.Group
	metrics     *Metrics
	mu          sync.RWMutex
	pool        pond.Pool
	records     map[string]*ImageRecord
	shutdownCtx context.Context
}

func NewCache(config CacheConfig) *Cache {
	if config.MaxConcurrentFetches <= 0 {
		config.MaxConcurrentFetches = DefaultMaxConcurrentFetches
	}

	if config.ShutdownCtx == nil {
		config.ShutdownCtx = context.Background()
	}

	return &Cache{
		fetcher:     config.Fetcher,
		metrics:     config.Metrics,
		pool:        pond.NewPool(config.MaxConcurrentFetches, pond.WithContext(config.ShutdownCtx)),
		records:     make(map[string]*ImageRecord),
		shutdownCtx: config.ShutdownCtx,
	}
}

func (c *Cache) Get(url string) (*ImageRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	record, ok := c.records[url]
	return record, ok
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.records)
}

/*
Ensure makes sure url is loaded and then calls onReady. A cached url calls
onReady right away on the calling goroutine. Otherwise the image is fetched on
the cache's worker pool and onReady runs there once the fetch finishes,
whether it succeeded or not. Callers that need to know the outcome look the
url up with Get. onReady may be nil.
*/
func (c *Cache) Ensure(url string, isThumbnail bool, onReady func()) {
	if _, ok := c.Get(url); ok {
		c.metrics.recordHit()
		notify(onReady)
		return
	}

	c.metrics.recordMiss()

	once := sync.Once{}
	ready := func() {
		once.Do(func() { notify(onReady) })
	}

	task := c.pool.Submit(func() {
		defer ready()

		/*
		 * Concurrent requests for the same url share one fetch.
		 */
		_, _, _ = c.group.Do(url, func() (any, error) {
			return nil, c.load(url, isThumbnail)
		})
	})

	/*
	 * A stopped pool or a cancelled shutdown context fails the task without
	 * running it. onReady still has to fire.
	 */
	go func() {
		if err := task.Wait(); err != nil {
			slog.Debug("image fetch did not run", "url", url, "error", err)
			ready()
		}
	}()
}

// Close stops the fetch pool. Fetches already running finish. Later calls to
// Ensure on a miss fetch nothing but still call onReady.
func (c *Cache) Close() {
	c.pool.StopAndWait()
}

func (c *Cache) load(url string, isThumbnail bool) error {
	var (
		err     error
		fetched Fetched
		config  image.Config
	)

	if _, ok := c.Get(url); ok {
		return nil
	}

	started := time.Now()

	if fetched, err = c.fetcher.Fetch(c.shutdownCtx, url); err != nil {
		c.metrics.recordFetch("error", started)
		slog.Error("image failed to load", "url", url, "error", err)
		return fmt.Errorf("error fetching image '%s': %w", url, err)
	}

	if config, _, err = image.DecodeConfig(bytes.NewReader(fetched.Data)); err != nil {
		c.metrics.recordFetch("undecodable", started)
		slog.Error("image could not be decoded", "url", url, "contentType", fetched.ContentType, "error", err)
		return fmt.Errorf("error decoding image '%s': %w", url, err)
	}

	record := &ImageRecord{
		URL:         url,
		Width:       config.Width,
		Height:      config.Height,
		Data:        fetched.Data,
		ContentType: fetched.ContentType,
		IsThumbnail: isThumbnail,
		LoadedAt:    time.Now(),
	}

	if record.Width == 0 {
		record.Width = DefaultImageWidth
	}

	if record.Height == 0 {
		record.Height = DefaultImageHeight
	}

	c.mu.Lock()
	c.records[url] = record
	c.mu.Unlock()

	c.metrics.recordFetch("ok", started)
	slog.Debug("image cached", "url", url, "width", record.Width, "height", record.Height, "thumbnail", isThumbnail)
	return nil
}

func notify(onReady func()) {
	if onReady != nil {
		onReady()
	}
}
