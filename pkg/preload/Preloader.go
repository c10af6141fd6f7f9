package preload

import (
	"context"
	"fmt"
	"log/slog"
)

type PreloaderConfig struct {
	Fetcher              Fetcher
	Mapper               *ThumbnailMapper
	MaxConcurrentFetches int
	Metrics              *Metrics
	ShutdownCtx          context.Context
	Viewer               Viewer
	WrapAround           bool
}

/*
Preloader enhances a Viewer. While an image is being fetched its thumbnail is
shown in its place, the rest of the album is preloaded in priority order
around the current position, and the full resolution image is swapped in
once it arrives.
*/
type Preloader struct {
	cache      *Cache
	mapper     *ThumbnailMapper
	metrics    *Metrics
	scheduler  *Scheduler
	viewer     Viewer
	wrapAround bool
}

func NewPreloader(config PreloaderConfig) *Preloader {
	result := &Preloader{
		mapper:     config.Mapper,
		metrics:    config.Metrics,
		viewer:     config.Viewer,
		wrapAround: config.WrapAround,
	}

	result.cache = NewCache(CacheConfig{
		Fetcher:              config.Fetcher,
		MaxConcurrentFetches: config.MaxConcurrentFetches,
		Metrics:              config.Metrics,
		ShutdownCtx:          config.ShutdownCtx,
	})

	result.scheduler = NewScheduler(SchedulerConfig{
		Cache:        result.cache,
		CurrentIndex: config.Viewer.CurrentIndex,
		OnDisplayReady: func(request Request) {
			result.replaceWithFull(request.URL)
		},
		Metrics: config.Metrics,
	})

	return result
}

func (p *Preloader) Cache() *Cache {
	return p.cache
}

func (p *Preloader) Scheduler() *Scheduler {
	return p.scheduler
}

// Album is the viewer's album with thumbnails filled in from the mapper.
func (p *Preloader) Album() []AlbumEntry {
	album := p.viewer.Album()

	if p.mapper == nil {
		result := make([]AlbumEntry, len(album))
		copy(result, album)
		return result
	}

	return p.mapper.Enrich(album)
}

/*
Open starts the viewer on index and queues the whole album for preloading.
Errors from the viewer itself are returned. Failures in the preloading layer
are logged and the viewer is restarted without it.
*/
func (p *Preloader) Open(index int) error {
	if err := p.viewer.Start(index); err != nil {
		return err
	}

	p.enhance("open", index, func() error {
		album := p.Album()
		if len(album) == 0 {
			return nil
		}

		current := p.viewer.CurrentIndex()

		p.scheduler.Replace(InitialRequests(album, current))
		p.scheduler.Pump()

		if current >= 0 && current < len(album) {
			p.refreshDisplay(album, current)
		}

		return nil
	}, func() error {
		return p.viewer.Start(index)
	})

	return nil
}

// ChangeImage moves the viewer to index. The viewer's own ChangeImage is
// always called first.
func (p *Preloader) ChangeImage(index int) error {
	if err := p.viewer.ChangeImage(index); err != nil {
		return err
	}

	p.enhance("change", index, func() error {
		album := p.Album()

		/*
		 * Without an album entry there is nothing to improve on, and the
		 * viewer has already done its part.
		 */
		if index < 0 || index >= len(album) || album[index].FullURL == "" {
			slog.Debug("not enough information to enhance image change", "index", index, "albumSize", len(album))
			return nil
		}

		p.refreshDisplay(album, index)
		p.scheduler.Reprioritize(index)
		p.scheduler.Pump()
		return nil
	}, func() error {
		return p.viewer.ChangeImage(index)
	})

	return nil
}

// WarmThumbnails loads every known thumbnail in the background.
func (p *Preloader) WarmThumbnails() {
	thumbnails := []string{}

	if p.mapper != nil {
		thumbnails = p.mapper.Thumbnails()
	} else {
		for _, entry := range p.viewer.Album() {
			if entry.ThumbnailURL != "" {
				thumbnails = append(thumbnails, entry.ThumbnailURL)
			}
		}
	}

	slog.Debug("warming thumbnails", "count", len(thumbnails))

	for _, thumbnail := range thumbnails {
		p.cache.Ensure(thumbnail, true, nil)
	}
}

func (p *Preloader) Close() {
	p.cache.Close()
}

func (p *Preloader) enhance(operation string, index int, enhancement func() error, original func() error) {
	defer func() {
		if r := recover(); r != nil {
			p.fallback(operation, index, fmt.Errorf("panic: %v", r), original)
		}
	}()

	if err := enhancement(); err != nil {
		p.fallback(operation, index, err, original)
	}
}

func (p *Preloader) fallback(operation string, index int, cause error, original func() error) {
	p.metrics.recordFallback()
	slog.Error("viewer enhancement failed, falling back to original behavior", "operation", operation, "index", index, "error", cause)

	if err := original(); err != nil {
		slog.Error("original viewer operation failed during fallback", "operation", operation, "index", index, "error", err)
	}
}

/*
refreshDisplay makes sure something is on screen for index straight away:
the cached full image if there is one, otherwise the thumbnail (or the
loader when there is no thumbnail) until the full image arrives.
*/
func (p *Preloader) refreshDisplay(album []AlbumEntry, index int) {
	display := p.viewer.Display()
	full := album[index].FullURL
	thumbnail := album[index].ThumbnailURL

	if record, ok := p.cache.Get(full); ok {
		if display != nil {
			display.ShowImage(full, record.Width, record.Height)
		}
	} else {
		if display != nil {
			if thumbnail != "" {
				p.showPlaceholder(display, thumbnail)
			} else {
				display.ShowLoader()
			}
		}

		p.cache.Ensure(full, false, func() {
			if p.viewer.CurrentIndex() == index {
				p.replaceWithFull(full)
			}
		})
	}

	p.preloadNeighbors(album, index)
}

func (p *Preloader) showPlaceholder(display Display, thumbnail string) {
	if record, ok := p.cache.Get(thumbnail); ok {
		display.ShowPlaceholder(thumbnail, record.Width, record.Height)
		return
	}

	display.ShowPlaceholder(thumbnail, 0, 0)

	p.cache.Ensure(thumbnail, true, func() {
		record, ok := p.cache.Get(thumbnail)
		if ok && display.DisplayedURL() == thumbnail {
			display.Resize(record.Width, record.Height)
		}
	})
}

func (p *Preloader) replaceWithFull(url string) {
	record, ok := p.cache.Get(url)
	if !ok {
		return
	}

	display := p.viewer.Display()
	if display == nil || display.DisplayedURL() == url {
		return
	}

	display.ShowImage(url, record.Width, record.Height)
	p.metrics.recordSwap()
}

func (p *Preloader) preloadNeighbors(album []AlbumEntry, index int) {
	for _, neighbor := range p.neighbors(len(album), index) {
		if album[neighbor].ThumbnailURL != "" {
			p.cache.Ensure(album[neighbor].ThumbnailURL, true, nil)
		}

		if album[neighbor].FullURL != "" {
			p.cache.Ensure(album[neighbor].FullURL, false, nil)
		}
	}
}

func (p *Preloader) neighbors(total, index int) []int {
	result := []int{}

	if index > 0 {
		result = append(result, index-1)
	} else if p.wrapAround && total > 1 {
		result = append(result, total-1)
	}

	if index < total-1 {
		result = append(result, index+1)
	} else if p.wrapAround && total > 1 {
		result = append(result, 0)
	}

	if len(result) == 2 && result[0] == result[1] {
		result = result[:1]
	}

	return result
}
