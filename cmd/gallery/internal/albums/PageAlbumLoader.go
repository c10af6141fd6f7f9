package albums

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/adampresley/lightboxpreload/pkg/models"
	"github.com/adampresley/lightboxpreload/pkg/preload"
)

type PageAlbumLoaderConfig struct {
	// BaseURL resolves relative links when the page is read from disk.
	BaseURL string
	Client  *http.Client
	Mapper  *preload.ThumbnailMapper
	Page    string
}

// PageAlbumLoader serves the lightbox groups found on a gallery page. The
// page is scanned once, when the loader is created.
type PageAlbumLoader struct {
	mapper *preload.ThumbnailMapper
}

func NewPageAlbumLoader(config PageAlbumLoaderConfig) (PageAlbumLoader, error) {
	var (
		err  error
		body []byte
		base *url.URL
	)

	if config.Client == nil {
		config.Client = http.DefaultClient
	}

	if config.Mapper == nil {
		config.Mapper = preload.NewThumbnailMapper()
	}

	if isRemote(config.Page) {
		if body, err = readRemotePage(config.Client, config.Page); err != nil {
			return PageAlbumLoader{}, err
		}

		config.BaseURL = config.Page
	} else {
		if body, err = os.ReadFile(config.Page); err != nil {
			return PageAlbumLoader{}, fmt.Errorf("error reading gallery page '%s': %w", config.Page, err)
		}
	}

	if config.BaseURL != "" {
		if base, err = url.Parse(config.BaseURL); err != nil {
			return PageAlbumLoader{}, fmt.Errorf("error parsing gallery base url '%s': %w", config.BaseURL, err)
		}
	}

	if _, err = config.Mapper.Scan(bytes.NewReader(body), base); err != nil {
		return PageAlbumLoader{}, err
	}

	return PageAlbumLoader{
		mapper: config.Mapper,
	}, nil
}

func (l PageAlbumLoader) Albums(ctx context.Context) ([]AlbumSummary, error) {
	groups := l.mapper.Groups()
	result := make([]AlbumSummary, 0, len(groups))

	for _, group := range groups {
		result = append(result, AlbumSummary{Key: group, Name: group})
	}

	return result, nil
}

func (l PageAlbumLoader) Load(ctx context.Context, key string) ([]preload.AlbumEntry, error) {
	entries, ok := l.mapper.Group(key)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", models.ErrAlbumNotFound, key)
	}

	return entries, nil
}

func isRemote(page string) bool {
	lower := strings.ToLower(page)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func readRemotePage(client *http.Client, page string) ([]byte, error) {
	response, err := client.Get(page)
	if err != nil {
		return nil, fmt.Errorf("error downloading gallery page '%s': %w", page, err)
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading gallery page '%s', status: %s", page, response.Status)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading gallery page '%s': %w", page, err)
	}

	return body, nil
}
