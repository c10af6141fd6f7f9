package fetchers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adampresley/lightboxpreload/pkg/preload"
)

const (
	DefaultHttpTimeout = 60 * time.Second
	DefaultMaxBytes    = 50 << 20
)

type HttpFetcherConfig struct {
	Client    *http.Client
	MaxBytes  int64
	Timeout   time.Duration
	UserAgent string
}

// HttpFetcher retrieves images over HTTP(S). The client timeout is the only
// limit on how long a fetch may hang.
type HttpFetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
}

func NewHttpFetcher(config HttpFetcherConfig) HttpFetcher {
	if config.Timeout <= 0 {
		config.Timeout = DefaultHttpTimeout
	}

	if config.MaxBytes <= 0 {
		config.MaxBytes = DefaultMaxBytes
	}

	if config.Client == nil {
		config.Client = &http.Client{
			Timeout: config.Timeout,
		}
	}

	return HttpFetcher{
		client:    config.Client,
		maxBytes:  config.MaxBytes,
		userAgent: config.UserAgent,
	}
}

func (f HttpFetcher) Fetch(ctx context.Context, url string) (preload.Fetched, error) {
	var (
		err      error
		request  *http.Request
		response *http.Response
		body     []byte
	)

	if request, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil); err != nil {
		return preload.Fetched{}, fmt.Errorf("error creating request for '%s': %w", url, err)
	}

	if f.userAgent != "" {
		request.Header.Set("User-Agent", f.userAgent)
	}

	if response, err = f.client.Do(request); err != nil {
		return preload.Fetched{}, fmt.Errorf("error downloading image from '%s': %w", url, err)
	}

	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return preload.Fetched{}, fmt.Errorf("error downloading image from '%s', status: %s", url, response.Status)
	}

	if body, err = io.ReadAll(io.LimitReader(response.Body, f.maxBytes+1)); err != nil {
		return preload.Fetched{}, fmt.Errorf("error reading image body from '%s': %w", url, err)
	}

	if int64(len(body)) > f.maxBytes {
		return preload.Fetched{}, fmt.Errorf("image at '%s' is larger than %d bytes", url, f.maxBytes)
	}

	return preload.Fetched{
		Data:        body,
		ContentType: response.Header.Get("Content-Type"),
	}, nil
}
