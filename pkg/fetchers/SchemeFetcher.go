package fetchers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/adampresley/lightboxpreload/pkg/preload"
)

// SchemeFetcher hands each url to the fetcher registered for its scheme.
type SchemeFetcher struct {
	fetchers map[string]preload.Fetcher
}

func NewSchemeFetcher(fetchers map[string]preload.Fetcher) SchemeFetcher {
	result := SchemeFetcher{
		fetchers: make(map[string]preload.Fetcher, len(fetchers)),
	}

	for scheme, fetcher := range fetchers {
		result.fetchers[strings.ToLower(scheme)] = fetcher
	}

	return result
}

func (f SchemeFetcher) Fetch(ctx context.Context, rawURL string) (preload.Fetched, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return preload.Fetched{}, fmt.Errorf("error parsing image url '%s': %w", rawURL, err)
	}

	fetcher, ok := f.fetchers[strings.ToLower(u.Scheme)]
	if !ok {
		return preload.Fetched{}, fmt.Errorf("%w: no fetcher for scheme '%s'", preload.ErrUnsupportedURL, u.Scheme)
	}

	return fetcher.Fetch(ctx, rawURL)
}
