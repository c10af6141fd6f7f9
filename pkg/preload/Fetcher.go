package preload

import (
	"context"
	"errors"
)

var (
	ErrUnsupportedURL = errors.New("unsupported image url")
)

// Fetched is the raw result of retrieving an image. The cache decodes the
// dimensions itself.
type Fetched struct {
	Data        []byte
	ContentType string
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (Fetched, error)
}

type FetcherFunc func(ctx context.Context, url string) (Fetched, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (Fetched, error) {
	return f(ctx, url)
}
