package fetchers

import (
	"context"
	"errors"
	"testing"

	"github.com/adampresley/lightboxpreload/pkg/preload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemeFetcherRoutesByScheme(t *testing.T) {
	named := func(name string) preload.Fetcher {
		return preload.FetcherFunc(func(ctx context.Context, url string) (preload.Fetched, error) {
			return preload.Fetched{Data: []byte(name)}, nil
		})
	}

	fetcher := NewSchemeFetcher(map[string]preload.Fetcher{
		"http":  named("web"),
		"HTTPS": named("web"),
		"s3":    named("bucket"),
	})

	tests := []struct {
		url      string
		expected string
	}{
		{url: "http://example.com/a.jpg", expected: "web"},
		{url: "https://example.com/a.jpg", expected: "web"},
		{url: "s3://photos/albums/1/originals/a.jpg", expected: "bucket"},
	}

	for _, tt := range tests {
		got, err := fetcher.Fetch(context.Background(), tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.expected, string(got.Data), tt.url)
	}

	_, err := fetcher.Fetch(context.Background(), "ftp://example.com/a.jpg")
	assert.True(t, errors.Is(err, preload.ErrUnsupportedURL))
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := ParseS3URL("s3://photos/albums/1/originals/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "photos", bucket)
	assert.Equal(t, "albums/1/originals/a.jpg", key)

	assert.Equal(t, "s3://photos/albums/1/originals/a.jpg", S3URL("photos", "/albums/1/originals/a.jpg"))

	for _, bad := range []string{"https://photos/a.jpg", "s3://photos/", "s3:///a.jpg"} {
		_, _, err = ParseS3URL(bad)
		assert.True(t, errors.Is(err, preload.ErrUnsupportedURL), bad)
	}
}
