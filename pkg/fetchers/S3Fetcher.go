package fetchers

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/s3/getoptions"
	"github.com/adampresley/lightboxpreload/pkg/preload"
)

type S3FetcherConfig struct {
	MaxBytes int64
	S3Client s3.S3Client
}

/*
S3Fetcher reads images straight out of a bucket using s3://bucket/key urls.
Unlike presigned urls these never expire, which matters for albums that stay
open in a viewer for a long time.
*/
type S3Fetcher struct {
	maxBytes int64
	s3Client s3.S3Client
}

func NewS3Fetcher(config S3FetcherConfig) S3Fetcher {
	if config.MaxBytes <= 0 {
		config.MaxBytes = DefaultMaxBytes
	}

	return S3Fetcher{
		maxBytes: config.MaxBytes,
		s3Client: config.S3Client,
	}
}

func (f S3Fetcher) Fetch(ctx context.Context, rawURL string) (preload.Fetched, error) {
	var (
		err    error
		bucket string
		key    string
		object s3.GetObjectResponse
		body   []byte
	)

	if bucket, key, err = ParseS3URL(rawURL); err != nil {
		return preload.Fetched{}, err
	}

	object, err = f.s3Client.Get(
		bucket,
		key,
		getoptions.WithContext(ctx),
	)

	if err != nil {
		return preload.Fetched{}, fmt.Errorf("error retrieving image %s from bucket %s: %w", key, bucket, err)
	}

	defer object.Body.Close()

	if body, err = io.ReadAll(io.LimitReader(object.Body, f.maxBytes+1)); err != nil {
		return preload.Fetched{}, fmt.Errorf("error reading image %s from bucket %s: %w", key, bucket, err)
	}

	if int64(len(body)) > f.maxBytes {
		return preload.Fetched{}, fmt.Errorf("image %s in bucket %s is larger than %d bytes", key, bucket, f.maxBytes)
	}

	return preload.Fetched{
		Data:        body,
		ContentType: object.ContentType,
	}, nil
}

func S3URL(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, strings.TrimPrefix(key, "/"))
}

func ParseS3URL(rawURL string) (string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("error parsing s3 url '%s': %w", rawURL, err)
	}

	key := strings.TrimPrefix(u.Path, "/")

	if u.Scheme != "s3" || u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: '%s' is not an s3://bucket/key url", preload.ErrUnsupportedURL, rawURL)
	}

	return u.Host, key, nil
}
