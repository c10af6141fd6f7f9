package thumbnails

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/s3/createbucketoptions"
	"github.com/adampresley/adamgokit/s3/getoptions"
	"github.com/adampresley/adamgokit/s3/listoptions"
	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/lightboxpreload/pkg/imaging"
	"github.com/adampresley/lightboxpreload/pkg/models"
	"github.com/adampresley/lightboxpreload/pkg/services"
	"github.com/alitto/pond/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var (
	originalExtensions = []string{".jpg", ".jpeg", ".png"}
)

type ThumbnailCreator interface {
	CreateThumbnails()
}

type ThumbnailCreatorConfig struct {
	AlbumService    services.AlbumServicer
	AwsBucket       string
	AwsRegion       string
	MaxCacheWorkers int
	MaxHeight       uint
	MaxWidth        uint
	S3Client        s3.S3Client
	ShutdownCtx     context.Context
}

/*
ThumbnailCreatorService keeps every catalog album's thumbnails/ folder in
step with its originals/ folder, and writes a manifest.json listing the
album's images.
*/
type ThumbnailCreatorService struct {
	albumService    services.AlbumServicer
	awsBucket       string
	awsRegion       string
	maxCacheWorkers int
	maxHeight       uint
	maxWidth        uint
	s3Client        s3.S3Client
	shutdownCtx     context.Context
}

func NewThumbnailCreatorService(config ThumbnailCreatorConfig) ThumbnailCreatorService {
	if config.MaxCacheWorkers <= 0 {
		config.MaxCacheWorkers = 1
	}

	if config.MaxWidth == 0 {
		config.MaxWidth = imaging.DefaultThumbnailWidth
	}

	if config.MaxHeight == 0 {
		config.MaxHeight = imaging.DefaultThumbnailHeight
	}

	if config.ShutdownCtx == nil {
		config.ShutdownCtx = context.Background()
	}

	return ThumbnailCreatorService{
		albumService:    config.AlbumService,
		awsBucket:       config.AwsBucket,
		awsRegion:       config.AwsRegion,
		maxCacheWorkers: config.MaxCacheWorkers,
		maxHeight:       config.MaxHeight,
		maxWidth:        config.MaxWidth,
		s3Client:        config.S3Client,
		shutdownCtx:     config.ShutdownCtx,
	}
}

func (c ThumbnailCreatorService) CreateThumbnails() {
	var (
		err    error
		albums []*models.Album
	)

	slog.Info("starting thumbnail creation...")

	if err = c.ensureBucketExists(c.awsBucket); err != nil {
		slog.Error("error ensuring bucket exists. skipping thumbnail creation", "bucket", c.awsBucket, "error", err)
		return
	}

	if albums, err = c.albumService.GetAlbumList(); err != nil {
		slog.Error("error retrieving albums from database", "error", err)
		return
	}

	slog.Info("creating thumbnails for albums...", "numAlbums", len(albums))

	pool := pond.NewPool(c.maxCacheWorkers, pond.WithContext(c.shutdownCtx))

	for _, album := range albums {
		c.createAlbumThumbnails(pool, album)
	}

	_ = pool.Stop().Wait()
}

func (c ThumbnailCreatorService) createAlbumThumbnails(pool pond.Pool, album *models.Album) {
	var (
		err       error
		originals []s3.Object
	)

	if originals, err = c.getAlbumImageListing(album); err != nil {
		slog.Error("error retrieving image listing for album", "albumID", album.ID, "error", err)
		return
	}

	/*
	 * The manifest goes out once every thumbnail of the album has been
	 * looked at, whether or not it needed work.
	 */
	wg := sync.WaitGroup{}
	names := make([]string, 0, len(originals))

	for _, original := range originals {
		names = append(names, filepath.Base(original.Key))
		thumbnailKey := filepath.Join(album.Path, "thumbnails", filepath.Base(original.Key))

		if c.doesThumbnailExist(original, thumbnailKey) {
			continue
		}

		wg.Add(1)

		pool.Submit(func() {
			defer wg.Done()

			slog.Info("creating thumbnail for album...", "albumID", album.ID, "key", original.Key)

			if err := c.createThumbnail(original.Key, thumbnailKey); err != nil {
				slog.Error("error creating thumbnail for album", "albumID", album.ID, "key", original.Key, "error", err)
			}
		})
	}

	pool.Submit(func() {
		wg.Wait()

		if err := c.writeManifest(album, names); err != nil {
			slog.Error("error writing album manifest", "albumID", album.ID, "error", err)
		}
	})
}

func (c ThumbnailCreatorService) ensureBucketExists(bucketName string) error {
	var (
		err    error
		exists bool
	)

	exists, err = c.s3Client.BucketExists(bucketName)

	if err != nil {
		return fmt.Errorf("error ensuring bucket '%s' exists: %w", bucketName, err)
	}

	if exists {
		return nil
	}

	slog.Info("creating bucket", "bucketName", bucketName)

	err = c.s3Client.CreateBucket(
		bucketName,
		createbucketoptions.WithRegion(c.awsRegion),
	)

	if err != nil {
		return fmt.Errorf("error creating bucket '%s': %w", bucketName, err)
	}

	return nil
}

func (c ThumbnailCreatorService) getAlbumImageListing(album *models.Album) ([]s3.Object, error) {
	var (
		err      error
		response s3.ListResponse
	)

	key := filepath.Join(album.Path, "originals")

	response, err = c.s3Client.List(
		c.awsBucket,
		key,
		listoptions.WithGetAll(),
		listoptions.WithFilter(func(obj types.Object) bool {
			return isOriginal(aws.ToString(obj.Key))
		}),
	)

	if err != nil {
		return nil, fmt.Errorf("error listing album images: %w", err)
	}

	return response.Objects, nil
}

func (c ThumbnailCreatorService) doesThumbnailExist(original s3.Object, thumbnailKey string) bool {
	var (
		err  error
		stat *s3.ObjectMetadata
	)

	if stat, err = c.s3Client.StatObject(c.awsBucket, thumbnailKey); err != nil {
		if isNotFound(err) {
			slog.Debug("thumbnail missing", "key", thumbnailKey)
			return false
		}

		slog.Error("error retrieving metadata for thumbnail", "key", thumbnailKey, "error", err)
		return false
	}

	if stat == nil {
		slog.Debug("thumbnail missing", "key", thumbnailKey)
		return false
	}

	return isFresh(stat, original)
}

func (c ThumbnailCreatorService) createThumbnail(originalKey, thumbnailKey string) error {
	var (
		err      error
		img      image.Image
		original s3.GetObjectResponse
		buf      bytes.Buffer
	)

	original, err = c.s3Client.Get(
		c.awsBucket,
		originalKey,
		getoptions.WithContext(c.shutdownCtx),
	)

	if err != nil {
		return fmt.Errorf("error retrieving original image %s: %w", originalKey, err)
	}

	defer original.Body.Close()

	if img, err = imaging.ResizeReader(original.Body, c.maxWidth, c.maxHeight); err != nil {
		return fmt.Errorf("error resizing image: %w", err)
	}

	if err = imaging.EncodeJPEG(&buf, img); err != nil {
		return err
	}

	if _, err = c.s3Client.Put(c.awsBucket, thumbnailKey, &buf); err != nil {
		return fmt.Errorf("error uploading thumbnail to S3: %w", err)
	}

	return nil
}

func (c ThumbnailCreatorService) writeManifest(album *models.Album, names []string) error {
	var (
		err error
		buf bytes.Buffer
	)

	if err = imaging.WriteManifestJSON(&buf, names); err != nil {
		return err
	}

	key := filepath.Join(album.Path, "manifest.json")

	if _, err = c.s3Client.Put(c.awsBucket, key, &buf); err != nil {
		return fmt.Errorf("error uploading manifest '%s': %w", key, err)
	}

	return nil
}

func isOriginal(key string) bool {
	ext := strings.ToLower(filepath.Ext(key))
	return slices.IsInSlice(ext, originalExtensions)
}

func isNotFound(err error) bool {
	var (
		notFound  *types.NotFound
		noSuchKey *types.NoSuchKey
	)

	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}

// isFresh reports whether a thumbnail exists and is no older than its original.
func isFresh(thumbnail *s3.ObjectMetadata, original s3.Object) bool {
	if thumbnail == nil {
		return false
	}

	return !thumbnail.LastModified.Before(original.LastModified)
}
