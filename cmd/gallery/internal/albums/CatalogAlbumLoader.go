package albums

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/s3/listoptions"
	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/lightboxpreload/pkg/fetchers"
	"github.com/adampresley/lightboxpreload/pkg/models"
	"github.com/adampresley/lightboxpreload/pkg/preload"
	"github.com/adampresley/lightboxpreload/pkg/services"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var (
	validImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
)

type CatalogAlbumLoaderConfig struct {
	AlbumService services.AlbumServicer
	Bucket       string
	Mapper       *preload.ThumbnailMapper
	S3Client     s3.S3Client
}

/*
CatalogAlbumLoader reads albums from the database and their images from S3.
Each album's path holds an originals/ folder and a thumbnails/ folder whose
files share names. Entries are s3:// urls so they never expire.
*/
type CatalogAlbumLoader struct {
	albumService services.AlbumServicer
	bucket       string
	mapper       *preload.ThumbnailMapper
	s3Client     s3.S3Client
}

func NewCatalogAlbumLoader(config CatalogAlbumLoaderConfig) CatalogAlbumLoader {
	return CatalogAlbumLoader{
		albumService: config.AlbumService,
		bucket:       config.Bucket,
		mapper:       config.Mapper,
		s3Client:     config.S3Client,
	}
}

func (l CatalogAlbumLoader) Albums(ctx context.Context) ([]AlbumSummary, error) {
	var (
		err    error
		albums []*models.Album
	)

	if albums, err = l.albumService.GetAlbumList(); err != nil {
		return nil, err
	}

	result := make([]AlbumSummary, 0, len(albums))

	for _, album := range albums {
		result = append(result, AlbumSummary{
			Key:  fmt.Sprint(album.ID),
			Name: album.Name,
		})
	}

	return result, nil
}

func (l CatalogAlbumLoader) Load(ctx context.Context, key string) ([]preload.AlbumEntry, error) {
	var (
		err        error
		albumID    uint64
		album      *models.Album
		originals  []s3.Object
		thumbnails []s3.Object
	)

	if albumID, err = strconv.ParseUint(key, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: '%s'", models.ErrAlbumNotFound, key)
	}

	if album, err = l.albumService.GetAlbum(uint(albumID)); err != nil {
		return nil, err
	}

	if originals, err = l.listImages(filepath.Join(album.Path, "originals")); err != nil {
		return nil, err
	}

	/*
	 * Thumbnails are a nice to have. Without them the viewer simply shows
	 * its loader until the full image arrives.
	 */
	if thumbnails, err = l.listImages(filepath.Join(album.Path, "thumbnails")); err != nil {
		slog.Error("error listing album thumbnails", "albumID", album.ID, "error", err)
		thumbnails = []s3.Object{}
	}

	return pairImages(l.bucket, originals, thumbnails, l.mapper), nil
}

func (l CatalogAlbumLoader) listImages(prefix string) ([]s3.Object, error) {
	response, err := l.s3Client.List(
		l.bucket,
		prefix,
		listoptions.WithGetAll(),
		listoptions.WithFilter(func(obj types.Object) bool {
			ext := strings.ToLower(filepath.Ext(aws.ToString(obj.Key)))
			return slices.IsInSlice(ext, validImageExtensions)
		}),
	)

	if err != nil {
		return nil, fmt.Errorf("error listing album images under '%s': %w", prefix, err)
	}

	return response.Objects, nil
}

// pairImages builds album entries from the originals, registering each
// thumbnail with the same file name in the mapper.
func pairImages(bucket string, originals, thumbnails []s3.Object, mapper *preload.ThumbnailMapper) []preload.AlbumEntry {
	thumbnailKeys := make(map[string]string, len(thumbnails))

	for _, thumbnail := range thumbnails {
		thumbnailKeys[filepath.Base(thumbnail.Key)] = thumbnail.Key
	}

	result := make([]preload.AlbumEntry, 0, len(originals))

	for _, original := range originals {
		full := fetchers.S3URL(bucket, original.Key)

		if thumbnailKey, ok := thumbnailKeys[filepath.Base(original.Key)]; ok && mapper != nil {
			mapper.Add(fetchers.S3URL(bucket, thumbnailKey), full)
		}

		result = append(result, preload.AlbumEntry{FullURL: full})
	}

	return result
}
