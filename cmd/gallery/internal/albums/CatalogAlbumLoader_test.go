package albums

import (
	"testing"

	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/lightboxpreload/pkg/preload"
	"github.com/stretchr/testify/assert"
)

func TestPairImagesRegistersMatchingThumbnails(t *testing.T) {
	originals := []s3.Object{
		{Key: "albums/7/originals/a.jpg"},
		{Key: "albums/7/originals/b.jpg"},
	}

	thumbnails := []s3.Object{
		{Key: "albums/7/thumbnails/a.jpg"},
		{Key: "albums/7/thumbnails/zzz.jpg"},
	}

	mapper := preload.NewThumbnailMapper()

	got := pairImages("photos", originals, thumbnails, mapper)

	assert.Equal(t, []preload.AlbumEntry{
		{FullURL: "s3://photos/albums/7/originals/a.jpg"},
		{FullURL: "s3://photos/albums/7/originals/b.jpg"},
	}, got)

	enriched := mapper.Enrich(got)
	assert.Equal(t, "s3://photos/albums/7/thumbnails/a.jpg", enriched[0].ThumbnailURL)
	assert.Equal(t, "", enriched[1].ThumbnailURL)
	assert.Equal(t, 1, mapper.Len())
}
