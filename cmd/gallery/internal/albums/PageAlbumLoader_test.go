package albums

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/adampresley/lightboxpreload/pkg/models"
	"github.com/adampresley/lightboxpreload/pkg/preload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<a href="photo/a.jpg" data-lightbox="summer"><img src="photoResize/a.jpg"></a>
<a href="photo/b.jpg" data-lightbox="summer"><img src="photoResize/b.jpg"></a>
<a href="photo/c.jpg" data-lightbox="winter"><img src="photoResize/c.jpg"></a>
</body></html>`

func TestPageAlbumLoaderReadsGroupsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0o644))

	mapper := preload.NewThumbnailMapper()

	loader, err := NewPageAlbumLoader(PageAlbumLoaderConfig{
		BaseURL: "https://photos.example.com/",
		Mapper:  mapper,
		Page:    path,
	})
	require.NoError(t, err)

	summaries, err := loader.Albums(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []AlbumSummary{{Key: "summer", Name: "summer"}, {Key: "winter", Name: "winter"}}, summaries)

	entries, err := loader.Load(context.Background(), "summer")
	require.NoError(t, err)
	assert.Equal(t, []preload.AlbumEntry{
		{FullURL: "https://photos.example.com/photo/a.jpg", ThumbnailURL: "https://photos.example.com/photoResize/a.jpg"},
		{FullURL: "https://photos.example.com/photo/b.jpg", ThumbnailURL: "https://photos.example.com/photoResize/b.jpg"},
	}, entries)

	_, err = loader.Load(context.Background(), "autumn")
	assert.True(t, errors.Is(err, models.ErrAlbumNotFound))
}

func TestPageAlbumLoaderResolvesAgainstRemotePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	loader, err := NewPageAlbumLoader(PageAlbumLoaderConfig{
		Page: server.URL + "/gallery/index.html",
	})
	require.NoError(t, err)

	entries, err := loader.Load(context.Background(), "winter")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, server.URL+"/gallery/photo/c.jpg", entries[0].FullURL)
	assert.Equal(t, server.URL+"/gallery/photoResize/c.jpg", entries[0].ThumbnailURL)
}

func TestPageAlbumLoaderFailsOnMissingPage(t *testing.T) {
	_, err := NewPageAlbumLoader(PageAlbumLoaderConfig{
		Page: filepath.Join(t.TempDir(), "missing.html"),
	})

	assert.Error(t, err)
}
