package albums

import (
	"context"

	"github.com/adampresley/lightboxpreload/pkg/preload"
)

type AlbumSummary struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// AlbumLoader supplies the albums a viewer can open.
type AlbumLoader interface {
	Albums(ctx context.Context) ([]AlbumSummary, error)
	Load(ctx context.Context, key string) ([]preload.AlbumEntry, error)
}
