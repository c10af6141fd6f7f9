package viewmodels

import "github.com/adampresley/lightboxpreload/cmd/gallery/internal/albums"

type AlbumList struct {
	BaseViewModel

	Albums []albums.AlbumSummary `json:"albums"`
}
