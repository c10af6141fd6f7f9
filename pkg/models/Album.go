package models

import (
	"fmt"
)

var (
	ErrAlbumNotFound = fmt.Errorf("album not found")
)

// Album is a catalog entry. Path is the storage prefix holding the album's
// originals/ and thumbnails/ folders.
type Album struct {
	BaseModel

	Name string
	Path string
}
