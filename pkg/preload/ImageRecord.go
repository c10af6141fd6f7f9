package preload

import "time"

const (
	/*
	 * Some decoders report a zero size for images they can only partially
	 * inspect. The viewer still needs a box to draw, so fall back to this.
	 */
	DefaultImageWidth  = 250
	DefaultImageHeight = 250
)

// ImageRecord is a successfully loaded image. Records are never modified
// after they are inserted into a Cache.
type ImageRecord struct {
	URL         string
	Width       int
	Height      int
	Data        []byte
	ContentType string
	IsThumbnail bool
	LoadedAt    time.Time
}

type AlbumEntry struct {
	FullURL      string
	ThumbnailURL string
}
