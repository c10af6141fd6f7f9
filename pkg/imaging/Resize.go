package imaging

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

const (
	DefaultThumbnailWidth  uint = 120
	DefaultThumbnailHeight uint = 160
	DefaultJpegQuality          = 85
)

/*
FitDimensions scales width x height down so it fits inside maxWidth x
maxHeight while keeping the aspect ratio. Images that already fit are never
enlarged.
*/
func FitDimensions(width, height, maxWidth, maxHeight uint) (uint, uint) {
	if width == 0 || height == 0 || (width <= maxWidth && height <= maxHeight) {
		return width, height
	}

	scale := min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))

	newWidth := uint(math.Round(float64(width) * scale))
	newHeight := uint(math.Round(float64(height) * scale))

	if newWidth == 0 {
		newWidth = 1
	}

	if newHeight == 0 {
		newHeight = 1
	}

	return newWidth, newHeight
}

func FitInside(img image.Image, maxWidth, maxHeight uint) image.Image {
	bounds := img.Bounds()
	width := uint(bounds.Dx())
	height := uint(bounds.Dy())

	newWidth, newHeight := FitDimensions(width, height, maxWidth, maxHeight)

	if newWidth == width && newHeight == height {
		return img
	}

	return resize.Resize(newWidth, newHeight, img, resize.Lanczos3)
}

func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}

	return img, nil
}

// ResizeReader decodes an image and fits it inside the given box.
func ResizeReader(r io.Reader, maxWidth, maxHeight uint) (image.Image, error) {
	img, err := Decode(r)
	if err != nil {
		return nil, err
	}

	return FitInside(img, maxWidth, maxHeight), nil
}

func EncodeJPEG(w io.Writer, img image.Image) error {
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: DefaultJpegQuality}); err != nil {
		return fmt.Errorf("error encoding image as jpeg: %w", err)
	}

	return nil
}

// EncodeFor writes img in the format its file name implies. Anything other
// than png or gif, webp included, is written as jpeg.
func EncodeFor(w io.Writer, img image.Image, name string) error {
	var (
		err error
	)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		err = png.Encode(w, img)
	case ".gif":
		err = gif.Encode(w, img, nil)
	default:
		return EncodeJPEG(w, img)
	}

	if err != nil {
		return fmt.Errorf("error encoding image '%s': %w", name, err)
	}

	return nil
}
