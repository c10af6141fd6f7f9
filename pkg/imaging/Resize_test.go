package imaging

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitDimensions(t *testing.T) {
	tests := []struct {
		name           string
		width, height  uint
		expectedWidth  uint
		expectedHeight uint
	}{
		{name: "landscape limited by width", width: 1200, height: 800, expectedWidth: 120, expectedHeight: 80},
		{name: "portrait limited by height", width: 600, height: 1600, expectedWidth: 60, expectedHeight: 160},
		{name: "exact aspect", width: 300, height: 400, expectedWidth: 120, expectedHeight: 160},
		{name: "already fits", width: 100, height: 100, expectedWidth: 100, expectedHeight: 100},
		{name: "tiny is never enlarged", width: 10, height: 5, expectedWidth: 10, expectedHeight: 5},
		{name: "extreme panorama keeps one pixel", width: 100000, height: 10, expectedWidth: 120, expectedHeight: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitDimensions(tt.width, tt.height, DefaultThumbnailWidth, DefaultThumbnailHeight)
			assert.Equal(t, tt.expectedWidth, w)
			assert.Equal(t, tt.expectedHeight, h)
		})
	}
}

func TestResizeReaderFitsInsideBox(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 640, 480))))

	img, err := ResizeReader(&buf, DefaultThumbnailWidth, DefaultThumbnailHeight)
	require.NoError(t, err)

	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 90, img.Bounds().Dy())

	var out bytes.Buffer
	require.NoError(t, EncodeJPEG(&out, img))

	config, format, err := image.DecodeConfig(&out)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 120, config.Width)
}

func TestResizeReaderRejectsGarbage(t *testing.T) {
	_, err := ResizeReader(bytes.NewReader([]byte("not an image")), 10, 10)
	assert.Error(t, err)
}

func TestEncodeForPicksFormatFromName(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	tests := []struct {
		name   string
		format string
	}{
		{name: "a.png", format: "png"},
		{name: "b.GIF", format: "gif"},
		{name: "c.jpg", format: "jpeg"},
		{name: "d.webp", format: "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, EncodeFor(&buf, img, tt.name))

			_, format, err := image.DecodeConfig(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
		})
	}
}
