package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func readSize(t *testing.T, path string) (int, int) {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestResizerFitsImagesInsideTheBox(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "photoResize")

	writePNG(t, filepath.Join(in, "wide.png"), 600, 300)
	writePNG(t, filepath.Join(in, "small.png"), 60, 40)
	require.NoError(t, os.WriteFile(filepath.Join(in, "broken.png"), []byte("not an image"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("hello"), 0o644))

	resizer := NewResizer(ResizerConfig{
		InputDir:  in,
		OutputDir: out,
		Workers:   2,
	})

	result, err := resizer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"broken.png", "notes.txt", "small.png", "wide.png"}, result.Names)
	assert.Equal(t, 2, result.Resized)
	assert.Equal(t, 2, result.Failed)

	width, height := readSize(t, filepath.Join(out, "wide.png"))
	assert.Equal(t, 120, width)
	assert.Equal(t, 60, height)

	width, height = readSize(t, filepath.Join(out, "small.png"))
	assert.Equal(t, 60, width)
	assert.Equal(t, 40, height)

	assert.NoFileExists(t, filepath.Join(out, "broken.png"))
}

func TestResizerFailsOnMissingInput(t *testing.T) {
	resizer := NewResizer(ResizerConfig{
		InputDir:  filepath.Join(t.TempDir(), "missing"),
		OutputDir: t.TempDir(),
	})

	_, err := resizer.Run(context.Background())
	assert.Error(t, err)
}

func TestRunWritesResizedImagesAndPhotoList(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "photoResize")
	manifest := filepath.Join(t.TempDir(), "photo-list.js")

	writePNG(t, filepath.Join(in, "a.png"), 300, 400)

	err := run(context.Background(), Config{
		InputDir:         in,
		Manifest:         manifest,
		ManifestVariable: "demoPhotos",
		MaxHeight:        160,
		MaxWidth:         120,
		OutputDir:        out,
		Workers:          1,
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "a.png"))

	b, err := os.ReadFile(manifest)
	require.NoError(t, err)
	assert.Contains(t, string(b), "var demoPhotos = [")
	assert.Contains(t, string(b), `"name": "a.png"`)
}

func TestRunFailsWhenPhotoListCannotBeCreated(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "a.png"), 10, 10)

	err := run(context.Background(), Config{
		InputDir:  in,
		Manifest:  filepath.Join(t.TempDir(), "missing", "photo-list.js"),
		OutputDir: t.TempDir(),
	})

	assert.Error(t, err)
}
