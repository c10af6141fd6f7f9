package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/adampresley/lightboxpreload/pkg/imaging"
	"github.com/alitto/pond/v2"
)

type ResizerConfig struct {
	InputDir  string
	MaxHeight uint
	MaxWidth  uint
	OutputDir string
	Workers   int
}

type ResizeResult struct {
	Names   []string
	Resized int
	Failed  int
}

type Resizer struct {
	inputDir  string
	maxHeight uint
	maxWidth  uint
	outputDir string
	workers   int
}

func NewResizer(config ResizerConfig) Resizer {
	if config.Workers <= 0 {
		config.Workers = 1
	}

	if config.MaxWidth == 0 {
		config.MaxWidth = imaging.DefaultThumbnailWidth
	}

	if config.MaxHeight == 0 {
		config.MaxHeight = imaging.DefaultThumbnailHeight
	}

	return Resizer{
		inputDir:  config.InputDir,
		maxHeight: config.MaxHeight,
		maxWidth:  config.MaxWidth,
		outputDir: config.OutputDir,
		workers:   config.Workers,
	}
}

/*
Run writes a fit-inside copy of every image in the input directory to the
output directory, creating it when missing. A file that cannot be resized is
logged and skipped. Names lists every file in the input directory, in
directory order, for the photo manifest.
*/
func (r Resizer) Run(ctx context.Context) (ResizeResult, error) {
	var (
		err     error
		entries []os.DirEntry
		resized atomic.Int64
		failed  atomic.Int64
	)

	result := ResizeResult{
		Names: []string{},
	}

	if err = os.MkdirAll(r.outputDir, 0o755); err != nil {
		return result, fmt.Errorf("error creating output directory '%s': %w", r.outputDir, err)
	}

	if entries, err = os.ReadDir(r.inputDir); err != nil {
		return result, fmt.Errorf("error reading input directory '%s': %w", r.inputDir, err)
	}

	pool := pond.NewPool(r.workers, pond.WithContext(ctx))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		result.Names = append(result.Names, name)

		if !imaging.IsImageFile(name) {
			slog.Warn("skipping file that is not an image", "file", name)
			failed.Add(1)
			continue
		}

		pool.Submit(func() {
			if err := r.resizeFile(name); err != nil {
				slog.Error("error resizing image", "file", name, "error", err)
				failed.Add(1)
				return
			}

			slog.Info("resized image", "file", name)
			resized.Add(1)
		})
	}

	pool.StopAndWait()

	result.Resized = int(resized.Load())
	result.Failed = int(failed.Load())

	return result, nil
}

func (r Resizer) resizeFile(name string) error {
	var (
		err  error
		file *os.File
		img  image.Image
		buf  bytes.Buffer
	)

	if file, err = os.Open(filepath.Join(r.inputDir, name)); err != nil {
		return fmt.Errorf("error opening image: %w", err)
	}

	defer file.Close()

	if img, err = imaging.ResizeReader(file, r.maxWidth, r.maxHeight); err != nil {
		return err
	}

	if err = imaging.EncodeFor(&buf, img, name); err != nil {
		return err
	}

	if err = os.WriteFile(filepath.Join(r.outputDir, name), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("error writing resized image: %w", err)
	}

	return nil
}
