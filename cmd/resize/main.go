package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/adampresley/lightboxpreload/pkg/imaging"
)

var (
	Version string = "development"
	appName string = "lightboxpreload-resize"
)

func main() {
	config := LoadConfig()
	setupLogger(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := run(ctx, config)
	stop()

	if err != nil {
		slog.Error("resize failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, config Config) error {
	var (
		err    error
		result ResizeResult
	)

	resizer := NewResizer(ResizerConfig{
		InputDir:  config.InputDir,
		MaxHeight: uint(config.MaxHeight),
		MaxWidth:  uint(config.MaxWidth),
		OutputDir: config.OutputDir,
		Workers:   config.Workers,
	})

	if result, err = resizer.Run(ctx); err != nil {
		return err
	}

	slog.Info("images resized", "resized", result.Resized, "failed", result.Failed)

	if err = writeManifest(config.Manifest, config.ManifestVariable, result.Names); err != nil {
		return err
	}

	slog.Info("photo list written", "path", config.Manifest, "count", len(result.Names))
	return nil
}

func writeManifest(path, variable string, names []string) error {
	manifest, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating photo list '%s': %w", path, err)
	}

	if err = imaging.WriteManifestJS(manifest, variable, names); err != nil {
		_ = manifest.Close()
		return err
	}

	if err = manifest.Close(); err != nil {
		return fmt.Errorf("error closing photo list '%s': %w", path, err)
	}

	return nil
}

func setupLogger(logLevel string) {
	level := slog.LevelInfo

	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})).With("app", appName, "version", Version)

	slog.SetDefault(logger)
}
