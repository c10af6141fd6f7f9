package main

import "github.com/adampresley/configinator"

type Config struct {
	InputDir         string `flag:"in" env:"RESIZE_INPUT_DIR" default:"photo" description:"Directory holding the full size images"`
	LogLevel         string `flag:"loglevel" env:"LOG_LEVEL" default:"info" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'"`
	Manifest         string `flag:"manifest" env:"RESIZE_MANIFEST" default:"photo-list.js" description:"Path of the generated photo list script"`
	ManifestVariable string `flag:"manifestvar" env:"RESIZE_MANIFEST_VARIABLE" default:"demoPhotos" description:"Name of the variable the photo list script assigns"`
	MaxHeight        int    `flag:"height" env:"RESIZE_MAX_HEIGHT" default:"160" description:"Maximum thumbnail height in pixels"`
	MaxWidth         int    `flag:"width" env:"RESIZE_MAX_WIDTH" default:"120" description:"Maximum thumbnail width in pixels"`
	OutputDir        string `flag:"out" env:"RESIZE_OUTPUT_DIR" default:"photoResize" description:"Directory the thumbnails are written to"`
	Workers          int    `flag:"workers" env:"RESIZE_WORKERS" default:"4" description:"Number of images resized at once"`
}

func LoadConfig() Config {
	config := Config{}
	configinator.Behold(&config)
	return config
}
