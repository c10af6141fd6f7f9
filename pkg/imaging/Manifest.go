package imaging

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

const (
	DefaultManifestVariable = "demoPhotos"
)

type ManifestEntry struct {
	Name string `json:"name"`
}

func ManifestEntries(names []string) []ManifestEntry {
	result := make([]ManifestEntry, 0, len(names))

	for _, name := range names {
		result = append(result, ManifestEntry{Name: name})
	}

	return result
}

// WriteManifestJSON writes the photo list as an indented JSON array.
func WriteManifestJSON(w io.Writer, names []string) error {
	b, err := json.MarshalIndent(ManifestEntries(names), "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding manifest: %w", err)
	}

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("error writing manifest: %w", err)
	}

	return nil
}

/*
WriteManifestJS writes the photo list as a script that assigns it to a global
variable, so a static gallery page can include it with a script tag.
*/
func WriteManifestJS(w io.Writer, variable string, names []string) error {
	var (
		err error
		b   []byte
	)

	if variable == "" {
		variable = DefaultManifestVariable
	}

	if b, err = json.MarshalIndent(ManifestEntries(names), "", "  "); err != nil {
		return fmt.Errorf("error encoding manifest: %w", err)
	}

	script := fmt.Sprintf("\n// This file is generated. Do not edit it by hand.\nvar %s = %s;\n", variable, string(b))

	if _, err = io.WriteString(w, script); err != nil {
		return fmt.Errorf("error writing manifest: %w", err)
	}

	return nil
}

// IsImageFile reports whether name has an extension the resizer can decode.
func IsImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	default:
		return false
	}
}
