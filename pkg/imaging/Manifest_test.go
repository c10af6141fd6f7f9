package imaging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteManifestJSRoundTripsNames(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteManifestJS(&buf, "", []string{"a.jpg", "b.png"}))

	script := buf.String()
	assert.Contains(t, script, "var demoPhotos = [")
	assert.True(t, strings.HasSuffix(script, "];\n"))

	start := strings.Index(script, "[")
	end := strings.LastIndex(script, "]")

	entries := []ManifestEntry{}
	require.NoError(t, json.Unmarshal([]byte(script[start:end+1]), &entries))
	assert.Equal(t, []ManifestEntry{{Name: "a.jpg"}, {Name: "b.png"}}, entries)
}

func TestWriteManifestJSONEmptyList(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteManifestJSON(&buf, nil))
	assert.Equal(t, "[]", buf.String())
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("IMG_0001.JPG"))
	assert.True(t, IsImageFile("cover.webp"))
	assert.False(t, IsImageFile("notes.txt"))
	assert.False(t, IsImageFile(".DS_Store"))
}
