package viewer

import (
	"fmt"
	"sync"

	"github.com/adampresley/lightboxpreload/pkg/models"
	"github.com/adampresley/lightboxpreload/pkg/preload"
)

// DisplayState is what the browser should be showing right now.
type DisplayState struct {
	URL           string
	Width         int
	Height        int
	IsPlaceholder bool
	Loading       bool
}

/*
SessionViewer is the server side of one browser's lightbox. It keeps the
open album and the current position, and records what should be on screen
so the browser can poll for it. It is both the Viewer and its Display.
*/
type SessionViewer struct {
	mu       sync.RWMutex
	albumKey string
	album    []preload.AlbumEntry
	current  int
	display  DisplayState
}

func NewSessionViewer() *SessionViewer {
	return &SessionViewer{
		album:   []preload.AlbumEntry{},
		current: -1,
	}
}

// SetAlbum swaps in a new album. Nothing is current until Start is called.
func (v *SessionViewer) SetAlbum(key string, album []preload.AlbumEntry) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.albumKey = key
	v.album = make([]preload.AlbumEntry, len(album))
	copy(v.album, album)
	v.current = -1
	v.display = DisplayState{}
}

func (v *SessionViewer) AlbumKey() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.albumKey
}

func (v *SessionViewer) CurrentIndex() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

func (v *SessionViewer) Album() []preload.AlbumEntry {
	v.mu.RLock()
	defer v.mu.RUnlock()

	result := make([]preload.AlbumEntry, len(v.album))
	copy(result, v.album)
	return result
}

func (v *SessionViewer) Start(index int) error {
	return v.ChangeImage(index)
}

// ChangeImage moves to index and shows the loader, the same as a plain
// lightbox does while the browser downloads the image.
func (v *SessionViewer) ChangeImage(index int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if index < 0 || index >= len(v.album) {
		return fmt.Errorf("%w: %d of %d", models.ErrIndexOutOfRange, index, len(v.album))
	}

	v.current = index
	v.display = DisplayState{Loading: true}
	return nil
}

func (v *SessionViewer) Display() preload.Display {
	return v
}

func (v *SessionViewer) State() DisplayState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.display
}

func (v *SessionViewer) ShowPlaceholder(url string, width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.display = DisplayState{
		URL:           url,
		Width:         width,
		Height:        height,
		IsPlaceholder: true,
	}
}

func (v *SessionViewer) ShowImage(url string, width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.display = DisplayState{
		URL:    url,
		Width:  width,
		Height: height,
	}
}

func (v *SessionViewer) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.display.Width = width
	v.display.Height = height
}

func (v *SessionViewer) ShowLoader() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.display = DisplayState{Loading: true}
}

func (v *SessionViewer) DisplayedURL() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.display.URL
}
