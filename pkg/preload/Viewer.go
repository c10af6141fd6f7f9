package preload

/*
Viewer adapts whatever gallery viewer is on the other side. Start and
ChangeImage are the viewer's own operations; the Preloader always calls them
and layers its behavior on top, never reaching into the viewer's state.
*/
type Viewer interface {
	// CurrentIndex is the album index on display, or -1 when unknown.
	CurrentIndex() int
	Album() []AlbumEntry
	Start(index int) error
	ChangeImage(index int) error

	// Display returns the surface the image is drawn on. A nil Display turns
	// the placeholder and swap behavior off while preloading carries on.
	Display() Display
}

// Display is the image surface and its containing box.
type Display interface {
	ShowPlaceholder(url string, width, height int)
	ShowImage(url string, width, height int)
	Resize(width, height int)
	ShowLoader()
	DisplayedURL() string
}
