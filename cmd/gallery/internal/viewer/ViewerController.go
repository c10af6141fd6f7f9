package viewer

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/lightboxpreload/cmd/gallery/internal/albums"
	"github.com/adampresley/lightboxpreload/cmd/gallery/internal/viewmodels"
	"github.com/adampresley/lightboxpreload/pkg/models"
	"github.com/adampresley/lightboxpreload/pkg/preload"
	"github.com/goccy/go-json"
)

type ViewerControllerConfig struct {
	AlbumLoader      albums.AlbumLoader
	ImageWaitTimeout time.Duration
	Registry         *Registry
	WarmThumbnails   bool
	WrapAround       bool
}

type ViewerController struct {
	albumLoader      albums.AlbumLoader
	imageWaitTimeout time.Duration
	registry         *Registry
	warmThumbnails   bool
	wrapAround       bool
}

func NewViewerController(config ViewerControllerConfig) ViewerController {
	if config.ImageWaitTimeout <= 0 {
		config.ImageWaitTimeout = 60 * time.Second
	}

	return ViewerController{
		albumLoader:      config.AlbumLoader,
		imageWaitTimeout: config.ImageWaitTimeout,
		registry:         config.Registry,
		warmThumbnails:   config.WarmThumbnails,
		wrapAround:       config.WrapAround,
	}
}

/*
GET /albums
*/
func (c ViewerController) AlbumList(w http.ResponseWriter, r *http.Request) {
	var (
		err       error
		summaries []albums.AlbumSummary
	)

	viewData := viewmodels.AlbumList{
		Albums: []albums.AlbumSummary{},
	}

	if summaries, err = c.albumLoader.Albums(r.Context()); err != nil {
		slog.Error("error getting album list", "error", err)
		viewData.IsError = true
		viewData.Message = "An unexpected error occurred while loading albums."

		writeJSON(w, http.StatusInternalServerError, viewData)
		return
	}

	viewData.Albums = summaries
	writeJSON(w, http.StatusOK, viewData)
}

/*
POST /viewer/open
*/
func (c ViewerController) Open(w http.ResponseWriter, r *http.Request) {
	var (
		entries []preload.AlbumEntry
	)

	session := c.session(r)
	albumKey := httphelpers.GetFromRequest[string](r, "album")

	index, err := indexFromRequest(r)
	if err != nil {
		c.writeError(w, session, err)
		return
	}

	if entries, err = c.albumLoader.Load(r.Context(), albumKey); err != nil {
		c.writeError(w, session, err)
		return
	}

	session.Lock()
	defer session.Unlock()

	session.Viewer.SetAlbum(albumKey, entries)

	if err = session.Preloader.Open(index); err != nil {
		c.writeError(w, session, err)
		return
	}

	if c.warmThumbnails {
		session.Preloader.WarmThumbnails()
	}

	writeJSON(w, http.StatusOK, c.displayViewModel(session))
}

/*
POST /viewer/change
*/
func (c ViewerController) Change(w http.ResponseWriter, r *http.Request) {
	session := c.session(r)

	index, err := indexFromRequest(r)
	if err != nil {
		c.writeError(w, session, err)
		return
	}

	c.changeImage(w, session, func(current, total int) int {
		return index
	})
}

/*
POST /viewer/next
*/
func (c ViewerController) Next(w http.ResponseWriter, r *http.Request) {
	c.changeImage(w, c.session(r), func(current, total int) int {
		return step(current, total, 1, c.wrapAround)
	})
}

/*
POST /viewer/prev
*/
func (c ViewerController) Prev(w http.ResponseWriter, r *http.Request) {
	c.changeImage(w, c.session(r), func(current, total int) int {
		return step(current, total, -1, c.wrapAround)
	})
}

/*
GET /viewer/display
*/
func (c ViewerController) Display(w http.ResponseWriter, r *http.Request) {
	session := c.session(r)
	writeJSON(w, http.StatusOK, c.displayViewModel(session))
}

/*
GET /viewer/image?url=...

Serves an image of the open album from the session's cache, waiting for it
to load if it is still in flight.
*/
func (c ViewerController) Image(w http.ResponseWriter, r *http.Request) {
	session := c.session(r)
	imageURL := httphelpers.GetFromRequest[string](r, "url")

	isThumbnail, ok := findInAlbum(session.Preloader.Album(), imageURL)
	if !ok {
		httphelpers.WriteText(w, http.StatusNotFound, "image not found")
		return
	}

	cache := session.Preloader.Cache()
	record, ok := cache.Get(imageURL)

	if !ok {
		ready := make(chan struct{})
		cache.Ensure(imageURL, isThumbnail, func() {
			close(ready)
		})

		select {
		case <-ready:
		case <-r.Context().Done():
			return
		case <-time.After(c.imageWaitTimeout):
		}

		if record, ok = cache.Get(imageURL); !ok {
			httphelpers.WriteText(w, http.StatusNotFound, "image could not be loaded")
			return
		}
	}

	contentType := record.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(record.Data)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(record.Data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write(record.Data)
}

func (c ViewerController) changeImage(w http.ResponseWriter, session *Session, target func(current, total int) int) {
	session.Lock()
	defer session.Unlock()

	index := target(session.Viewer.CurrentIndex(), len(session.Viewer.Album()))

	if err := session.Preloader.ChangeImage(index); err != nil {
		c.writeError(w, session, err)
		return
	}

	writeJSON(w, http.StatusOK, c.displayViewModel(session))
}

func (c ViewerController) session(r *http.Request) *Session {
	viewerSession := viewmodels.GetViewerSessionFromContext(r)
	return c.registry.GetOrCreate(viewerSession.ID)
}

func (c ViewerController) displayViewModel(session *Session) viewmodels.ViewerDisplay {
	album := session.Preloader.Album()
	index := session.Viewer.CurrentIndex()
	state := session.Viewer.State()

	result := viewmodels.ViewerDisplay{
		Album:         session.Viewer.AlbumKey(),
		Index:         index,
		Total:         len(album),
		URL:           state.URL,
		Width:         state.Width,
		Height:        state.Height,
		IsPlaceholder: state.IsPlaceholder,
		Loading:       state.Loading,
		Pending:       len(session.Preloader.Scheduler().Pending()),
		Cached:        session.Preloader.Cache().Len(),
	}

	if index >= 0 && index < len(album) {
		result.FullURL = album[index].FullURL
	}

	return result
}

func (c ViewerController) writeError(w http.ResponseWriter, session *Session, err error) {
	status := http.StatusInternalServerError
	message := "An unexpected error occurred."

	switch {
	case errors.Is(err, models.ErrAlbumNotFound):
		status = http.StatusNotFound
		message = "Album not found."

	case errors.Is(err, models.ErrIndexOutOfRange):
		status = http.StatusBadRequest
		message = "There is no image at that position."

	default:
		slog.Error("error driving viewer", "sessionID", session.ID, "error", err)
	}

	writeJSON(w, status, viewmodels.BaseViewModel{
		Message: message,
		IsError: true,
	})
}

// indexFromRequest reads the "index" parameter. A missing index means the
// first image.
func indexFromRequest(r *http.Request) (int, error) {
	raw := strings.TrimSpace(httphelpers.GetFromRequest[string](r, "index"))
	if raw == "" {
		return 0, nil
	}

	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: '%s'", models.ErrIndexOutOfRange, raw)
	}

	return index, nil
}

// step moves current by delta, staying put at either end unless wrapAround
// is set.
func step(current, total, delta int, wrapAround bool) int {
	if total == 0 {
		return current
	}

	next := current + delta

	if next < 0 || next >= total {
		if !wrapAround {
			return current
		}

		next = (next + total) % total
	}

	return next
}

func findInAlbum(album []preload.AlbumEntry, imageURL string) (isThumbnail bool, found bool) {
	if imageURL == "" {
		return false, false
	}

	for _, entry := range album {
		if entry.FullURL == imageURL {
			return false, true
		}

		if entry.ThumbnailURL == imageURL {
			return true, true
		}
	}

	return false, false
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	b, err := json.Marshal(value)
	if err != nil {
		slog.Error("error encoding response", "error", err)
		httphelpers.TextInternalServerError(w, "error encoding response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
