package preload

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	lightboxAnchorSelector = cascadia.MustCompile("a[data-lightbox], a[rel^=lightbox]")
	imageSelector          = cascadia.MustCompile("img")
)

// Anchor is a gallery link found on a page along with the thumbnail image
// it wraps.
type Anchor struct {
	Href      string
	Thumbnail string
	Group     string
}

/*
ThumbnailMapper keeps the association between thumbnail and full resolution
urls in both directions, along with the order images appear in each lightbox
group. It is safe for concurrent use.
*/
type ThumbnailMapper struct {
	fullToThumb map[string]string
	groupOrder  []string
	groups      map[string][]AlbumEntry
	mu          sync.RWMutex
	thumbToFull map[string]string
}

func NewThumbnailMapper() *ThumbnailMapper {
	return &ThumbnailMapper{
		fullToThumb: make(map[string]string),
		groups:      make(map[string][]AlbumEntry),
		thumbToFull: make(map[string]string),
	}
}

/*
Scan parses a gallery page and records every lightbox anchor that wraps an
image. Anchors without an image, or missing an href or src, are skipped.
Relative urls are resolved against base when it is not nil.
*/
func (m *ThumbnailMapper) Scan(r io.Reader, base *url.URL) ([]Anchor, error) {
	var (
		err  error
		doc  *html.Node
		href string
	)

	if doc, err = html.Parse(r); err != nil {
		return nil, fmt.Errorf("error parsing gallery page: %w", err)
	}

	result := []Anchor{}

	for _, a := range lightboxAnchorSelector.MatchAll(doc) {
		img := imageSelector.MatchFirst(a)
		if img == nil {
			continue
		}

		href = resolve(base, attr(a, "href"))
		src := resolve(base, attr(img, "src"))

		if href == "" || src == "" {
			continue
		}

		anchor := Anchor{
			Href:      href,
			Thumbnail: src,
			Group:     groupName(a),
		}

		m.addToGroup(anchor)
		result = append(result, anchor)
	}

	slog.Info("mapped thumbnails to full resolution images", "anchors", len(result), "mapped", m.Len())
	return result, nil
}

func (m *ThumbnailMapper) Add(thumbnail, full string) {
	if thumbnail == "" || full == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.thumbToFull[thumbnail] = full
	m.fullToThumb[full] = thumbnail
}

func (m *ThumbnailMapper) ThumbnailFor(full string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result, ok := m.fullToThumb[full]
	return result, ok
}

func (m *ThumbnailMapper) FullFor(thumbnail string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result, ok := m.thumbToFull[thumbnail]
	return result, ok
}

// Enrich returns a copy of album where entries missing a thumbnail get the
// mapped one. Thumbnails already present are left alone.
func (m *ThumbnailMapper) Enrich(album []AlbumEntry) []AlbumEntry {
	result := make([]AlbumEntry, len(album))

	m.mu.RLock()
	defer m.mu.RUnlock()

	for index, entry := range album {
		if entry.ThumbnailURL == "" {
			entry.ThumbnailURL = m.fullToThumb[entry.FullURL]
		}

		result[index] = entry
	}

	return result
}

func (m *ThumbnailMapper) Thumbnails() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, 0, len(m.thumbToFull))

	for thumbnail := range m.thumbToFull {
		result = append(result, thumbnail)
	}

	return result
}

// Groups returns the lightbox group names in the order they first appeared.
func (m *ThumbnailMapper) Groups() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, len(m.groupOrder))
	copy(result, m.groupOrder)
	return result
}

func (m *ThumbnailMapper) Group(name string) ([]AlbumEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries, ok := m.groups[name]
	if !ok {
		return nil, false
	}

	result := make([]AlbumEntry, len(entries))
	copy(result, entries)
	return result, true
}

func (m *ThumbnailMapper) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.fullToThumb)
}

func (m *ThumbnailMapper) addToGroup(anchor Anchor) {
	m.Add(anchor.Thumbnail, anchor.Href)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.groups[anchor.Group]; !ok {
		m.groupOrder = append(m.groupOrder, anchor.Group)
	}

	m.groups[anchor.Group] = append(m.groups[anchor.Group], AlbumEntry{
		FullURL:      anchor.Href,
		ThumbnailURL: anchor.Thumbnail,
	})
}

/*
groupName follows lightbox conventions: data-lightbox="name" or
rel="lightbox[name]". A bare rel="lightbox" is an album of its own, keyed by
its href.
*/
func groupName(a *html.Node) string {
	if name := attr(a, "data-lightbox"); name != "" {
		return name
	}

	rel := attr(a, "rel")
	start := strings.Index(rel, "[")
	end := strings.LastIndex(rel, "]")

	if start >= 0 && end > start+1 {
		return rel[start+1 : end]
	}

	return attr(a, "href")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}

	return ""
}

func resolve(base *url.URL, ref string) string {
	if ref == "" || base == nil {
		return ref
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	return base.ResolveReference(u).String()
}
