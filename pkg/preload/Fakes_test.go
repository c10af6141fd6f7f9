package preload

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
)

var errSimulatedLoad = errors.New("simulated load error")

func pngBytes(width, height int) []byte {
	var buf bytes.Buffer

	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		panic(err)
	}

	return buf.Bytes()
}

type fakeFetcher struct {
	mu       sync.Mutex
	calls    []string
	failures map[string]bool
	gates    map[string]chan struct{}
	bodies   map[string][]byte
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		failures: map[string]bool{},
		gates:    map[string]chan struct{}{},
		bodies:   map[string][]byte{},
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (Fetched, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	gate := f.gates[url]
	fail := f.failures[url]
	body, ok := f.bodies[url]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	if fail {
		return Fetched{}, errSimulatedLoad
	}

	if !ok {
		body = pngBytes(40, 30)
	}

	return Fetched{Data: body, ContentType: "image/png"}, nil
}

func (f *fakeFetcher) gate(url string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	gate := make(chan struct{})
	f.gates[url] = gate
	return gate
}

func (f *fakeFetcher) fail(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failures[url] = true
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]string, len(f.calls))
	copy(result, f.calls)
	return result
}

func (f *fakeFetcher) CallCount(url string) int {
	count := 0

	for _, call := range f.Calls() {
		if call == url {
			count++
		}
	}

	return count
}

type fakeViewer struct {
	mu                 sync.Mutex
	album              []AlbumEntry
	current            int
	displayed          string
	width              int
	height             int
	placeholder        bool
	loaderShown        bool
	startCalls         int
	changeCalls        int
	noDisplay          bool
	panicOnPlaceholder bool
}

func newFakeViewer(album ...AlbumEntry) *fakeViewer {
	return &fakeViewer{album: album, current: -1}
}

func (v *fakeViewer) CurrentIndex() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.current
}

func (v *fakeViewer) Album() []AlbumEntry {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.album
}

func (v *fakeViewer) Start(index int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.startCalls++
	v.current = index
	return nil
}

func (v *fakeViewer) ChangeImage(index int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.changeCalls++
	v.current = index

	if index >= 0 && index < len(v.album) {
		v.displayed = v.album[index].FullURL
		v.placeholder = false
	}

	return nil
}

func (v *fakeViewer) Display() Display {
	if v.noDisplay {
		return nil
	}

	return v
}

func (v *fakeViewer) ShowPlaceholder(url string, width, height int) {
	if v.panicOnPlaceholder {
		panic("placeholder surface missing")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.displayed = url
	v.width = width
	v.height = height
	v.placeholder = true
}

func (v *fakeViewer) ShowImage(url string, width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.displayed = url
	v.width = width
	v.height = height
	v.placeholder = false
}

func (v *fakeViewer) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.width = width
	v.height = height
}

func (v *fakeViewer) ShowLoader() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.loaderShown = true
}

func (v *fakeViewer) DisplayedURL() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.displayed
}

func (v *fakeViewer) state() (string, bool, int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.displayed, v.placeholder, v.width, v.height
}
