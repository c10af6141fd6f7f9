package viewer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/adampresley/lightboxpreload/pkg/preload"
)

type RegistryConfig struct {
	Fetcher              preload.Fetcher
	IdleTimeout          time.Duration
	Mapper               *preload.ThumbnailMapper
	MaxConcurrentFetches int
	Metrics              *preload.Metrics
	ShutdownCtx          context.Context
	WrapAround           bool
}

// Session pairs a browser's viewer with the preloader enhancing it. Calls
// that drive the viewer hold Lock so navigation for one browser is serialized.
type Session struct {
	sync.Mutex

	ID        string
	Viewer    *SessionViewer
	Preloader *preload.Preloader

	lastSeen time.Time
}

/*
Registry hands out one Session per viewer session id. Sessions that sit idle
longer than the idle timeout are closed, releasing their image cache.
*/
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	fetcher              preload.Fetcher
	idleTimeout          time.Duration
	mapper               *preload.ThumbnailMapper
	maxConcurrentFetches int
	metrics              *preload.Metrics
	shutdownCtx          context.Context
	wrapAround           bool

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	wg            sync.WaitGroup

	now func() time.Time
}

func NewRegistry(config RegistryConfig) *Registry {
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = 30 * time.Minute
	}

	return &Registry{
		sessions:             map[string]*Session{},
		fetcher:              config.Fetcher,
		idleTimeout:          config.IdleTimeout,
		mapper:               config.Mapper,
		maxConcurrentFetches: config.MaxConcurrentFetches,
		metrics:              config.Metrics,
		shutdownCtx:          config.ShutdownCtx,
		wrapAround:           config.WrapAround,
		stopCleanup:          make(chan struct{}),
		now:                  time.Now,
	}
}

func (r *Registry) GetOrCreate(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[id]; ok {
		session.lastSeen = r.now()
		return session
	}

	sessionViewer := NewSessionViewer()

	session := &Session{
		ID:     id,
		Viewer: sessionViewer,
		Preloader: preload.NewPreloader(preload.PreloaderConfig{
			Fetcher:              r.fetcher,
			Mapper:               r.mapper,
			MaxConcurrentFetches: r.maxConcurrentFetches,
			Metrics:              r.metrics,
			ShutdownCtx:          r.shutdownCtx,
			Viewer:               sessionViewer,
			WrapAround:           r.wrapAround,
		}),
		lastSeen: r.now(),
	}

	r.sessions[id] = session
	slog.Debug("viewer session created", "sessionID", id)

	return session
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CloseIdle closes every session not seen since the idle timeout and
// returns how many were closed.
func (r *Registry) CloseIdle() int {
	idle := []*Session{}
	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()

	for id, session := range r.sessions {
		if session.lastSeen.Before(cutoff) {
			idle = append(idle, session)
			delete(r.sessions, id)
		}
	}

	r.mu.Unlock()

	for _, session := range idle {
		session.Preloader.Close()
		slog.Debug("idle viewer session closed", "sessionID", session.ID)
	}

	return len(idle)
}

// StartCleanupRoutine starts a periodic routine that closes idle sessions
func (r *Registry) StartCleanupRoutine(interval time.Duration) {
	r.cleanupTicker = time.NewTicker(interval)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		for {
			select {
			case <-r.cleanupTicker.C:
				if closed := r.CloseIdle(); closed > 0 {
					slog.Info("closed idle viewer sessions", "count", closed)
				}
			case <-r.stopCleanup:
				r.cleanupTicker.Stop()
				return
			}
		}
	}()

	slog.Info("viewer session cleanup routine started", "interval", interval)
}

// StopCleanupRoutine stops the cleanup routine
func (r *Registry) StopCleanupRoutine() {
	if r.cleanupTicker != nil {
		close(r.stopCleanup)
		r.wg.Wait()
		r.cleanupTicker = nil
		slog.Info("viewer session cleanup routine stopped")
	}
}

// Close closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = map[string]*Session{}
	r.mu.Unlock()

	for _, session := range sessions {
		session.Preloader.Close()
	}
}
