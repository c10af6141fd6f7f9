package preload

import (
	"log/slog"
	"sync"
)

type SchedulerConfig struct {
	Cache *Cache

	// CurrentIndex reports the index the viewer is displaying right now.
	CurrentIndex func() int

	// OnDisplayReady is called when a full resolution request finishes
	// while its index is still the one on display.
	OnDisplayReady func(request Request)

	Metrics *Metrics
}

/*
Scheduler drains a Queue one fetch at a time so that background preloading
never competes with more than one request for bandwidth.
*/
type Scheduler struct {
	busy           bool
	cache          *Cache
	currentIndex   func() int
	metrics        *Metrics
	mu             sync.Mutex
	onDisplayReady func(request Request)
	queue          Queue
}

func NewScheduler(config SchedulerConfig) *Scheduler {
	result := &Scheduler{
		cache:          config.Cache,
		currentIndex:   config.CurrentIndex,
		metrics:        config.Metrics,
		onDisplayReady: config.OnDisplayReady,
	}

	if result.currentIndex == nil {
		result.currentIndex = func() int { return -1 }
	}

	return result
}

// Enqueue adds requests without starting any work. Call Pump to start.
func (s *Scheduler) Enqueue(requests ...Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue.Push(requests...)
	s.metrics.setQueueDepth(s.queue.Len())
}

// Replace discards everything still pending and queues requests instead.
// A fetch already in flight is left to finish.
func (s *Scheduler) Replace(requests []Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue.Reset()
	s.queue.Push(requests...)
	s.metrics.setQueueDepth(s.queue.Len())
}

func (s *Scheduler) Reprioritize(current int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue.Reprioritize(current)
}

func (s *Scheduler) Pending() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.queue.Snapshot()
}

func (s *Scheduler) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.busy
}

/*
Pump starts the next fetch unless one is already in flight. Requests whose
url is already cached are dropped on the way without starting a fetch.
*/
func (s *Scheduler) Pump() {
	var (
		request Request
		ok      bool
	)

	s.mu.Lock()

	for {
		if s.busy {
			s.mu.Unlock()
			return
		}

		if request, ok = s.queue.Pop(); !ok {
			s.metrics.setQueueDepth(0)
			s.mu.Unlock()
			return
		}

		if _, cached := s.cache.Get(request.URL); !cached {
			break
		}
	}

	s.busy = true
	s.metrics.setQueueDepth(s.queue.Len())
	s.mu.Unlock()

	slog.Debug("preloading image", "url", request.URL, "index", request.Index, "priority", request.Priority, "thumbnail", request.IsThumbnail)

	s.cache.Ensure(request.URL, request.IsThumbnail, func() {
		s.complete(request)
	})
}

func (s *Scheduler) complete(request Request) {
	/*
	 * The current index is read now rather than when the request was queued.
	 * If the user has moved on, the finished image is simply left in the cache.
	 */
	if !request.IsThumbnail && s.onDisplayReady != nil && s.currentIndex() == request.Index {
		if _, ok := s.cache.Get(request.URL); ok {
			s.onDisplayReady(request)
		}
	}

	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()

	s.Pump()
}
