package preload

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the preload cache and
// scheduler. A nil *Metrics is valid and records nothing.
type Metrics struct {
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	Fetches       *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	QueueDepth    prometheus.Gauge
	Swaps         prometheus.Counter
	Fallbacks     prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. When reg is
// nil the collectors are created but not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lightboxpreload",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Ensure calls answered from the image cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lightboxpreload",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Ensure calls that required a fetch",
		}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lightboxpreload",
			Subsystem: "cache",
			Name:      "fetches_total",
			Help:      "Image fetches by result",
		}, []string{"result"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lightboxpreload",
			Subsystem: "cache",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching and decoding an image",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lightboxpreload",
			Subsystem: "scheduler",
			Name:      "queue_depth",
			Help:      "Preload requests waiting to be serviced",
		}),
		Swaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lightboxpreload",
			Subsystem: "viewer",
			Name:      "swaps_total",
			Help:      "Placeholders replaced by the full resolution image",
		}),
		Fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lightboxpreload",
			Subsystem: "viewer",
			Name:      "fallbacks_total",
			Help:      "Enhancements abandoned in favour of the original viewer behaviour",
		}),
	}

	if reg != nil {
		collectors := []prometheus.Collector{
			m.CacheHits,
			m.CacheMisses,
			m.Fetches,
			m.FetchDuration,
			m.QueueDepth,
			m.Swaps,
			m.Fallbacks,
		}

		for _, c := range collectors {
			if err := reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	}

	return m
}

func (m *Metrics) recordHit() {
	if m == nil {
		return
	}

	m.CacheHits.Inc()
}

func (m *Metrics) recordMiss() {
	if m == nil {
		return
	}

	m.CacheMisses.Inc()
}

func (m *Metrics) recordFetch(result string, started time.Time) {
	if m == nil {
		return
	}

	m.Fetches.WithLabelValues(result).Inc()
	m.FetchDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) setQueueDepth(depth int) {
	if m == nil {
		return
	}

	m.QueueDepth.Set(float64(depth))
}

func (m *Metrics) recordSwap() {
	if m == nil {
		return
	}

	m.Swaps.Inc()
}

func (m *Metrics) recordFallback() {
	if m == nil {
		return
	}

	m.Fallbacks.Inc()
}
