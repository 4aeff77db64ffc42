package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the board.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	feedCacheHits   prometheus.Counter
	feedCacheMisses prometheus.Counter
	sseSubscribers  prometheus.Gauge
	eventsPublished prometheus.Counter

	feedHitCount  uint64
	feedMissCount uint64
}

// NewMetricsService registers the board's Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	feedCacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_cache_hits_total",
		Help: "Total public feed cache hits",
	})

	feedCacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_cache_misses_total",
		Help: "Total public feed cache misses",
	})

	sseSubscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feed_stream_subscribers",
		Help: "Currently connected feed stream subscribers",
	})

	eventsPublished := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_events_published_total",
		Help: "Total notice change events broadcast to the feed stream",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, feedCacheHits, feedCacheMisses, sseSubscribers, eventsPublished, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		feedCacheHits:   feedCacheHits,
		feedCacheMisses: feedCacheMisses,
		sseSubscribers:  sseSubscribers,
		eventsPublished: eventsPublished,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// FeedCacheHit counts a served-from-cache feed read.
func (m *MetricsService) FeedCacheHit() {
	if m == nil {
		return
	}
	m.feedCacheHits.Inc()
	atomic.AddUint64(&m.feedHitCount, 1)
}

// FeedCacheMiss counts a feed read that went to the store.
func (m *MetricsService) FeedCacheMiss() {
	if m == nil {
		return
	}
	m.feedCacheMisses.Inc()
	atomic.AddUint64(&m.feedMissCount, 1)
}

// SetStreamSubscribers tracks the live subscriber count, fed from the hub's
// client-count callback.
func (m *MetricsService) SetStreamSubscribers(n int) {
	if m == nil {
		return
	}
	m.sseSubscribers.Set(float64(n))
}

// EventPublished counts one broadcast notice change event.
func (m *MetricsService) EventPublished() {
	if m == nil {
		return
	}
	m.eventsPublished.Inc()
}
