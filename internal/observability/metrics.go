package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec
	realtimeConnections prometheus.Gauge
	realtimeEventsTotal *prometheus.CounterVec
	notificationsTotal  *prometheus.CounterVec
	pushDeliveriesTotal *prometheus.CounterVec
	feedLatencySeconds  *prometheus.HistogramVec
	engagementToggles   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the
// service. Safe to call repeatedly.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		realtimeConnections = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "realtime_connections_active",
			Help: "Number of websocket connections currently attached to the hub.",
		})

		realtimeEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realtime_events_total",
			Help: "Total number of realtime events published, by event name.",
		}, []string{"event"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Total number of notifications dispatched, by kind.",
		}, []string{"kind"})

		pushDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "push_deliveries_total",
			Help: "Push fallback delivery attempts, by outcome.",
		}, []string{"outcome"})

		feedLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feed_assembly_seconds",
			Help:    "Latency distribution for feed assembly, by tab.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"tab"})

		engagementToggles = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_toggles_total",
			Help: "Like/repost toggle operations, by relation and direction.",
		}, []string{"relation", "direction"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			realtimeConnections,
			realtimeEventsTotal,
			notificationsTotal,
			pushDeliveriesTotal,
			feedLatencySeconds,
			engagementToggles,
		)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for served requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// RealtimeConnections exposes the active websocket connection gauge.
func RealtimeConnections() prometheus.Gauge {
	RegisterMetrics()
	return realtimeConnections
}

// RealtimeEventsTotal exposes the realtime event counter.
func RealtimeEventsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return realtimeEventsTotal
}

// NotificationsPublishedTotal exposes the notification counter.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// PushDeliveriesTotal exposes the push delivery counter.
func PushDeliveriesTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return pushDeliveriesTotal
}

// FeedLatency exposes the feed assembly histogram.
func FeedLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return feedLatencySeconds
}

// EngagementToggles exposes the toggle counter.
func EngagementToggles() *prometheus.CounterVec {
	RegisterMetrics()
	return engagementToggles
}
