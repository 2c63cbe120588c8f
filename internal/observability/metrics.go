package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrappages_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scrappages_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ContentCreated counts scraps, comments and replies created.
	ContentCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrappages_content_created_total",
		Help: "Total number of scraps and comments created",
	}, []string{"kind"})

	// LikeToggles counts like and unlike calls that changed state.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrappages_like_toggles_total",
		Help: "Total number of like state changes",
	}, []string{"target", "action"})

	// StorageCleanupFailures counts stored objects that could not be removed.
	StorageCleanupFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrappages_file_cleanup_failures_total",
		Help: "Total number of best-effort file removals that failed",
	}, []string{"driver"})

	// CacheLookups counts profile cache hits and misses.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrappages_cache_lookups_total",
		Help: "Total number of cache lookups by result",
	}, []string{"result"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scrappages_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts WebSocket events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrappages_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrappages_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)
