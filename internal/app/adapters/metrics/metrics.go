package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TrackedGames = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "board_tracked_games",
		Help: "Number of games currently tracked by the fetcher",
	})

	PushClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "board_push_clients",
		Help: "Number of connected SSE/WebSocket push clients",
	})

	PushEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_push_events_total",
			Help: "Total game_updated events published, per game",
		},
		[]string{"game_id"},
	)

	FetchTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "board_fetch_ticks_total",
		Help: "Total completed fetcher ticks",
	})

	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "board_fetch_tick_seconds",
			Help:    "Duration of a fetcher tick",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_api_requests_total",
			Help: "Total API requests per route and status",
		},
		[]string{"route", "status"},
	)
)
