package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RouteNavigations counts navigations that matched a route.
	RouteNavigations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "houses_market_route_navigations_total",
			Help: "Total number of navigations per matched route",
		},
		[]string{"route"},
	)

	// UnmatchedNavigations counts requests that matched no route.
	UnmatchedNavigations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "houses_market_unmatched_navigations_total",
			Help: "Total number of navigations that matched no route",
		},
	)

	// ViewResolutions counts lazy view resolutions by outcome.
	ViewResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "houses_market_view_resolutions_total",
			Help: "Total number of lazy view resolutions",
		},
		[]string{"view", "result"},
	)

	// ActiveSessions tracks live page-session state records.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "houses_market_active_sessions",
			Help: "Number of live page-session state records",
		},
	)

	// Purchases counts buyReload signals.
	Purchases = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "houses_market_purchases_total",
			Help: "Total number of recorded purchases",
		},
	)

	// MetadataFetches counts token metadata requests by outcome.
	MetadataFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "houses_market_metadata_fetches_total",
			Help: "Total number of token metadata fetches",
		},
		[]string{"result"},
	)

	// ContractCallLatency tracks read calls against the houses contract.
	ContractCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "houses_market_contract_call_latency_seconds",
			Help:    "Contract read call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)
