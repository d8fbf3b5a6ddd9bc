package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PageRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listings_page_requests_total",
			Help: "Listings page requests by outcome",
		},
		[]string{"source", "outcome"},
	)

	PageRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listings_page_retries_total",
			Help: "Transport-level retries issued for listings pages",
		},
		[]string{"source"},
	)

	FetchCycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listings_fetch_all_duration_seconds",
			Help:    "Duration of a full aggregate fetch",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	VehiclesFetched = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "listings_vehicles_fetched",
			Help: "Number of vehicles produced by the last successful aggregate fetch",
		},
	)

	SearchRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vehicle_search_requests_total",
			Help: "Search queries answered by the HTTP API",
		},
	)
)
