package requestbuilder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	buildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "requestbuilder_builds_total",
		Help: "Total number of vendor payment requests built, by result.",
	}, []string{"result"})

	buildDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "requestbuilder_build_duration_seconds",
		Help:    "Time spent building vendor payment requests.",
		Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
	})
)

// GetBuildsTotal exposes the build counter for tests.
func GetBuildsTotal() *prometheus.CounterVec { return buildsTotal }

// GetBuildDurationSeconds exposes the build duration histogram for tests.
func GetBuildDurationSeconds() prometheus.Histogram { return buildDurationSeconds }
