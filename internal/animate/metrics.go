package animate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	imagesIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animator_images_ingested_total",
			Help: "Image selections by result",
		},
		[]string{"result"},
	)

	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animator_generations_total",
			Help: "Finished video generations by outcome",
		},
		[]string{"outcome"},
	)

	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animator_generation_duration_seconds",
			Help:    "Time from submission to result or failure",
			Buckets: []float64{10, 30, 60, 120, 180, 300, 600, 900},
		},
		[]string{"outcome"},
	)

	generationsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "animator_generations_in_flight",
			Help: "Generations currently submitted or polling",
		},
	)

	pollIterations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "animator_poll_iterations_total",
			Help: "Operation status queries sent to the video service",
		},
	)

	downloadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "animator_video_download_bytes",
			Help:    "Size of downloaded result videos",
			Buckets: prometheus.ExponentialBuckets(256<<10, 2, 10),
		},
	)

	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "animator_sessions_active",
			Help: "Sessions held in memory",
		},
	)
)

func recordIngest(result string) {
	imagesIngestedTotal.WithLabelValues(result).Inc()
}

func recordGeneration(outcome string, elapsed time.Duration) {
	generationsTotal.WithLabelValues(outcome).Inc()
	generationDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
