package kafka

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	publishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Storefront events handed to Kafka, by topic and outcome (ok or error).",
		},
		[]string{"topic", "outcome"},
	)

	publishSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "events",
			Name:      "publish_duration_seconds",
			Help:      "Time spent in a single Kafka write.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"topic"},
	)
)

func observePublish(topic string, start time.Time, err error) {
	publishSeconds.WithLabelValues(topic).Observe(time.Since(start).Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	publishTotal.WithLabelValues(topic, outcome).Inc()
}
