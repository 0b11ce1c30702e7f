package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	streamSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ghost",
		Name:      "feed_stream_subscribers",
		Help:      "Open live drop stream connections.",
	})
	droppedStreamEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ghost",
		Name:      "feed_stream_dropped_events_total",
		Help:      "Events skipped for subscribers whose channel was full.",
	})
)
