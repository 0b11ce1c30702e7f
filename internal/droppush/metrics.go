package droppush

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pushResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ghost",
		Name:      "drop_push_total",
		Help:      "Drop webhook push outcomes.",
	}, []string{"result"})
	pushQueueLen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ghost",
		Name:      "drop_push_queue_len",
		Help:      "Jobs waiting for a push worker.",
	})
)

func countPush(result string) {
	pushResults.WithLabelValues(result).Inc()
}
