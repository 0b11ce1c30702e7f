package gameserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var heartbeats = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ghost_server_heartbeats_total",
	Help: "Heartbeats accepted from game servers.",
})
