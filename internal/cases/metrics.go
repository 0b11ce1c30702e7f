package cases

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var caseOpens = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ghost",
	Name:      "case_opens_total",
	Help:      "Committed case opens by case and rarity.",
}, []string{"case_id", "rarity"})
