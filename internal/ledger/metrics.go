package ledger

import (
	"ghostserver/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ghost",
		Name:      "ledger_ops_total",
		Help:      "Applied ledger operations by kind and category.",
	}, []string{"op", "category"})
	ledgerSouls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ghost",
		Name:      "ledger_souls_total",
		Help:      "Souls moved by direction.",
	}, []string{"op"})
	ledgerReplays = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ghost",
		Name:      "ledger_replays_total",
		Help:      "Operations answered from a prior idempotency key.",
	}, []string{"op"})
	ledgerRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ghost",
		Name:      "ledger_rejections_total",
		Help:      "Ledger operations refused by the store.",
	}, []string{"reason"})
	playersRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ghost",
		Name:      "players_registered_total",
		Help:      "Players created.",
	})
)

func observe(op, category string, amount int64, replayed bool) {
	if replayed {
		ledgerReplays.WithLabelValues(op).Inc()
		return
	}
	ledgerOps.WithLabelValues(op, categoryLabel(category)).Inc()
	ledgerSouls.WithLabelValues(op).Add(float64(amount))
}

// categoryLabel folds caller-supplied tags into "other" to keep label
// cardinality bounded.
func categoryLabel(c string) string {
	switch c {
	case store.CategoryWelcomeBonus, store.CategoryCaseOpen, store.CategoryAdmin, store.CategoryBonus, store.CategoryPlaytime:
		return c
	default:
		return "other"
	}
}
