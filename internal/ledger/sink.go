package ledger

import (
	"context"

	"ghostserver/internal/store"
)

// BalanceChange is a committed balance. Player is set when the operation
// already holds the full row (register, connect, sync).
type BalanceChange struct {
	SteamID string
	Balance int64
	Player  *store.Player
}

// BalanceSink observes committed balance changes. It runs after commit, on
// the caller's goroutine, and cannot fail the operation.
type BalanceSink interface {
	OnBalance(ctx context.Context, c BalanceChange)
}

func (l *Ledger) notify(ctx context.Context, c BalanceChange) {
	for _, sink := range l.sinks {
		sink.OnBalance(ctx, c)
	}
}
