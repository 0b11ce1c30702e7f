package ledger

import (
	"context"

	"ghostserver/internal/store"
)

type AuditReport struct {
	SteamID       string `json:"steam_id"`
	Entries       int    `json:"entries"`
	ReplayedSum   int64  `json:"replayed_sum"`
	LiveBalance   int64  `json:"live_balance"`
	Consistent    bool   `json:"consistent"`
	FirstBadEntry string `json:"first_bad_entry,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// Audit replays the player's log from zero and checks every balance_after
// against the running sum, and the final sum against the live balance. The
// player row and the log come from one snapshot.
func (l *Ledger) Audit(ctx context.Context, steamID string) (AuditReport, error) {
	p, txs, err := l.repo.LedgerSnapshot(ctx, steamID)
	if err != nil {
		return AuditReport{}, mapStoreErr(err)
	}
	return Replay(p, txs), nil
}

// Replay is the pure part of Audit.
func Replay(p *store.Player, txs []store.SoulTransaction) AuditReport {
	r := AuditReport{SteamID: p.SteamID, Entries: len(txs), LiveBalance: p.Souls, Consistent: true}
	var sum int64
	for _, tx := range txs {
		sum += tx.Amount
		if r.Consistent {
			switch {
			case sum < 0:
				r.Consistent, r.FirstBadEntry, r.Reason = false, tx.ID, "negative_running_sum"
			case tx.BalanceAfter != sum:
				r.Consistent, r.FirstBadEntry, r.Reason = false, tx.ID, "balance_after_mismatch"
			}
		}
	}
	r.ReplayedSum = sum
	if r.Consistent && sum != p.Souls {
		r.Consistent, r.Reason = false, "live_balance_mismatch"
	}
	return r
}
