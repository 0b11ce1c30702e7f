package ledger

import (
	"context"
	"errors"
	"testing"

	"ghostserver/internal/store"
)

func newTestLedger(t *testing.T) (*Ledger, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	return New(repo, 100), repo
}

func mustRegister(t *testing.T, l *Ledger, steamID string) {
	t.Helper()
	if _, err := l.Register(context.Background(), store.PlayerIdentity{SteamID: steamID, Username: "n"}); err != nil {
		t.Fatalf("register: %v", err)
	}
}

func TestRegisterScenario(t *testing.T) {
	l, repo := newTestLedger(t)
	ctx := context.Background()

	reg, err := l.Register(ctx, store.PlayerIdentity{SteamID: "S1", Username: "ghost"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !reg.IsNew || reg.Player.Souls != 100 {
		t.Fatalf("unexpected registration: %+v", reg)
	}
	txs := repo.txs["S1"]
	if len(txs) != 1 || txs[0].Category != store.CategoryWelcomeBonus || txs[0].BalanceAfter != 100 {
		t.Fatalf("unexpected welcome log: %+v", txs)
	}

	got, err := l.Debit(ctx, store.LedgerEntry{SteamID: "S1", Amount: 30, Category: store.CategoryCaseOpen})
	if err != nil {
		t.Fatalf("debit 30: %v", err)
	}
	if got.Balance != 70 {
		t.Fatalf("expected 70, got %d", got.Balance)
	}

	_, err = l.Debit(ctx, store.LedgerEntry{SteamID: "S1", Amount: 200, Category: store.CategoryCaseOpen})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if p, _ := l.Balance(ctx, "S1"); p.Souls != 70 {
		t.Fatalf("failed debit changed balance: %d", p.Souls)
	}
	if len(repo.txs["S1"]) != 2 {
		t.Fatalf("failed debit left an entry")
	}

	reg, err = l.Register(ctx, store.PlayerIdentity{SteamID: "S1"})
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if reg.IsNew || reg.Player.Souls != 70 {
		t.Fatalf("re-register should be a no-op: %+v", reg)
	}
}

func TestCreditValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	mustRegister(t, l, "S1")

	cases := []struct {
		name  string
		entry store.LedgerEntry
		want  error
	}{
		{"zero amount", store.LedgerEntry{SteamID: "S1", Amount: 0, Category: "bonus"}, ErrInvalidAmount},
		{"negative amount", store.LedgerEntry{SteamID: "S1", Amount: -5, Category: "bonus"}, ErrInvalidAmount},
		{"bad category", store.LedgerEntry{SteamID: "S1", Amount: 5, Category: "Bad Tag"}, ErrInvalidCategory},
		{"blank steam id", store.LedgerEntry{SteamID: " ", Amount: 5, Category: "bonus"}, ErrInvalidSteamID},
		{"unknown player", store.LedgerEntry{SteamID: "nobody", Amount: 5, Category: "bonus"}, ErrPlayerNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := l.Credit(ctx, tc.entry); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCreditLaw(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	mustRegister(t, l, "S1")

	before, _ := l.Balance(ctx, "S1")
	got, err := l.Credit(ctx, store.LedgerEntry{SteamID: "S1", Amount: 45, Category: "tournament_prize"})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if got.Balance != before.Souls+45 || got.TotalSoulsEarned != before.TotalSoulsEarned+45 {
		t.Fatalf("credit law broken: before=%+v after=%+v", before, got)
	}
}

func TestIdempotentReplay(t *testing.T) {
	l, repo := newTestLedger(t)
	ctx := context.Background()
	mustRegister(t, l, "S1")

	e := store.LedgerEntry{SteamID: "S1", Amount: 20, Category: "case_open", IdempotencyKey: "round-7"}
	first, err := l.Debit(ctx, e)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	second, err := l.Debit(ctx, e)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !second.Replayed || second.Balance != first.Balance {
		t.Fatalf("expected replay, got %+v", second)
	}
	if len(repo.txs["S1"]) != 2 {
		t.Fatalf("replay appended an entry")
	}
}

func TestAdjustAbsolute(t *testing.T) {
	l, repo := newTestLedger(t)
	ctx := context.Background()
	mustRegister(t, l, "S1")

	if _, err := l.AdjustAbsolute(ctx, "S1", -1, "owner"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	got, err := l.AdjustAbsolute(ctx, "S1", 40, "owner")
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got.Balance != 40 {
		t.Fatalf("expected 40, got %d", got.Balance)
	}
	last := repo.txs["S1"][len(repo.txs["S1"])-1]
	if last.Amount != -60 || last.Category != store.CategoryAdmin {
		t.Fatalf("expected -60 admin delta, got %+v", last)
	}
	if _, err := l.AdjustAbsolute(ctx, "S1", 40, "owner"); err != nil {
		t.Fatalf("noop adjust: %v", err)
	}
	if len(repo.txs["S1"]) != 2 {
		t.Fatalf("zero delta appended an entry")
	}
	if _, err := l.AdjustAbsolute(ctx, "nobody", 10, "owner"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected player not found, got %v", err)
	}
}

func TestSyncRejectsNegativeCounters(t *testing.T) {
	l, _ := newTestLedger(t)
	mustRegister(t, l, "S1")

	if _, err := l.Sync(context.Background(), store.SyncInput{SteamID: "S1", PlaytimeMinutes: -3}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	res, err := l.Sync(context.Background(), store.SyncInput{SteamID: "S1", SoulsToAdd: 15, PlaytimeMinutes: 30})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res.Player.Souls != 115 || res.Player.PlaytimeMinutes != 30 {
		t.Fatalf("unexpected sync result: %+v", res.Player)
	}
}

func TestConnectUpdatesDisplayName(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	mustRegister(t, l, "S1")

	reg, err := l.Connect(ctx, store.PlayerIdentity{SteamID: "S1", Username: "renamed"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if reg.IsNew || reg.Player.Username != "renamed" || reg.Player.Souls != 100 {
		t.Fatalf("unexpected connect: %+v", reg.Player)
	}
}

func TestReusedKeyForDifferentOperationConflicts(t *testing.T) {
	l, repo := newTestLedger(t)
	ctx := context.Background()
	mustRegister(t, l, "S1")

	if _, err := l.Credit(ctx, store.LedgerEntry{SteamID: "S1", Amount: 50, Category: store.CategoryBonus, IdempotencyKey: "k"}); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := l.Debit(ctx, store.LedgerEntry{SteamID: "S1", Amount: 50, Category: store.CategoryBonus, IdempotencyKey: "k"}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for debit reusing a credit key, got %v", err)
	}
	if _, err := l.Credit(ctx, store.LedgerEntry{SteamID: "S1", Amount: 51, Category: store.CategoryBonus, IdempotencyKey: "k"}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for different amount, got %v", err)
	}
	if p := repo.players["S1"]; p.Souls != 150 || len(repo.txs["S1"]) != 2 {
		t.Fatalf("conflicting retries changed state: souls=%d entries=%d", p.Souls, len(repo.txs["S1"]))
	}
}

func TestPlaytimeOnlySyncReplays(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	mustRegister(t, l, "S1")

	in := store.SyncInput{SteamID: "S1", PlaytimeMinutes: 12, Wins: 1, IdempotencyKey: "sync-9"}
	if _, err := l.Sync(ctx, in); err != nil {
		t.Fatalf("sync: %v", err)
	}
	res, err := l.Sync(ctx, in)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !res.Replayed || res.Player.PlaytimeMinutes != 12 || res.Player.Wins != 1 {
		t.Fatalf("retry re-applied: %+v replayed=%v", res.Player, res.Replayed)
	}
	in.PlaytimeMinutes = 13
	if _, err := l.Sync(ctx, in); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for changed payload, got %v", err)
	}
}

func TestAmountsAboveCapAreInvalid(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	mustRegister(t, l, "S1")

	if _, err := l.Credit(ctx, store.LedgerEntry{SteamID: "S1", Amount: MaxAmount + 1, Category: store.CategoryBonus}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("credit: expected invalid amount, got %v", err)
	}
	if _, err := l.AdjustAbsolute(ctx, "S1", MaxAmount+1, "owner"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("adjust: expected invalid amount, got %v", err)
	}
	if _, err := l.Sync(ctx, store.SyncInput{SteamID: "S1", SoulsToAdd: MaxAmount + 1}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("sync: expected invalid amount, got %v", err)
	}
	if _, err := l.Credit(ctx, store.LedgerEntry{SteamID: "S1", Amount: MaxAmount, Category: store.CategoryBonus}); err != nil {
		t.Fatalf("credit at cap: %v", err)
	}
}

type recordingSink struct{ changes []BalanceChange }

func (r *recordingSink) OnBalance(_ context.Context, c BalanceChange) {
	r.changes = append(r.changes, c)
}

func TestBalanceSinkSeesCommittedChanges(t *testing.T) {
	sink := &recordingSink{}
	l := New(newMemRepo(), 100, sink)
	ctx := context.Background()

	if _, err := l.Register(ctx, store.PlayerIdentity{SteamID: "S1", Username: "ghost"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	e := store.LedgerEntry{SteamID: "S1", Amount: 30, Category: store.CategoryCaseOpen, IdempotencyKey: "d1"}
	if _, err := l.Debit(ctx, e); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if _, err := l.Debit(ctx, e); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if _, err := l.Debit(ctx, store.LedgerEntry{SteamID: "S1", Amount: 500, Category: store.CategoryCaseOpen}); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if _, err := l.AdjustAbsolute(ctx, "S1", 5, "owner"); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if _, err := l.Sync(ctx, store.SyncInput{SteamID: "S1", SoulsToAdd: 10}); err != nil {
		t.Fatalf("sync: %v", err)
	}

	want := []int64{100, 70, 5, 15}
	if len(sink.changes) != len(want) {
		t.Fatalf("expected %d notifications, got %+v", len(want), sink.changes)
	}
	for i, c := range sink.changes {
		if c.SteamID != "S1" || c.Balance != want[i] {
			t.Fatalf("change %d: got %+v want balance %d", i, c, want[i])
		}
	}
	if sink.changes[0].Player == nil || sink.changes[0].Player.Username != "ghost" {
		t.Fatalf("register should carry the player row: %+v", sink.changes[0])
	}
}
