package ledger

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"ghostserver/internal/store"

	"github.com/rs/zerolog/log"
)

// Repository is the storage the ledger needs. *store.Store satisfies it.
type Repository interface {
	GetPlayerBySteamID(ctx context.Context, steamID string) (*store.Player, error)
	RegisterPlayer(ctx context.Context, in store.PlayerIdentity, welcomeBonus int64, touch bool) (*store.Player, bool, error)
	SyncPlayer(ctx context.Context, in store.SyncInput) (*store.Player, store.Applied, error)
	Credit(ctx context.Context, e store.LedgerEntry) (store.Applied, error)
	Debit(ctx context.Context, e store.LedgerEntry) (store.Applied, error)
	SetBalance(ctx context.Context, steamID string, newBalance int64, category, description string) (store.Applied, error)
	LedgerSnapshot(ctx context.Context, steamID string) (*store.Player, []store.SoulTransaction, error)
}

// MaxAmount bounds a single credit, debit, sync reward or absolute balance.
const MaxAmount int64 = 1_000_000_000_000

type Ledger struct {
	repo         Repository
	welcomeBonus int64
	sinks        []BalanceSink
}

func New(repo Repository, welcomeBonus int64, sinks ...BalanceSink) *Ledger {
	return &Ledger{repo: repo, welcomeBonus: welcomeBonus, sinks: sinks}
}

var categoryPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,31}$`)

func ValidCategory(c string) bool {
	return categoryPattern.MatchString(c)
}

func (l *Ledger) Credit(ctx context.Context, e store.LedgerEntry) (store.Applied, error) {
	if err := validateEntry(&e); err != nil {
		return store.Applied{}, err
	}
	out, err := l.repo.Credit(ctx, e)
	if err != nil {
		return store.Applied{}, mapStoreErr(err)
	}
	observe("credit", e.Category, e.Amount, out.Replayed)
	if !out.Replayed {
		l.notify(ctx, BalanceChange{SteamID: e.SteamID, Balance: out.Balance})
	}
	return out, nil
}

func (l *Ledger) Debit(ctx context.Context, e store.LedgerEntry) (store.Applied, error) {
	if err := validateEntry(&e); err != nil {
		return store.Applied{}, err
	}
	out, err := l.repo.Debit(ctx, e)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			ledgerRejections.WithLabelValues("insufficient_funds").Inc()
		}
		return store.Applied{}, mapStoreErr(err)
	}
	observe("debit", e.Category, e.Amount, out.Replayed)
	if !out.Replayed {
		l.notify(ctx, BalanceChange{SteamID: e.SteamID, Balance: out.Balance})
	}
	return out, nil
}

// AdjustAbsolute sets the balance to newBalance and records the signed
// difference as one admin entry attributed to actor.
func (l *Ledger) AdjustAbsolute(ctx context.Context, steamID string, newBalance int64, actor string) (store.Applied, error) {
	steamID = strings.TrimSpace(steamID)
	if steamID == "" {
		return store.Applied{}, ErrInvalidSteamID
	}
	if newBalance < 0 || newBalance > MaxAmount {
		return store.Applied{}, ErrInvalidAmount
	}
	desc := "Balance set by admin"
	if actor != "" {
		desc += " " + actor
	}
	out, err := l.repo.SetBalance(ctx, steamID, newBalance, store.CategoryAdmin, desc)
	if err != nil {
		return store.Applied{}, mapStoreErr(err)
	}
	if out.TransactionID != "" {
		log.Info().Str("steam_id", steamID).Int64("balance", out.Balance).Str("actor", actor).Msg("balance adjusted")
		ledgerOps.WithLabelValues("adjust", store.CategoryAdmin).Inc()
		l.notify(ctx, BalanceChange{SteamID: steamID, Balance: out.Balance})
	}
	return out, nil
}

type Registration struct {
	Player *store.Player
	IsNew  bool
}

// Register creates the player on first sight with the welcome bonus. An
// existing player is returned unchanged.
func (l *Ledger) Register(ctx context.Context, id store.PlayerIdentity) (Registration, error) {
	return l.register(ctx, id, false)
}

// Connect is Register plus a last-write-wins update of display attributes
// for an existing player.
func (l *Ledger) Connect(ctx context.Context, id store.PlayerIdentity) (Registration, error) {
	return l.register(ctx, id, true)
}

func (l *Ledger) register(ctx context.Context, id store.PlayerIdentity, touch bool) (Registration, error) {
	id.SteamID = strings.TrimSpace(id.SteamID)
	if id.SteamID == "" {
		return Registration{}, ErrInvalidSteamID
	}
	p, isNew, err := l.repo.RegisterPlayer(ctx, id, l.welcomeBonus, touch)
	if err != nil {
		return Registration{}, mapStoreErr(err)
	}
	if isNew {
		log.Info().Str("steam_id", p.SteamID).Int64("bonus", l.welcomeBonus).Msg("player registered")
		playersRegistered.Inc()
	}
	if isNew || touch {
		l.notify(ctx, BalanceChange{SteamID: p.SteamID, Balance: p.Souls, Player: p})
	}
	return Registration{Player: p, IsNew: isNew}, nil
}

type SyncResult struct {
	Player   *store.Player
	Replayed bool
}

func (l *Ledger) Sync(ctx context.Context, in store.SyncInput) (SyncResult, error) {
	in.SteamID = strings.TrimSpace(in.SteamID)
	if in.SteamID == "" {
		return SyncResult{}, ErrInvalidSteamID
	}
	if in.SoulsToAdd < 0 || in.PlaytimeMinutes < 0 || in.Wins < 0 || in.Losses < 0 ||
		in.SoulsToAdd > MaxAmount || in.PlaytimeMinutes > MaxAmount {
		return SyncResult{}, ErrInvalidAmount
	}
	p, applied, err := l.repo.SyncPlayer(ctx, in)
	if err != nil {
		return SyncResult{}, mapStoreErr(err)
	}
	if in.SoulsToAdd > 0 {
		observe("credit", store.CategoryPlaytime, in.SoulsToAdd, applied.Replayed)
		if !applied.Replayed {
			l.notify(ctx, BalanceChange{SteamID: p.SteamID, Balance: p.Souls, Player: p})
		}
	}
	return SyncResult{Player: p, Replayed: applied.Replayed}, nil
}

func (l *Ledger) Balance(ctx context.Context, steamID string) (*store.Player, error) {
	p, err := l.repo.GetPlayerBySteamID(ctx, steamID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return p, nil
}

func validateEntry(e *store.LedgerEntry) error {
	e.SteamID = strings.TrimSpace(e.SteamID)
	if e.SteamID == "" {
		return ErrInvalidSteamID
	}
	if e.Amount <= 0 || e.Amount > MaxAmount {
		return ErrInvalidAmount
	}
	if !ValidCategory(e.Category) {
		return ErrInvalidCategory
	}
	return nil
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, store.ErrInsufficientFunds):
		return ErrInsufficientFunds
	default:
		return err
	}
}
