package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ghostserver/internal/store"
)

// memRepo is an in-memory Repository with the same balance rules as the
// Postgres store.
type memRepo struct {
	mu      sync.Mutex
	players map[string]*store.Player
	txs     map[string][]store.SoulTransaction
	syncs   map[string]store.SyncInput
	seq     int
}

func newMemRepo() *memRepo {
	return &memRepo{
		players: map[string]*store.Player{},
		txs:     map[string][]store.SoulTransaction{},
		syncs:   map[string]store.SyncInput{},
	}
}

func (m *memRepo) GetPlayerBySteamID(_ context.Context, steamID string) (*store.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[steamID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) RegisterPlayer(_ context.Context, in store.PlayerIdentity, bonus int64, touch bool) (*store.Player, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.players[in.SteamID]; ok {
		if touch {
			if in.Username != "" {
				p.Username = in.Username
			}
			if in.AvatarURL != "" {
				p.AvatarURL = in.AvatarURL
			}
		}
		cp := *p
		return &cp, false, nil
	}
	p := &store.Player{ID: "p-" + in.SteamID, SteamID: in.SteamID, Username: in.Username, AvatarURL: in.AvatarURL,
		PremiumTier: store.PremiumNone, Elo: 1000}
	m.players[in.SteamID] = p
	if bonus > 0 {
		m.apply(p, bonus, store.CategoryWelcomeBonus, "Welcome bonus", "")
	}
	cp := *p
	return &cp, true, nil
}

func (m *memRepo) SyncPlayer(_ context.Context, in store.SyncInput) (*store.Player, store.Applied, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[in.SteamID]
	if !ok {
		return nil, store.Applied{}, store.ErrNotFound
	}
	syncKey := in.SteamID + "/" + in.IdempotencyKey
	if prev, ok := m.syncs[syncKey]; ok && in.IdempotencyKey != "" {
		prev.SteamID, prev.IdempotencyKey = in.SteamID, in.IdempotencyKey
		if prev != in {
			return nil, store.Applied{}, store.ErrConflict
		}
		out := store.Applied{Balance: p.Souls, TotalSoulsEarned: p.TotalSoulsEarned, Replayed: true}
		if in.SoulsToAdd > 0 {
			if prior, ok, _ := m.find(in.SteamID, in.IdempotencyKey, in.SoulsToAdd, store.CategoryPlaytime); ok {
				out = prior
			}
		}
		cp := *p
		return &cp, out, nil
	}
	out := store.Applied{Balance: p.Souls, TotalSoulsEarned: p.TotalSoulsEarned}
	if in.SoulsToAdd > 0 {
		out = m.apply(p, in.SoulsToAdd, store.CategoryPlaytime, "Playtime reward", in.IdempotencyKey)
	}
	p.PlaytimeMinutes += in.PlaytimeMinutes
	p.Wins += in.Wins
	p.Losses += in.Losses
	if in.IdempotencyKey != "" {
		m.syncs[syncKey] = in
	}
	cp := *p
	return &cp, out, nil
}

func (m *memRepo) Credit(_ context.Context, e store.LedgerEntry) (store.Applied, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[e.SteamID]
	if !ok {
		return store.Applied{}, store.ErrNotFound
	}
	if prior, ok, err := m.find(e.SteamID, e.IdempotencyKey, e.Amount, e.Category); err != nil || ok {
		return prior, err
	}
	return m.apply(p, e.Amount, e.Category, e.Description, e.IdempotencyKey), nil
}

func (m *memRepo) Debit(_ context.Context, e store.LedgerEntry) (store.Applied, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[e.SteamID]
	if !ok {
		return store.Applied{}, store.ErrNotFound
	}
	if prior, ok, err := m.find(e.SteamID, e.IdempotencyKey, -e.Amount, e.Category); err != nil || ok {
		return prior, err
	}
	if p.Souls < e.Amount {
		return store.Applied{}, store.ErrInsufficientFunds
	}
	return m.apply(p, -e.Amount, e.Category, e.Description, e.IdempotencyKey), nil
}

func (m *memRepo) SetBalance(_ context.Context, steamID string, newBalance int64, category, description string) (store.Applied, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[steamID]
	if !ok {
		return store.Applied{}, store.ErrNotFound
	}
	delta := newBalance - p.Souls
	if delta == 0 {
		return store.Applied{Balance: p.Souls, TotalSoulsEarned: p.TotalSoulsEarned}, nil
	}
	return m.apply(p, delta, category, description, ""), nil
}

func (m *memRepo) LedgerSnapshot(_ context.Context, steamID string) (*store.Player, []store.SoulTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[steamID]
	if !ok {
		return nil, nil, store.ErrNotFound
	}
	cp := *p
	return &cp, append([]store.SoulTransaction(nil), m.txs[steamID]...), nil
}

func (m *memRepo) apply(p *store.Player, delta int64, category, description, key string) store.Applied {
	p.Souls += delta
	if delta > 0 {
		p.TotalSoulsEarned += delta
	}
	m.seq++
	tx := store.SoulTransaction{
		ID: fmt.Sprintf("tx-%04d", m.seq), Seq: int64(len(m.txs[p.SteamID]) + 1), PlayerID: p.ID, SteamID: p.SteamID, Amount: delta, Category: category,
		Description: description, BalanceAfter: p.Souls, IdempotencyKey: key, CreatedAt: time.Now(),
	}
	m.txs[p.SteamID] = append(m.txs[p.SteamID], tx)
	return store.Applied{TransactionID: tx.ID, Balance: p.Souls, TotalSoulsEarned: p.TotalSoulsEarned}
}

func (m *memRepo) find(steamID, key string, amount int64, category string) (store.Applied, bool, error) {
	if key == "" {
		return store.Applied{}, false, nil
	}
	for _, tx := range m.txs[steamID] {
		if tx.IdempotencyKey != key {
			continue
		}
		if tx.Amount != amount || tx.Category != category {
			return store.Applied{}, false, store.ErrConflict
		}
		p := m.players[steamID]
		return store.Applied{TransactionID: tx.ID, Balance: tx.BalanceAfter, TotalSoulsEarned: p.TotalSoulsEarned, Replayed: true}, true, nil
	}
	return store.Applied{}, false, nil
}
