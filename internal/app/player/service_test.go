package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"ghostserver/internal/store"
)

type fakeRepo struct {
	players map[string]*store.Player
	items   map[string][]store.InventoryItem
}

func (f *fakeRepo) GetPlayerBySteamID(_ context.Context, steamID string) (*store.Player, error) {
	p, ok := f.players[steamID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) ListInventory(_ context.Context, steamID string) ([]store.InventoryItem, error) {
	return f.items[steamID], nil
}

func (f *fakeRepo) SetInventoryFlag(_ context.Context, steamID, itemID string, flag store.InventoryFlag, value bool) error {
	for i := range f.items[steamID] {
		it := &f.items[steamID][i]
		if it.ID != itemID {
			continue
		}
		if flag == store.FlagEquipped {
			it.Equipped = value
		} else {
			it.Favorite = value
		}
		return nil
	}
	return store.ErrNotFound
}

type fakeOpener struct {
	res store.CaseOpenResult
	err error
}

func (f fakeOpener) Open(context.Context, string, string, string) (store.CaseOpenResult, error) {
	return f.res, f.err
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		players: map[string]*store.Player{"1": {SteamID: "1", Username: "alice", Souls: 70, PremiumTier: store.PremiumNone}},
		items:   map[string][]store.InventoryItem{"1": {{ID: "item-1", ItemName: "AK-47 | Redline"}}},
	}
}

func TestSnapshot(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeOpener{})
	snap, err := svc.Snapshot(context.Background(), "1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Player.Souls != 70 || snap.Player.PremiumTier != "none" || len(snap.Inventory) != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if _, err := svc.Snapshot(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInventoryFlags(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeOpener{})
	if err := svc.SetEquipped(context.Background(), "1", "item-1", true); err != nil {
		t.Fatalf("equip: %v", err)
	}
	if !repo.items["1"][0].Equipped {
		t.Fatal("item not equipped")
	}
	if err := svc.SetFavorite(context.Background(), "2", "item-1", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for foreign item, got %v", err)
	}
	if err := svc.SetFavorite(context.Background(), "1", " ", true); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestOpenCaseShapesResponse(t *testing.T) {
	now := time.Now()
	opener := fakeOpener{res: store.CaseOpenResult{
		Balance: 20,
		Open: store.CaseOpen{InventoryItemID: "inv-9", ItemName: "★ Karambit | Fade", Weapon: "Karambit",
			Rarity: "covert", Wear: 0.01, CreatedAt: now},
	}}
	svc := NewService(newFakeRepo(), opener)
	resp, err := svc.OpenCase(context.Background(), "1", "starter")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if resp.Balance != 20 || resp.Item.ID != "inv-9" || !resp.Rare {
		t.Fatalf("unexpected response: %+v", resp)
	}

	failing := NewService(newFakeRepo(), fakeOpener{err: store.ErrInsufficientFunds})
	if _, err := failing.OpenCase(context.Background(), "1", "starter"); !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds passthrough, got %v", err)
	}
}
