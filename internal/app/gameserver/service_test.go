package gameserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"ghostserver/internal/app/player"
	"ghostserver/internal/cases"
	"ghostserver/internal/ledger"
	"ghostserver/internal/store"
)

type stubLedger struct {
	credits  []store.LedgerEntry
	debitErr error
}

func (s *stubLedger) Register(_ context.Context, id store.PlayerIdentity) (ledger.Registration, error) {
	return ledger.Registration{Player: &store.Player{SteamID: id.SteamID, Souls: 100}, IsNew: true}, nil
}

func (s *stubLedger) Connect(_ context.Context, id store.PlayerIdentity) (ledger.Registration, error) {
	return ledger.Registration{Player: &store.Player{SteamID: id.SteamID, Username: id.Username, Souls: 5}}, nil
}

func (s *stubLedger) Credit(_ context.Context, e store.LedgerEntry) (store.Applied, error) {
	s.credits = append(s.credits, e)
	return store.Applied{TransactionID: "tx-1", Balance: 150, TotalSoulsEarned: 150}, nil
}

func (s *stubLedger) Debit(context.Context, store.LedgerEntry) (store.Applied, error) {
	if s.debitErr != nil {
		return store.Applied{}, s.debitErr
	}
	return store.Applied{Balance: 1}, nil
}

func (s *stubLedger) Sync(_ context.Context, in store.SyncInput) (ledger.SyncResult, error) {
	return ledger.SyncResult{Player: &store.Player{SteamID: in.SteamID, PlaytimeMinutes: in.PlaytimeMinutes}}, nil
}

type stubServers struct{ last store.Heartbeat }

func (s *stubServers) RecordHeartbeat(_ context.Context, id string, hb store.Heartbeat) (*store.Server, error) {
	s.last = hb
	return &store.Server{ID: id, Online: true}, nil
}

type noInventory struct{}

func (noInventory) GetPlayerBySteamID(context.Context, string) (*store.Player, error) {
	return nil, store.ErrNotFound
}

func (noInventory) ListInventory(context.Context, string) ([]store.InventoryItem, error) {
	return []store.InventoryItem{}, nil
}

func (noInventory) SetInventoryFlag(context.Context, string, string, store.InventoryFlag, bool) error {
	return store.ErrNotFound
}

type stubOpener struct{ serverID string }

func (s *stubOpener) Open(_ context.Context, steamID, caseID, serverID string) (store.CaseOpenResult, error) {
	s.serverID = serverID
	return store.CaseOpenResult{Balance: 10, Open: store.CaseOpen{SteamID: steamID, CaseID: caseID, InventoryItemID: "i1", Rarity: "milspec"}}, nil
}

func newTestService(t *testing.T) (*Service, *stubLedger, *stubServers, *stubOpener) {
	t.Helper()
	catalog, err := cases.LoadCatalog("")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	l := &stubLedger{}
	sv := &stubServers{}
	op := &stubOpener{}
	svc := NewService(l, sv, player.NewService(noInventory{}, op), op, Options{
		WelcomeBonus: 100,
		StaleAfter:   3 * time.Minute,
		Catalog:      catalog,
	})
	return svc, l, sv, op
}

func TestConnectReturnsSnapshot(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	resp, err := svc.Connect(context.Background(), ConnectRequest{SteamID: "7", DisplayName: "neo"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if resp.Player.Username != "neo" || resp.Inventory == nil || resp.IsNew {
		t.Fatalf("unexpected connect response: %+v", resp)
	}
}

func TestAddAndSpendSouls(t *testing.T) {
	svc, l, _, _ := newTestService(t)
	resp, err := svc.AddSouls(context.Background(), "srv", SoulsRequest{SteamID: "7", Amount: 50, Category: "bonus", IdempotencyKey: "k"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if resp.Balance != 150 || resp.TransactionID != "tx-1" || l.credits[0].IdempotencyKey != "k" {
		t.Fatalf("unexpected add: %+v %+v", resp, l.credits)
	}

	l.debitErr = ledger.ErrInsufficientFunds
	if _, err := svc.SpendSouls(context.Background(), "srv", SoulsRequest{SteamID: "7", Amount: 500, Category: "shop"}); !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}

func TestHeartbeatValidation(t *testing.T) {
	svc, _, sv, _ := newTestService(t)
	if _, err := svc.Heartbeat(context.Background(), "srv", HeartbeatRequest{CurrentPlayers: 30, MaxPlayers: 24}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	resp, err := svc.Heartbeat(context.Background(), "srv", HeartbeatRequest{CurrentPlayers: 3, MaxPlayers: 24, CurrentMap: "de_mirage"})
	if err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	if !resp.Online || sv.last.CurrentMap != "de_mirage" {
		t.Fatalf("unexpected heartbeat: %+v %+v", resp, sv.last)
	}
}

func TestOpenCaseCarriesServerID(t *testing.T) {
	svc, _, _, op := newTestService(t)
	resp, err := svc.OpenCase(context.Background(), "srv-1", OpenCaseRequest{SteamID: "7", CaseID: "starter"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if op.serverID != "srv-1" || resp.Item.ID != "i1" || resp.Rare {
		t.Fatalf("unexpected open: %+v server=%s", resp, op.serverID)
	}
}

func TestConfigListsCatalog(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	cfg := svc.Config()
	if cfg.WelcomeBonus != 100 || cfg.StaleAfterSeconds != 180 || len(cfg.Cases) == 0 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Cases[0].Price > cfg.Cases[len(cfg.Cases)-1].Price {
		t.Fatal("cases should be ordered by price")
	}
}
