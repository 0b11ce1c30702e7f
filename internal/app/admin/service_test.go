package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"ghostserver/internal/auth"
	"ghostserver/internal/ledger"
	"ghostserver/internal/store"
)

type fakeRepo struct {
	tiers     map[string]store.PremiumTier
	storedKey string
	filter    store.TransactionFilter
}

func (f *fakeRepo) ListPlayers(context.Context, int, int) ([]store.Player, error) {
	return []store.Player{{SteamID: "1"}, {SteamID: "2"}}, nil
}

func (f *fakeRepo) SetPremiumTier(_ context.Context, steamID string, tier store.PremiumTier) error {
	if _, ok := f.tiers[steamID]; !ok {
		return store.ErrNotFound
	}
	f.tiers[steamID] = tier
	return nil
}

func (f *fakeRepo) ListTransactions(_ context.Context, filter store.TransactionFilter, _, _ int) ([]store.SoulTransaction, error) {
	f.filter = filter
	return []store.SoulTransaction{{ID: "t1", SteamID: "1", Amount: -60, Category: "admin", BalanceAfter: 40}}, nil
}

func (f *fakeRepo) ListServers(context.Context) ([]store.Server, error) {
	return []store.Server{{ID: "s1", Name: "EU", APIKeyHash: "secret-hash"}}, nil
}

func (f *fakeRepo) CreateServer(_ context.Context, name, address, apiKey string) (*store.Server, error) {
	f.storedKey = apiKey
	return &store.Server{ID: "s2", Name: name, Address: address, APIKeyHash: store.HashAPIKey(apiKey)}, nil
}

type fakeLedger struct {
	actor string
}

func (f *fakeLedger) AdjustAbsolute(_ context.Context, steamID string, newBalance int64, actor string) (store.Applied, error) {
	if newBalance < 0 {
		return store.Applied{}, ledger.ErrInvalidAmount
	}
	f.actor = actor
	return store.Applied{TransactionID: "t9", Balance: newBalance}, nil
}

func (f *fakeLedger) Audit(_ context.Context, steamID string) (ledger.AuditReport, error) {
	return ledger.AuditReport{SteamID: steamID, Consistent: true}, nil
}

func TestSetSoulsRecordsActor(t *testing.T) {
	l := &fakeLedger{}
	svc := NewService(&fakeRepo{}, l)
	owner := auth.Principal{SteamID: "owner-1", Role: auth.RoleAdmin, Via: "session"}

	souls := int64(40)
	resp, err := svc.SetSouls(context.Background(), owner, "1", SetSoulsRequest{Souls: &souls})
	if err != nil {
		t.Fatalf("set souls: %v", err)
	}
	if resp.Balance != 40 || l.actor != "owner-1" {
		t.Fatalf("unexpected result: %+v actor=%q", resp, l.actor)
	}

	keyAdmin := auth.Principal{Role: auth.RoleAdmin, Via: "admin_key"}
	if _, err := svc.SetSouls(context.Background(), keyAdmin, "1", SetSoulsRequest{Souls: &souls}); err != nil || l.actor != "admin_key" {
		t.Fatalf("key admin actor: %v %q", err, l.actor)
	}
	if _, err := svc.SetSouls(context.Background(), owner, "1", SetSoulsRequest{}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request for missing souls, got %v", err)
	}
	neg := int64(-1)
	if _, err := svc.SetSouls(context.Background(), owner, "1", SetSoulsRequest{Souls: &neg}); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestSetPremium(t *testing.T) {
	repo := &fakeRepo{tiers: map[string]store.PremiumTier{"1": store.PremiumNone}}
	svc := NewService(repo, &fakeLedger{})
	admin := auth.Principal{Role: auth.RoleAdmin, Via: "admin_key"}
	if err := svc.SetPremium(context.Background(), admin, "1", SetPremiumRequest{Tier: "gold"}); err != nil {
		t.Fatalf("set premium: %v", err)
	}
	if repo.tiers["1"] != store.PremiumGold {
		t.Fatalf("tier not stored: %v", repo.tiers["1"])
	}
	if err := svc.SetPremium(context.Background(), admin, "1", SetPremiumRequest{Tier: "platinum"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if err := svc.SetPremium(context.Background(), admin, "404", SetPremiumRequest{Tier: "gold"}); !errors.Is(err, ledger.ErrPlayerNotFound) {
		t.Fatalf("expected player not found, got %v", err)
	}
}

func TestCreateServerReturnsKeyOnce(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, &fakeLedger{})
	resp, err := svc.CreateServer(context.Background(), auth.Principal{Via: "admin_key"}, CreateServerRequest{Name: " EU #2 ", Address: "1.2.3.4:27015"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.APIKey == "" || resp.APIKey != repo.storedKey || resp.Server.Name != "EU #2" {
		t.Fatalf("unexpected create response: %+v", resp)
	}

	list, err := svc.Servers(context.Background())
	if err != nil {
		t.Fatalf("servers: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != "s1" {
		t.Fatalf("unexpected servers: %+v", list)
	}
}

func TestTransactionsValidatesFilter(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, &fakeLedger{})
	if _, err := svc.Transactions(context.Background(), store.TransactionFilter{Category: "Bad Category"}, 50, 0); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid category, got %v", err)
	}
	now := time.Now()
	earlier := now.Add(-time.Hour)
	if _, err := svc.Transactions(context.Background(), store.TransactionFilter{From: &now, To: &earlier}, 50, 0); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid range, got %v", err)
	}
	resp, err := svc.Transactions(context.Background(), store.TransactionFilter{SteamID: "1", Category: "admin"}, 50, 0)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if repo.filter.SteamID != "1" || len(resp.Items) != 1 || resp.Items[0].Amount != -60 {
		t.Fatalf("unexpected transactions: %+v", resp)
	}
}
