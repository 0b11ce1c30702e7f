package store_test

import (
	"context"
	"testing"

	"ghostserver/internal/store"
	"ghostserver/internal/testutil"
)

func openStore(t *testing.T) (*store.Store, context.Context, func()) {
	t.Helper()
	st, cleanup := testutil.OpenTestStore(t)
	return st, context.Background(), cleanup
}

func mustRegister(t *testing.T, st *store.Store, ctx context.Context, steamID string) *store.Player {
	t.Helper()
	p, _, err := st.RegisterPlayer(ctx, store.PlayerIdentity{SteamID: steamID, Username: "p-" + steamID}, 100, false)
	if err != nil {
		t.Fatalf("register %s: %v", steamID, err)
	}
	return p
}

func mustSouls(t *testing.T, st *store.Store, ctx context.Context, steamID string) int64 {
	t.Helper()
	p, err := st.GetPlayerBySteamID(ctx, steamID)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	return p.Souls
}
