package public

import (
	"context"
	"errors"
	"testing"

	"ghostserver/internal/cache"
	"ghostserver/internal/store"
)

type fakeRepo struct {
	boardCalls []string
	query      string
}

func (f *fakeRepo) ListLeaderboard(_ context.Context, by string, limit int) ([]store.LeaderboardEntry, error) {
	f.boardCalls = append(f.boardCalls, by)
	return []store.LeaderboardEntry{{SteamID: "db-1", Value: 9}}, nil
}

func (f *fakeRepo) SearchPlayers(_ context.Context, q string, limit int) ([]store.Player, error) {
	f.query = q
	return []store.Player{{SteamID: "1", Username: "alice", PremiumTier: store.PremiumGold}}, nil
}

type fakeCache struct {
	entries []store.LeaderboardEntry
	err     error
}

func (f fakeCache) Top(context.Context, int) ([]store.LeaderboardEntry, error) {
	return f.entries, f.err
}

func TestClampLeaderboardLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "default", limit: 0, want: 10},
		{name: "negative", limit: -3, want: 10},
		{name: "explicit", limit: 25, want: 25},
		{name: "capped", limit: 1000, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampLeaderboardLimit(tt.limit); got != tt.want {
				t.Fatalf("limit = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLeaderboardPrefersCacheForSouls(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(nil, repo, fakeCache{entries: []store.LeaderboardEntry{{SteamID: "c1", Value: 50}, {SteamID: "c2", Value: 40}}}, nil)
	resp, err := svc.Leaderboard(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if resp.Source != "cache" || resp.By != "souls" || len(resp.Items) != 2 || resp.Items[1].Rank != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(repo.boardCalls) != 0 {
		t.Fatalf("cache hit should not touch db: %v", repo.boardCalls)
	}
}

func TestLeaderboardFallsBackOnColdCache(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(nil, repo, fakeCache{err: cache.ErrCold}, nil)
	resp, err := svc.Leaderboard(context.Background(), "souls", 5)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if resp.Source != "db" || resp.Items[0].SteamID != "db-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if _, err := svc.Leaderboard(context.Background(), "elo", 5); err != nil {
		t.Fatalf("elo: %v", err)
	}
	if len(repo.boardCalls) != 2 || repo.boardCalls[1] != "elo" {
		t.Fatalf("unexpected db calls: %v", repo.boardCalls)
	}
	if _, err := svc.Leaderboard(context.Background(), "kills", 5); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestSearchPlayers(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(nil, repo, nil, nil)
	if _, err := svc.SearchPlayers(context.Background(), "   ", 0); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	resp, err := svc.SearchPlayers(context.Background(), " ali ", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if repo.query != "ali" || len(resp.Items) != 1 || resp.Items[0].PremiumTier != "gold" {
		t.Fatalf("unexpected search: %q %+v", repo.query, resp)
	}
}

func TestCasesWithoutCatalog(t *testing.T) {
	svc := NewService(nil, &fakeRepo{}, nil, nil)
	if got := svc.Cases(); got.Items == nil || len(got.Items) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
}
