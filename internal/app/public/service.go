package public

import (
	"context"
	"strings"
	"time"

	"ghostserver/internal/cases"
	"ghostserver/internal/feed"
	"ghostserver/internal/store"

	"github.com/rs/zerolog/log"
)

type Repository interface {
	ListLeaderboard(ctx context.Context, by string, limit int) ([]store.LeaderboardEntry, error)
	SearchPlayers(ctx context.Context, q string, limit int) ([]store.Player, error)
}

// LeaderboardCache serves the souls board. Any error sends the request to
// Postgres.
type LeaderboardCache interface {
	Top(ctx context.Context, limit int) ([]store.LeaderboardEntry, error)
}

type Service struct {
	feed    *feed.Service
	repo    Repository
	cache   LeaderboardCache
	catalog *cases.Catalog
}

const (
	leaderboardDefaultRows = 10
	leaderboardMaxRows     = 100
	searchMaxRows          = 20
	searchMaxQuery         = 64
)

var leaderboardKinds = map[string]bool{
	"souls":    true,
	"earned":   true,
	"elo":      true,
	"playtime": true,
}

// NewService accepts a nil cache; the souls board then always reads
// Postgres.
func NewService(f *feed.Service, repo Repository, cache LeaderboardCache, catalog *cases.Catalog) *Service {
	return &Service{feed: f, repo: repo, cache: cache, catalog: catalog}
}

func (s *Service) Feed(ctx context.Context, limit int, since *time.Time) (*FeedResponse, error) {
	limit = feed.ClampLimit(limit)
	items, err := s.feed.Feed(ctx, limit, since)
	if err != nil {
		return nil, err
	}
	return &FeedResponse{Items: items, Limit: limit}, nil
}

func (s *Service) Stats(ctx context.Context) (*feed.Stats, error) {
	st, err := s.feed.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func IsLeaderboardKind(by string) bool {
	return leaderboardKinds[by]
}

func clampLeaderboardLimit(limit int) int {
	if limit <= 0 {
		return leaderboardDefaultRows
	}
	if limit > leaderboardMaxRows {
		return leaderboardMaxRows
	}
	return limit
}

func (s *Service) Leaderboard(ctx context.Context, by string, limit int) (*LeaderboardResponse, error) {
	if by == "" {
		by = "souls"
	}
	if !IsLeaderboardKind(by) {
		return nil, ErrInvalidRequest
	}
	limit = clampLeaderboardLimit(limit)
	resp := &LeaderboardResponse{By: by, Limit: limit, Source: "db"}

	if by == "souls" && s.cache != nil {
		entries, err := s.cache.Top(ctx, limit)
		if err == nil {
			resp.Source = "cache"
			resp.Items = rank(entries)
			return resp, nil
		}
		log.Debug().Err(err).Msg("leaderboard cache miss")
	}
	entries, err := s.repo.ListLeaderboard(ctx, by, limit)
	if err != nil {
		return nil, err
	}
	resp.Items = rank(entries)
	return resp, nil
}

func rank(entries []store.LeaderboardEntry) []LeaderboardItem {
	out := make([]LeaderboardItem, 0, len(entries))
	for i, e := range entries {
		out = append(out, LeaderboardItem{
			Rank:      i + 1,
			SteamID:   e.SteamID,
			Username:  e.Username,
			AvatarURL: e.AvatarURL,
			Value:     e.Value,
		})
	}
	return out
}

func (s *Service) SearchPlayers(ctx context.Context, q string, limit int) (*SearchResponse, error) {
	q = strings.TrimSpace(q)
	if q == "" || len(q) > searchMaxQuery {
		return nil, ErrInvalidRequest
	}
	if limit <= 0 || limit > searchMaxRows {
		limit = searchMaxRows
	}
	players, err := s.repo.SearchPlayers(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	out := make([]PlayerSummary, 0, len(players))
	for _, p := range players {
		out = append(out, PlayerSummary{
			SteamID:          p.SteamID,
			Username:         p.Username,
			AvatarURL:        p.AvatarURL,
			Souls:            p.Souls,
			TotalSoulsEarned: p.TotalSoulsEarned,
			PremiumTier:      string(p.PremiumTier),
		})
	}
	return &SearchResponse{Items: out}, nil
}

func (s *Service) Cases() *CasesResponse {
	if s.catalog == nil {
		return &CasesResponse{Items: []cases.Case{}}
	}
	return &CasesResponse{Items: s.catalog.Cases()}
}
