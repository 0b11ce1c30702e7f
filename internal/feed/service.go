package feed

import (
	"context"
	"time"

	"ghostserver/internal/store"
)

const (
	DefaultLimit = 20
	MaxLimit     = 50

	recentRareCount = 10
	rareScanWindow  = 100
)

type Repository interface {
	ListCaseOpens(ctx context.Context, since *time.Time, limit int) ([]store.CaseOpen, error)
	GlobalCounters(ctx context.Context) (store.GlobalCounters, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ClampLimit maps a requested page size into 1..MaxLimit, with 0 meaning
// DefaultLimit.
func ClampLimit(n int) int {
	switch {
	case n == 0:
		return DefaultLimit
	case n < 1:
		return 1
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}

// Feed returns drops strictly newer than since, newest first.
func (s *Service) Feed(ctx context.Context, limit int, since *time.Time) ([]Drop, error) {
	opens, err := s.repo.ListCaseOpens(ctx, since, ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	out := make([]Drop, 0, len(opens))
	for _, o := range opens {
		out = append(out, ToDrop(o))
	}
	return out, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	c, err := s.repo.GlobalCounters(ctx)
	if err != nil {
		return Stats{}, err
	}
	recent, err := s.repo.ListCaseOpens(ctx, nil, rareScanWindow)
	if err != nil {
		return Stats{}, err
	}
	rare := make([]Drop, 0, recentRareCount)
	for _, o := range recent {
		d := ToDrop(o)
		if !d.Rare {
			continue
		}
		rare = append(rare, d)
		if len(rare) == recentRareCount {
			break
		}
	}
	return Stats{
		Players:          c.Players,
		CaseOpens:        c.CaseOpens,
		SoulsCirculating: c.SoulsCirculating,
		SoulsEarned:      c.SoulsEarned,
		OnlineServers:    c.OnlineServers,
		OnlinePlayers:    c.OnlinePlayers,
		RecentRareDrops:  rare,
	}, nil
}
