package cases

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"ghostserver/internal/store"

	"github.com/rs/zerolog/log"
)

type Repository interface {
	OpenCase(ctx context.Context, in store.CaseOpenInput) (store.CaseOpenResult, error)
}

// DropSink receives every committed case open. Implementations must not
// block; they run on the request goroutine.
type DropSink interface {
	OnDrop(ctx context.Context, open store.CaseOpen, balance int64)
}

type Service struct {
	repo    Repository
	catalog *Catalog
	sinks   []DropSink

	mu  sync.Mutex
	rng Rand
}

func NewService(repo Repository, catalog *Catalog, rng Rand, sinks ...DropSink) *Service {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Service{repo: repo, catalog: catalog, rng: rng, sinks: sinks}
}

func (s *Service) Catalog() *Catalog {
	return s.catalog
}

func (s *Service) roll(c *Case) (Drop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Roll(c, s.rng)
}

// Open rolls a drop and commits debit plus grant atomically. Sinks are
// notified only after commit.
func (s *Service) Open(ctx context.Context, steamID, caseID, serverID string) (store.CaseOpenResult, error) {
	c, err := s.catalog.Get(caseID)
	if err != nil {
		return store.CaseOpenResult{}, err
	}
	drop, err := s.roll(c)
	if err != nil {
		return store.CaseOpenResult{}, err
	}
	res, err := s.repo.OpenCase(ctx, store.CaseOpenInput{
		SteamID:  steamID,
		CaseID:   c.ID,
		CaseName: c.Name,
		Price:    c.Price,
		ItemName: drop.Item.Name,
		Weapon:   drop.Item.Weapon,
		Rarity:   drop.Item.Rarity,
		Wear:     drop.Wear,
		ServerID: serverID,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return store.CaseOpenResult{}, ErrPlayerNotFound
		case errors.Is(err, store.ErrInsufficientFunds):
		default:
			log.Error().Err(err).Str("steam_id", steamID).Str("case_id", caseID).Msg("case open failed")
		}
		return store.CaseOpenResult{}, err
	}
	caseOpens.WithLabelValues(c.ID, drop.Item.Rarity).Inc()
	log.Info().
		Str("steam_id", steamID).
		Str("case_id", c.ID).
		Str("item", drop.Item.Name).
		Int64("balance", res.Balance).
		Msg("case opened")
	for _, sink := range s.sinks {
		sink.OnDrop(ctx, res.Open, res.Balance)
	}
	return res, nil
}
