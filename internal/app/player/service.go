package player

import (
	"context"
	"errors"
	"strings"

	"ghostserver/internal/feed"
	"ghostserver/internal/store"
)

type Repository interface {
	GetPlayerBySteamID(ctx context.Context, steamID string) (*store.Player, error)
	ListInventory(ctx context.Context, steamID string) ([]store.InventoryItem, error)
	SetInventoryFlag(ctx context.Context, steamID, itemID string, flag store.InventoryFlag, value bool) error
}

type CaseOpener interface {
	Open(ctx context.Context, steamID, caseID, serverID string) (store.CaseOpenResult, error)
}

// Service backs the cookie-authenticated /api/me routes. Callers pass the
// steam id taken from the verified session, never from the request body.
type Service struct {
	repo  Repository
	cases CaseOpener
}

func NewService(repo Repository, cases CaseOpener) *Service {
	return &Service{repo: repo, cases: cases}
}

func (s *Service) Snapshot(ctx context.Context, steamID string) (*Snapshot, error) {
	p, err := s.repo.GetPlayerBySteamID(ctx, steamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.SnapshotOf(ctx, p)
}

// SnapshotOf builds a snapshot for an already loaded player.
func (s *Service) SnapshotOf(ctx context.Context, p *store.Player) (*Snapshot, error) {
	items, err := s.repo.ListInventory(ctx, p.SteamID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Player: ViewPlayer(p), Inventory: ViewInventory(items)}, nil
}

func (s *Service) OpenCase(ctx context.Context, steamID, caseID string) (*CaseOpenResponse, error) {
	caseID = strings.TrimSpace(caseID)
	if steamID == "" || caseID == "" {
		return nil, ErrInvalidRequest
	}
	res, err := s.cases.Open(ctx, steamID, caseID, "")
	if err != nil {
		return nil, err
	}
	out := ViewCaseOpen(res, feed.IsRare(res.Open.ItemName, res.Open.Weapon, res.Open.Rarity))
	return &out, nil
}

func (s *Service) SetEquipped(ctx context.Context, steamID, itemID string, value bool) error {
	return s.setFlag(ctx, steamID, itemID, store.FlagEquipped, value)
}

func (s *Service) SetFavorite(ctx context.Context, steamID, itemID string, value bool) error {
	return s.setFlag(ctx, steamID, itemID, store.FlagFavorite, value)
}

func (s *Service) setFlag(ctx context.Context, steamID, itemID string, flag store.InventoryFlag, value bool) error {
	if steamID == "" || strings.TrimSpace(itemID) == "" {
		return ErrInvalidRequest
	}
	err := s.repo.SetInventoryFlag(ctx, steamID, itemID, flag, value)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
