package admin

import (
	"context"
	"errors"
	"strings"

	"ghostserver/internal/app/player"
	"ghostserver/internal/auth"
	"ghostserver/internal/ledger"
	"ghostserver/internal/store"

	"github.com/rs/zerolog/log"
)

type Repository interface {
	ListPlayers(ctx context.Context, limit, offset int) ([]store.Player, error)
	SetPremiumTier(ctx context.Context, steamID string, tier store.PremiumTier) error
	ListTransactions(ctx context.Context, f store.TransactionFilter, limit, offset int) ([]store.SoulTransaction, error)
	ListServers(ctx context.Context) ([]store.Server, error)
	CreateServer(ctx context.Context, name, address, apiKey string) (*store.Server, error)
}

type Ledger interface {
	AdjustAbsolute(ctx context.Context, steamID string, newBalance int64, actor string) (store.Applied, error)
	Audit(ctx context.Context, steamID string) (ledger.AuditReport, error)
}

type Service struct {
	repo   Repository
	ledger Ledger
	newKey func() (string, error)
}

func NewService(repo Repository, l Ledger) *Service {
	return &Service{repo: repo, ledger: l, newKey: auth.NewServerKey}
}

func (s *Service) Players(ctx context.Context, limit, offset int) (*PlayersResponse, error) {
	items, err := s.repo.ListPlayers(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]player.PlayerView, 0, len(items))
	for i := range items {
		out = append(out, player.ViewPlayer(&items[i]))
	}
	return &PlayersResponse{Items: out, Limit: limit, Offset: offset}, nil
}

func (s *Service) SetSouls(ctx context.Context, actor auth.Principal, steamID string, req SetSoulsRequest) (*BalanceResponse, error) {
	if req.Souls == nil {
		return nil, ErrInvalidRequest
	}
	out, err := s.ledger.AdjustAbsolute(ctx, steamID, *req.Souls, actor.Actor())
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{SteamID: steamID, Balance: out.Balance, TransactionID: out.TransactionID}, nil
}

func (s *Service) SetPremium(ctx context.Context, actor auth.Principal, steamID string, req SetPremiumRequest) error {
	tier := store.PremiumTier(strings.TrimSpace(req.Tier))
	if steamID == "" || !tier.Valid() {
		return ErrInvalidRequest
	}
	if err := s.repo.SetPremiumTier(ctx, steamID, tier); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ledger.ErrPlayerNotFound
		}
		return err
	}
	log.Info().Str("steam_id", steamID).Str("tier", string(tier)).Str("actor", actor.Actor()).Msg("premium tier set")
	return nil
}

func (s *Service) Audit(ctx context.Context, steamID string) (*ledger.AuditReport, error) {
	rep, err := s.ledger.Audit(ctx, steamID)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (s *Service) Transactions(ctx context.Context, f store.TransactionFilter, limit, offset int) (*TransactionsResponse, error) {
	if f.Category != "" && !ledger.ValidCategory(f.Category) {
		return nil, ErrInvalidRequest
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return nil, ErrInvalidRequest
	}
	items, err := s.repo.ListTransactions(ctx, f, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]TransactionView, 0, len(items))
	for _, t := range items {
		out = append(out, TransactionView{
			ID:           t.ID,
			SteamID:      t.SteamID,
			Amount:       t.Amount,
			Category:     t.Category,
			Description:  t.Description,
			BalanceAfter: t.BalanceAfter,
			CreatedAt:    t.CreatedAt,
		})
	}
	return &TransactionsResponse{Items: out, Limit: limit, Offset: offset}, nil
}

func (s *Service) Servers(ctx context.Context) (*ServersResponse, error) {
	items, err := s.repo.ListServers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ServerView, 0, len(items))
	for i := range items {
		out = append(out, viewServer(&items[i]))
	}
	return &ServersResponse{Items: out}, nil
}

func (s *Service) CreateServer(ctx context.Context, actor auth.Principal, req CreateServerRequest) (*CreateServerResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidRequest
	}
	key, err := s.newKey()
	if err != nil {
		return nil, err
	}
	sv, err := s.repo.CreateServer(ctx, name, strings.TrimSpace(req.Address), key)
	if err != nil {
		return nil, err
	}
	log.Info().Str("server_id", sv.ID).Str("name", sv.Name).Str("actor", actor.Actor()).Msg("server created")
	return &CreateServerResponse{Server: viewServer(sv), APIKey: key}, nil
}

func viewServer(sv *store.Server) ServerView {
	return ServerView{
		ID:              sv.ID,
		Name:            sv.Name,
		Address:         sv.Address,
		Online:          sv.Online,
		CurrentPlayers:  sv.CurrentPlayers,
		MaxPlayers:      sv.MaxPlayers,
		CurrentMap:      sv.CurrentMap,
		LastHeartbeatAt: sv.LastHeartbeatAt,
		CreatedAt:       sv.CreatedAt,
	}
}
