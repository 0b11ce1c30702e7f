package gameserver

import (
	"context"
	"time"

	"ghostserver/internal/app/player"
	"ghostserver/internal/cases"
	"ghostserver/internal/feed"
	"ghostserver/internal/ledger"
	"ghostserver/internal/store"

	"github.com/rs/zerolog/log"
)

type Ledger interface {
	Register(ctx context.Context, id store.PlayerIdentity) (ledger.Registration, error)
	Connect(ctx context.Context, id store.PlayerIdentity) (ledger.Registration, error)
	Credit(ctx context.Context, e store.LedgerEntry) (store.Applied, error)
	Debit(ctx context.Context, e store.LedgerEntry) (store.Applied, error)
	Sync(ctx context.Context, in store.SyncInput) (ledger.SyncResult, error)
}

type ServerRepository interface {
	RecordHeartbeat(ctx context.Context, serverID string, hb store.Heartbeat) (*store.Server, error)
}

type CaseOpener interface {
	Open(ctx context.Context, steamID, caseID, serverID string) (store.CaseOpenResult, error)
}

type Options struct {
	WelcomeBonus int64
	StaleAfter   time.Duration
	Catalog      *cases.Catalog
}

// Service backs the per-server API key routes. serverID is always the
// authenticated server, never a request field.
type Service struct {
	ledger  Ledger
	servers ServerRepository
	players *player.Service
	cases   CaseOpener
	opts    Options
}

func NewService(l Ledger, servers ServerRepository, players *player.Service, opener CaseOpener, opts Options) *Service {
	return &Service{ledger: l, servers: servers, players: players, cases: opener, opts: opts}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	reg, err := s.ledger.Register(ctx, store.PlayerIdentity{SteamID: req.SteamID, Username: req.DisplayName})
	if err != nil {
		return nil, err
	}
	return &RegisterResponse{Balance: reg.Player.Souls, IsNew: reg.IsNew}, nil
}

func (s *Service) Connect(ctx context.Context, req ConnectRequest) (*ConnectResponse, error) {
	reg, err := s.ledger.Connect(ctx, store.PlayerIdentity{
		SteamID:   req.SteamID,
		Username:  req.DisplayName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return nil, err
	}
	snap, err := s.players.SnapshotOf(ctx, reg.Player)
	if err != nil {
		return nil, err
	}
	return &ConnectResponse{Snapshot: *snap, IsNew: reg.IsNew}, nil
}

func (s *Service) AddSouls(ctx context.Context, serverID string, req SoulsRequest) (*BalanceResponse, error) {
	out, err := s.ledger.Credit(ctx, entryOf(req))
	if err != nil {
		return nil, err
	}
	log.Debug().Str("server_id", serverID).Str("steam_id", req.SteamID).Int64("amount", req.Amount).Msg("souls added")
	return balanceOf(req.SteamID, out), nil
}

func (s *Service) SpendSouls(ctx context.Context, serverID string, req SoulsRequest) (*BalanceResponse, error) {
	out, err := s.ledger.Debit(ctx, entryOf(req))
	if err != nil {
		return nil, err
	}
	log.Debug().Str("server_id", serverID).Str("steam_id", req.SteamID).Int64("amount", req.Amount).Msg("souls spent")
	return balanceOf(req.SteamID, out), nil
}

func (s *Service) Sync(ctx context.Context, req SyncRequest) (*SyncResponse, error) {
	res, err := s.ledger.Sync(ctx, store.SyncInput{
		SteamID:         req.SteamID,
		SoulsToAdd:      req.SoulsToAdd,
		PlaytimeMinutes: req.PlaytimeMinutes,
		Wins:            req.Wins,
		Losses:          req.Losses,
		IdempotencyKey:  req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	return &SyncResponse{Player: player.ViewPlayer(res.Player), Replayed: res.Replayed}, nil
}

func (s *Service) Heartbeat(ctx context.Context, serverID string, req HeartbeatRequest) (*HeartbeatResponse, error) {
	if serverID == "" || (req.MaxPlayers > 0 && req.CurrentPlayers > req.MaxPlayers) {
		return nil, ErrInvalidRequest
	}
	sv, err := s.servers.RecordHeartbeat(ctx, serverID, store.Heartbeat{
		CurrentPlayers: req.CurrentPlayers,
		MaxPlayers:     req.MaxPlayers,
		CurrentMap:     req.CurrentMap,
	})
	if err != nil {
		return nil, err
	}
	heartbeats.Inc()
	return &HeartbeatResponse{ServerID: sv.ID, Online: sv.Online}, nil
}

// OpenCase opens a case on behalf of a player connected to serverID.
func (s *Service) OpenCase(ctx context.Context, serverID string, req OpenCaseRequest) (*player.CaseOpenResponse, error) {
	res, err := s.cases.Open(ctx, req.SteamID, req.CaseID, serverID)
	if err != nil {
		return nil, err
	}
	out := player.ViewCaseOpen(res, feed.IsRare(res.Open.ItemName, res.Open.Weapon, res.Open.Rarity))
	return &out, nil
}

// Config is the read-only economy description plugins fetch at startup.
func (s *Service) Config() *ConfigResponse {
	out := &ConfigResponse{
		WelcomeBonus:      s.opts.WelcomeBonus,
		StaleAfterSeconds: int64(s.opts.StaleAfter / time.Second),
		Categories: []string{
			store.CategoryWelcomeBonus,
			store.CategoryCaseOpen,
			store.CategoryAdmin,
			store.CategoryBonus,
			store.CategoryPlaytime,
		},
		Cases: []cases.Case{},
	}
	if s.opts.Catalog != nil {
		out.Cases = s.opts.Catalog.Cases()
	}
	return out
}

func entryOf(req SoulsRequest) store.LedgerEntry {
	return store.LedgerEntry{
		SteamID:        req.SteamID,
		Amount:         req.Amount,
		Category:       req.Category,
		Description:    req.Description,
		IdempotencyKey: req.IdempotencyKey,
	}
}

func balanceOf(steamID string, a store.Applied) *BalanceResponse {
	return &BalanceResponse{
		SteamID:          steamID,
		Balance:          a.Balance,
		TotalSoulsEarned: a.TotalSoulsEarned,
		TransactionID:    a.TransactionID,
		Replayed:         a.Replayed,
	}
}
