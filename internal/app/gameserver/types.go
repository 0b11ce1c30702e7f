package gameserver

import (
	"ghostserver/internal/app/player"
	"ghostserver/internal/cases"
)

// Numeric fields carry no validate tags: sign errors surface from the
// ledger as invalid_amount.

type RegisterRequest struct {
	SteamID     string `json:"steam_id" validate:"required,max=64"`
	DisplayName string `json:"display_name" validate:"max=64"`
}

type RegisterResponse struct {
	Balance int64 `json:"balance"`
	IsNew   bool  `json:"is_new"`
}

type ConnectRequest struct {
	SteamID     string `json:"steam_id" validate:"required,max=64"`
	DisplayName string `json:"display_name" validate:"required,max=64"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url,max=512"`
}

type ConnectResponse struct {
	player.Snapshot
	IsNew bool `json:"is_new"`
}

type SoulsRequest struct {
	SteamID        string `json:"steam_id" validate:"required,max=64"`
	Amount         int64  `json:"amount"`
	Category       string `json:"category" validate:"required"`
	Description    string `json:"description" validate:"max=256"`
	IdempotencyKey string `json:"idempotency_key" validate:"max=128"`
}

type BalanceResponse struct {
	SteamID          string `json:"steam_id"`
	Balance          int64  `json:"balance"`
	TotalSoulsEarned int64  `json:"total_souls_earned"`
	TransactionID    string `json:"transaction_id,omitempty"`
	Replayed         bool   `json:"replayed"`
}

type SyncRequest struct {
	SteamID         string `json:"steam_id" validate:"required,max=64"`
	SoulsToAdd      int64  `json:"souls_to_add"`
	PlaytimeMinutes int64  `json:"playtime_minutes"`
	Wins            int    `json:"wins"`
	Losses          int    `json:"losses"`
	IdempotencyKey  string `json:"idempotency_key" validate:"max=128"`
}

type SyncResponse struct {
	Player   player.PlayerView `json:"player"`
	Replayed bool              `json:"replayed"`
}

type HeartbeatRequest struct {
	CurrentPlayers int    `json:"current_players" validate:"gte=0,lte=1024"`
	MaxPlayers     int    `json:"max_players" validate:"gte=0,lte=1024"`
	CurrentMap     string `json:"current_map" validate:"max=64"`
}

type HeartbeatResponse struct {
	ServerID string `json:"server_id"`
	Online   bool   `json:"online"`
}

type OpenCaseRequest struct {
	SteamID string `json:"steam_id" validate:"required,max=64"`
	CaseID  string `json:"case_id" validate:"required,max=64"`
}

type ConfigResponse struct {
	WelcomeBonus      int64        `json:"welcome_bonus"`
	StaleAfterSeconds int64        `json:"server_stale_after_seconds"`
	Categories        []string     `json:"categories"`
	Cases             []cases.Case `json:"cases"`
}
