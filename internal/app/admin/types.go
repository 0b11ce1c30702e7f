package admin

import (
	"time"

	"ghostserver/internal/app/player"
)

type PlayersResponse struct {
	Items  []player.PlayerView `json:"items"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

type SetSoulsRequest struct {
	Souls *int64 `json:"souls" validate:"required"`
}

type SetPremiumRequest struct {
	Tier string `json:"tier" validate:"required,oneof=none bronze silver gold"`
}

type BalanceResponse struct {
	SteamID       string `json:"steam_id"`
	Balance       int64  `json:"balance"`
	TransactionID string `json:"transaction_id,omitempty"`
}

type TransactionView struct {
	ID           string    `json:"id"`
	SteamID      string    `json:"steam_id"`
	Amount       int64     `json:"amount"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	BalanceAfter int64     `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

type TransactionsResponse struct {
	Items  []TransactionView `json:"items"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type ServerView struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Address         string     `json:"address"`
	Online          bool       `json:"online"`
	CurrentPlayers  int        `json:"current_players"`
	MaxPlayers      int        `json:"max_players"`
	CurrentMap      string     `json:"current_map"`
	LastHeartbeatAt *time.Time `json:"last_heartbeat_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

type ServersResponse struct {
	Items []ServerView `json:"items"`
}

type CreateServerRequest struct {
	Name    string `json:"name" validate:"required,max=64"`
	Address string `json:"address" validate:"omitempty,hostname_port"`
}

// CreateServerResponse is the only place the plaintext key ever appears.
type CreateServerResponse struct {
	Server ServerView `json:"server"`
	APIKey string     `json:"api_key"`
}
