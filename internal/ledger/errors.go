package ledger

import "errors"

var (
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidCategory   = errors.New("invalid_category")
	ErrInvalidSteamID    = errors.New("invalid_steam_id")
	ErrPlayerNotFound    = errors.New("player_not_found")
	ErrInsufficientFunds = errors.New("insufficient_funds")
)
