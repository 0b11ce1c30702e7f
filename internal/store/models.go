package store

import "time"

type PremiumTier string

const (
	PremiumNone   PremiumTier = "none"
	PremiumBronze PremiumTier = "bronze"
	PremiumSilver PremiumTier = "silver"
	PremiumGold   PremiumTier = "gold"
)

func (t PremiumTier) Valid() bool {
	switch t {
	case PremiumNone, PremiumBronze, PremiumSilver, PremiumGold:
		return true
	default:
		return false
	}
}

const (
	CategoryWelcomeBonus = "welcome_bonus"
	CategoryCaseOpen     = "case_open"
	CategoryAdmin        = "admin"
	CategoryBonus        = "bonus"
	CategoryPlaytime     = "playtime"
)

type Player struct {
	ID               string
	SteamID          string
	Username         string
	AvatarURL        string
	Souls            int64
	TotalSoulsEarned int64
	PlaytimeMinutes  int64
	PremiumTier      PremiumTier
	Elo              int
	Wins             int
	Losses           int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type PlayerIdentity struct {
	SteamID   string
	Username  string
	AvatarURL string
}

type SoulTransaction struct {
	ID             string
	PlayerID       string
	SteamID        string
	Seq            int64
	Amount         int64
	Category       string
	Description    string
	BalanceAfter   int64
	IdempotencyKey string
	CreatedAt      time.Time
}

// LedgerEntry describes one requested balance change. Amount is always
// positive; direction comes from the method it is passed to.
type LedgerEntry struct {
	SteamID        string
	Amount         int64
	Category       string
	Description    string
	IdempotencyKey string
}

// Applied is the outcome of a committed (or replayed) balance change.
type Applied struct {
	TransactionID    string
	Balance          int64
	TotalSoulsEarned int64
	Replayed         bool
}

type SyncInput struct {
	SteamID         string
	SoulsToAdd      int64
	PlaytimeMinutes int64
	Wins            int
	Losses          int
	IdempotencyKey  string
}

type InventoryItem struct {
	ID        string
	PlayerID  string
	ItemName  string
	Weapon    string
	Rarity    string
	Wear      float64
	Equipped  bool
	Favorite  bool
	CreatedAt time.Time
}

type CaseOpen struct {
	ID              string
	PlayerID        string
	SteamID         string
	Username        string
	AvatarURL       string
	CaseID          string
	InventoryItemID string
	ItemName        string
	Weapon          string
	Rarity          string
	Wear            float64
	Price           int64
	ServerID        string
	CreatedAt       time.Time
}

type CaseOpenInput struct {
	SteamID  string
	CaseID   string
	CaseName string
	Price    int64
	ItemName string
	Weapon   string
	Rarity   string
	Wear     float64
	ServerID string
}

type CaseOpenResult struct {
	Open    CaseOpen
	Balance int64
}

type Server struct {
	ID              string
	Name            string
	Address         string
	APIKeyHash      string
	Online          bool
	CurrentPlayers  int
	MaxPlayers      int
	CurrentMap      string
	LastHeartbeatAt *time.Time
	CreatedAt       time.Time
}

type Heartbeat struct {
	CurrentPlayers int
	MaxPlayers     int
	CurrentMap     string
}

type LeaderboardEntry struct {
	SteamID   string
	Username  string
	AvatarURL string
	Value     int64
}

type GlobalCounters struct {
	Players          int64
	CaseOpens        int64
	SoulsCirculating int64
	SoulsEarned      int64
	OnlineServers    int64
	OnlinePlayers    int64
}
