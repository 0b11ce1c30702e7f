package feed

import (
	"time"

	"ghostserver/internal/store"
)

type Drop struct {
	ID        string    `json:"id"`
	SteamID   string    `json:"steam_id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	CaseID    string    `json:"case_id"`
	ItemName  string    `json:"item_name"`
	Weapon    string    `json:"weapon"`
	Rarity    string    `json:"rarity"`
	Wear      float64   `json:"wear"`
	Price     int64     `json:"price"`
	Rare      bool      `json:"rare"`
	CreatedAt time.Time `json:"created_at"`
}

type Stats struct {
	Players          int64  `json:"players"`
	CaseOpens        int64  `json:"case_opens"`
	SoulsCirculating int64  `json:"souls_circulating"`
	SoulsEarned      int64  `json:"souls_earned"`
	OnlineServers    int64  `json:"online_servers"`
	OnlinePlayers    int64  `json:"online_players"`
	RecentRareDrops  []Drop `json:"recent_rare_drops"`
}

func ToDrop(o store.CaseOpen) Drop {
	return Drop{
		ID:        o.ID,
		SteamID:   o.SteamID,
		Username:  o.Username,
		AvatarURL: o.AvatarURL,
		CaseID:    o.CaseID,
		ItemName:  o.ItemName,
		Weapon:    o.Weapon,
		Rarity:    o.Rarity,
		Wear:      o.Wear,
		Price:     o.Price,
		Rare:      IsRare(o.ItemName, o.Weapon, o.Rarity),
		CreatedAt: o.CreatedAt,
	}
}
