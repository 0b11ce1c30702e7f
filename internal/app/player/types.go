package player

import (
	"time"

	"ghostserver/internal/store"
)

type PlayerView struct {
	SteamID          string    `json:"steam_id"`
	Username         string    `json:"username"`
	AvatarURL        string    `json:"avatar_url"`
	Souls            int64     `json:"souls"`
	TotalSoulsEarned int64     `json:"total_souls_earned"`
	PlaytimeMinutes  int64     `json:"playtime_minutes"`
	PremiumTier      string    `json:"premium_tier"`
	Elo              int       `json:"elo"`
	Wins             int       `json:"wins"`
	Losses           int       `json:"losses"`
	CreatedAt        time.Time `json:"created_at"`
}

type InventoryView struct {
	ID        string    `json:"id"`
	ItemName  string    `json:"item_name"`
	Weapon    string    `json:"weapon"`
	Rarity    string    `json:"rarity"`
	Wear      float64   `json:"wear"`
	Equipped  bool      `json:"equipped"`
	Favorite  bool      `json:"favorite"`
	CreatedAt time.Time `json:"created_at"`
}

type Snapshot struct {
	Player    PlayerView      `json:"player"`
	Inventory []InventoryView `json:"inventory"`
}

type CaseOpenResponse struct {
	Balance int64         `json:"balance"`
	Item    InventoryView `json:"item"`
	Rare    bool          `json:"rare"`
}

func ViewPlayer(p *store.Player) PlayerView {
	return PlayerView{
		SteamID:          p.SteamID,
		Username:         p.Username,
		AvatarURL:        p.AvatarURL,
		Souls:            p.Souls,
		TotalSoulsEarned: p.TotalSoulsEarned,
		PlaytimeMinutes:  p.PlaytimeMinutes,
		PremiumTier:      string(p.PremiumTier),
		Elo:              p.Elo,
		Wins:             p.Wins,
		Losses:           p.Losses,
		CreatedAt:        p.CreatedAt,
	}
}

func ViewInventory(items []store.InventoryItem) []InventoryView {
	out := make([]InventoryView, 0, len(items))
	for _, it := range items {
		out = append(out, InventoryView{
			ID:        it.ID,
			ItemName:  it.ItemName,
			Weapon:    it.Weapon,
			Rarity:    it.Rarity,
			Wear:      it.Wear,
			Equipped:  it.Equipped,
			Favorite:  it.Favorite,
			CreatedAt: it.CreatedAt,
		})
	}
	return out
}

// ViewCaseOpen shapes a committed open. The granted item is always
// unequipped and unfavorited.
func ViewCaseOpen(res store.CaseOpenResult, rare bool) CaseOpenResponse {
	o := res.Open
	return CaseOpenResponse{
		Balance: res.Balance,
		Rare:    rare,
		Item: InventoryView{
			ID:        o.InventoryItemID,
			ItemName:  o.ItemName,
			Weapon:    o.Weapon,
			Rarity:    o.Rarity,
			Wear:      o.Wear,
			CreatedAt: o.CreatedAt,
		},
	}
}
