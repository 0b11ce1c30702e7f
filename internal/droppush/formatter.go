package droppush

import (
	"fmt"
	"strconv"
	"time"

	"ghostserver/internal/droppush/platforms"
	"ghostserver/internal/feed"
)

const (
	colorGold    = 0xE4AE39
	colorCovert  = 0xEB4B4B
	colorDefault = 0x8847FF

	footer = "ghostserver drops"
)

func rarityColor(rarity string) int {
	switch rarity {
	case "extraordinary", "contraband":
		return colorGold
	case "covert":
		return colorCovert
	default:
		return colorDefault
	}
}

func FormatDrop(d feed.Drop, siteURL string) platforms.Message {
	who := fallback(d.Username, d.SteamID)
	msg := platforms.Message{
		Title:       d.ItemName,
		Content:     fmt.Sprintf("%s unboxed %s", who, d.ItemName),
		Description: fmt.Sprintf("from case `%s` for %d souls", d.CaseID, d.Price),
		Color:       rarityColor(d.Rarity),
		Footer:      footer,
		Thumbnail:   d.AvatarURL,
		Fields: []platforms.Field{
			{Name: "Weapon", Value: fallback(d.Weapon, "-"), Inline: true},
			{Name: "Rarity", Value: fallback(d.Rarity, "-"), Inline: true},
			{Name: "Wear", Value: strconv.FormatFloat(d.Wear, 'f', 4, 64), Inline: true},
		},
	}
	if !d.CreatedAt.IsZero() {
		msg.Timestamp = d.CreatedAt.UTC().Format(time.RFC3339)
	}
	if siteURL != "" && d.SteamID != "" {
		msg.URL = siteURL + "/players/" + d.SteamID
	}
	return msg
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
