package public

import (
	"ghostserver/internal/cases"
	"ghostserver/internal/feed"
)

type FeedResponse struct {
	Items []feed.Drop `json:"items"`
	Limit int         `json:"limit"`
}

type LeaderboardResponse struct {
	By     string            `json:"by"`
	Items  []LeaderboardItem `json:"items"`
	Limit  int               `json:"limit"`
	Source string            `json:"source"`
}

type LeaderboardItem struct {
	Rank      int    `json:"rank"`
	SteamID   string `json:"steam_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Value     int64  `json:"value"`
}

type SearchResponse struct {
	Items []PlayerSummary `json:"items"`
}

type PlayerSummary struct {
	SteamID          string `json:"steam_id"`
	Username         string `json:"username"`
	AvatarURL        string `json:"avatar_url"`
	Souls            int64  `json:"souls"`
	TotalSoulsEarned int64  `json:"total_souls_earned"`
	PremiumTier      string `json:"premium_tier"`
}

type CasesResponse struct {
	Items []cases.Case `json:"items"`
}
