package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ghostserver/internal/ledger"
	"ghostserver/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	soulsKey     = "ghost:leaderboard:souls"
	soulsTempKey = "ghost:leaderboard:souls:rebuild"
	playerMeta   = "ghost:players:meta"
)

var ErrCold = errors.New("leaderboard cache is empty")

type playerInfo struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// Leaderboard mirrors player souls in a sorted set so the top list does not
// scan the players table.
type Leaderboard struct {
	client *redis.Client
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

func (l *Leaderboard) SetScore(ctx context.Context, e store.LeaderboardEntry) error {
	meta, err := json.Marshal(playerInfo{Username: e.Username, AvatarURL: e.AvatarURL})
	if err != nil {
		return err
	}
	_, err = l.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, soulsKey, redis.Z{Score: float64(e.Value), Member: e.SteamID})
		pipe.HSet(ctx, playerMeta, e.SteamID, string(meta))
		return nil
	})
	if err != nil {
		return fmt.Errorf("setting score: %w", err)
	}
	return nil
}

// Top returns ErrCold when the set does not exist yet so callers can fall
// back to Postgres.
func (l *Leaderboard) Top(ctx context.Context, limit int) ([]store.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	results, err := l.client.ZRevRangeWithScores(ctx, soulsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting top n: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrCold
	}
	ids := make([]string, len(results))
	for i, z := range results {
		ids[i], _ = z.Member.(string)
	}
	metas, err := l.client.HMGet(ctx, playerMeta, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("getting player meta: %w", err)
	}
	out := make([]store.LeaderboardEntry, len(results))
	for i, z := range results {
		out[i] = store.LeaderboardEntry{SteamID: ids[i], Value: int64(z.Score)}
		if i < len(metas) {
			if raw, ok := metas[i].(string); ok {
				var info playerInfo
				if json.Unmarshal([]byte(raw), &info) == nil {
					out[i].Username = info.Username
					out[i].AvatarURL = info.AvatarURL
				}
			}
		}
	}
	return out, nil
}

// Rebuild replaces the sorted set atomically with entries.
func (l *Leaderboard) Rebuild(ctx context.Context, entries []store.LeaderboardEntry) error {
	if len(entries) == 0 {
		return l.client.Del(ctx, soulsKey).Err()
	}
	members := make([]redis.Z, len(entries))
	meta := make([]any, 0, len(entries)*2)
	for i, e := range entries {
		members[i] = redis.Z{Score: float64(e.Value), Member: e.SteamID}
		b, err := json.Marshal(playerInfo{Username: e.Username, AvatarURL: e.AvatarURL})
		if err != nil {
			return err
		}
		meta = append(meta, e.SteamID, string(b))
	}
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, soulsTempKey)
		pipe.ZAdd(ctx, soulsTempKey, members...)
		pipe.Rename(ctx, soulsTempKey, soulsKey)
		pipe.HSet(ctx, playerMeta, meta...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("rebuilding leaderboard: %w", err)
	}
	return nil
}

// OnDrop refreshes the opener's score with the post-debit balance.
func (l *Leaderboard) OnDrop(ctx context.Context, open store.CaseOpen, balance int64) {
	err := l.SetScore(ctx, store.LeaderboardEntry{
		SteamID:   open.SteamID,
		Username:  open.Username,
		AvatarURL: open.AvatarURL,
		Value:     balance,
	})
	if err != nil {
		log.Warn().Err(err).Str("steam_id", open.SteamID).Msg("leaderboard refresh after drop")
	}
}

// OnBalance keeps the score in step with every committed ledger change.
// Meta is only rewritten when the change carries the player row.
func (l *Leaderboard) OnBalance(ctx context.Context, c ledger.BalanceChange) {
	var err error
	if c.Player != nil {
		err = l.SetScore(ctx, store.LeaderboardEntry{
			SteamID:   c.SteamID,
			Username:  c.Player.Username,
			AvatarURL: c.Player.AvatarURL,
			Value:     c.Balance,
		})
	} else {
		err = l.client.ZAdd(ctx, soulsKey, redis.Z{Score: float64(c.Balance), Member: c.SteamID}).Err()
	}
	if err != nil {
		log.Warn().Err(err).Str("steam_id", c.SteamID).Msg("leaderboard refresh after ledger change")
	}
}
