package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

const playerColumns = `id, steam_id, username, avatar_url, souls, total_souls_earned, playtime_minutes,
	premium_tier, elo, wins, losses, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*Player, error) {
	var p Player
	var tier string
	if err := row.Scan(&p.ID, &p.SteamID, &p.Username, &p.AvatarURL, &p.Souls, &p.TotalSoulsEarned,
		&p.PlaytimeMinutes, &tier, &p.Elo, &p.Wins, &p.Losses, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.PremiumTier = PremiumTier(tier)
	return &p, nil
}

func (s *Store) GetPlayerBySteamID(ctx context.Context, steamID string) (*Player, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE steam_id = $1`, steamID)
	p, err := scanPlayer(row)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return p, nil
}

// RegisterPlayer creates the player on first contact and credits the welcome
// bonus in the same transaction. When the player already exists nothing is
// credited; with touch set the display attributes are overwritten
// (last write wins) when non-empty.
func (s *Store) RegisterPlayer(ctx context.Context, in PlayerIdentity, welcomeBonus int64, touch bool) (*Player, bool, error) {
	var (
		out   *Player
		isNew bool
	)
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, `INSERT INTO players (id, steam_id, username, avatar_url)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (steam_id) DO NOTHING
			RETURNING id`, NewID(), in.SteamID, in.Username, in.AvatarURL).Scan(&id)
		switch {
		case err == nil:
			isNew = true
			if welcomeBonus > 0 {
				if _, err := applyCredit(ctx, tx, id, welcomeBonus, CategoryWelcomeBonus, "Welcome bonus", ""); err != nil {
					return err
				}
			}
		case errors.Is(err, pgx.ErrNoRows):
			if touch {
				if _, err := tx.Exec(ctx, `UPDATE players SET
					username = COALESCE(NULLIF($2, ''), username),
					avatar_url = COALESCE(NULLIF($3, ''), avatar_url),
					updated_at = now()
					WHERE steam_id = $1`, in.SteamID, in.Username, in.AvatarURL); err != nil {
					return err
				}
			}
		default:
			return err
		}
		p, err := scanPlayer(tx.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE steam_id = $1`, in.SteamID))
		if err != nil {
			return mapNotFound(err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, isNew, nil
}

// SyncPlayer applies a game-server sync: an optional playtime credit plus
// counter increments, committed together. With an idempotency key the whole
// sync is recorded in player_syncs, so a retry replays even when it carries
// no souls.
func (s *Store) SyncPlayer(ctx context.Context, in SyncInput) (*Player, Applied, error) {
	var (
		out     *Player
		applied Applied
	)
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		playerID, _, err := lockPlayer(ctx, tx, in.SteamID)
		if err != nil {
			return err
		}
		replay, err := findSync(ctx, tx, playerID, in)
		if err != nil {
			return err
		}
		switch {
		case replay:
			applied.Replayed = true
			if in.SoulsToAdd > 0 {
				prior, ok, err := findByIdempotencyKey(ctx, tx, playerID, in.IdempotencyKey, in.SoulsToAdd, CategoryPlaytime)
				if err != nil {
					return err
				}
				if ok {
					applied = prior
				}
			}
		default:
			if in.SoulsToAdd > 0 {
				applied, err = applyCredit(ctx, tx, playerID, in.SoulsToAdd, CategoryPlaytime, "Playtime reward", in.IdempotencyKey)
				if err != nil {
					return err
				}
			}
			if in.PlaytimeMinutes > 0 || in.Wins > 0 || in.Losses > 0 {
				if _, err := tx.Exec(ctx, `UPDATE players SET
					playtime_minutes = playtime_minutes + $2,
					wins = wins + $3,
					losses = losses + $4,
					updated_at = now()
					WHERE id = $1`, playerID, in.PlaytimeMinutes, in.Wins, in.Losses); err != nil {
					return err
				}
			}
			if in.IdempotencyKey != "" {
				if _, err := tx.Exec(ctx, `INSERT INTO player_syncs
					(player_id, idempotency_key, souls_added, playtime_minutes, wins, losses)
					VALUES ($1, $2, $3, $4, $5, $6)`,
					playerID, in.IdempotencyKey, in.SoulsToAdd, in.PlaytimeMinutes, in.Wins, in.Losses); err != nil {
					if isUniqueViolation(err) {
						return ErrConflict
					}
					return err
				}
			}
		}
		p, err := scanPlayer(tx.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, playerID))
		if err != nil {
			return err
		}
		out = p
		if applied.TransactionID == "" {
			applied.Balance = p.Souls
			applied.TotalSoulsEarned = p.TotalSoulsEarned
		}
		return nil
	})
	if err != nil {
		return nil, Applied{}, err
	}
	return out, applied, nil
}

// findSync reports whether a sync with the same key was already applied. A
// key reused for a different payload is ErrConflict.
func findSync(ctx context.Context, tx pgx.Tx, playerID string, in SyncInput) (bool, error) {
	if in.IdempotencyKey == "" {
		return false, nil
	}
	var prev SyncInput
	err := tx.QueryRow(ctx, `SELECT souls_added, playtime_minutes, wins, losses
		FROM player_syncs WHERE player_id = $1 AND idempotency_key = $2`, playerID, in.IdempotencyKey).
		Scan(&prev.SoulsToAdd, &prev.PlaytimeMinutes, &prev.Wins, &prev.Losses)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if prev.SoulsToAdd != in.SoulsToAdd || prev.PlaytimeMinutes != in.PlaytimeMinutes ||
		prev.Wins != in.Wins || prev.Losses != in.Losses {
		return false, ErrConflict
	}
	return true, nil
}

func (s *Store) SetPremiumTier(ctx context.Context, steamID string, tier PremiumTier) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE players SET premium_tier = $2, updated_at = now() WHERE steam_id = $1`, steamID, string(tier))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListPlayers(ctx context.Context, limit, offset int) ([]Player, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+playerColumns+` FROM players ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPlayers(rows)
}

// SearchPlayers matches a case-insensitive username substring or an exact
// steam id.
func (s *Store) SearchPlayers(ctx context.Context, q string, limit int) ([]Player, error) {
	if limit <= 0 {
		limit = 20
	}
	q = strings.TrimSpace(q)
	pattern := "%" + escapeLike(q) + "%"
	rows, err := s.Pool.Query(ctx, `SELECT `+playerColumns+` FROM players
		WHERE steam_id = $1 OR username ILIKE $2
		ORDER BY (steam_id = $1) DESC, total_souls_earned DESC, id
		LIMIT $3`, q, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPlayers(rows)
}

var leaderboardColumns = map[string]string{
	"souls":    "souls",
	"earned":   "total_souls_earned",
	"elo":      "elo",
	"playtime": "playtime_minutes",
}

func (s *Store) ListLeaderboard(ctx context.Context, by string, limit int) ([]LeaderboardEntry, error) {
	col, ok := leaderboardColumns[by]
	if !ok {
		return nil, fmt.Errorf("unknown leaderboard %q", by)
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.Pool.Query(ctx, `SELECT steam_id, username, avatar_url, `+col+`::bigint
		FROM players ORDER BY `+col+` DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.SteamID, &e.Username, &e.AvatarURL, &e.Value); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func collectPlayers(rows pgx.Rows) ([]Player, error) {
	out := []Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func escapeLike(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(v)
}
