package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const serverColumns = `id, name, address, api_key_hash, online, current_players, max_players, current_map,
	last_heartbeat_at, created_at`

func scanServer(row rowScanner) (*Server, error) {
	var sv Server
	var hb pgtype.Timestamptz
	if err := row.Scan(&sv.ID, &sv.Name, &sv.Address, &sv.APIKeyHash, &sv.Online, &sv.CurrentPlayers,
		&sv.MaxPlayers, &sv.CurrentMap, &hb, &sv.CreatedAt); err != nil {
		return nil, err
	}
	if hb.Valid {
		t := hb.Time
		sv.LastHeartbeatAt = &t
	}
	return &sv, nil
}

// CreateServer stores only the hash of apiKey.
func (s *Store) CreateServer(ctx context.Context, name, address, apiKey string) (*Server, error) {
	row := s.Pool.QueryRow(ctx, `INSERT INTO servers (id, name, address, api_key_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING `+serverColumns, NewID(), name, address, HashAPIKey(apiKey))
	sv, err := scanServer(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return sv, nil
}

func (s *Store) GetServerByAPIKey(ctx context.Context, apiKey string) (*Server, error) {
	sv, err := scanServer(s.Pool.QueryRow(ctx, `SELECT `+serverColumns+` FROM servers WHERE api_key_hash = $1`, HashAPIKey(apiKey)))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return sv, nil
}

func (s *Store) RecordHeartbeat(ctx context.Context, serverID string, hb Heartbeat) (*Server, error) {
	sv, err := scanServer(s.Pool.QueryRow(ctx, `UPDATE servers SET
		online = true,
		current_players = $2,
		max_players = $3,
		current_map = $4,
		last_heartbeat_at = now()
		WHERE id = $1
		RETURNING `+serverColumns, serverID, hb.CurrentPlayers, hb.MaxPlayers, hb.CurrentMap))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return sv, nil
}

// MarkStaleServersOffline flips servers whose last heartbeat is older than
// cutoff (or that never sent one) to offline and returns how many changed.
func (s *Store) MarkStaleServersOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.Pool.Exec(ctx, `UPDATE servers SET online = false, current_players = 0
		WHERE online AND (last_heartbeat_at IS NULL OR last_heartbeat_at < $1)`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) ListServers(ctx context.Context) ([]Server, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+serverColumns+` FROM servers ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Server{}
	for rows.Next() {
		sv, err := scanServer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sv)
	}
	return out, rows.Err()
}

// GlobalCounters reads every stats counter in one statement so the numbers
// come from the same snapshot.
func (s *Store) GlobalCounters(ctx context.Context) (GlobalCounters, error) {
	var c GlobalCounters
	err := s.Pool.QueryRow(ctx, `SELECT
		(SELECT count(*) FROM players),
		(SELECT count(*) FROM case_opens),
		(SELECT COALESCE(sum(souls), 0)::bigint FROM players),
		(SELECT COALESCE(sum(total_souls_earned), 0)::bigint FROM players),
		(SELECT count(*) FROM servers WHERE online),
		(SELECT COALESCE(sum(current_players), 0)::bigint FROM servers WHERE online)`).
		Scan(&c.Players, &c.CaseOpens, &c.SoulsCirculating, &c.SoulsEarned, &c.OnlineServers, &c.OnlinePlayers)
	return c, err
}
