package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type TransactionFilter struct {
	SteamID  string
	Category string
	From     *time.Time
	To       *time.Time
}

// Credit adds souls and raises total_souls_earned by the same amount.
func (s *Store) Credit(ctx context.Context, e LedgerEntry) (Applied, error) {
	var out Applied
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		playerID, _, err := lockPlayer(ctx, tx, e.SteamID)
		if err != nil {
			return err
		}
		if prior, ok, err := findByIdempotencyKey(ctx, tx, playerID, e.IdempotencyKey, e.Amount, e.Category); err != nil {
			return err
		} else if ok {
			out = prior
			return nil
		}
		out, err = applyCredit(ctx, tx, playerID, e.Amount, e.Category, e.Description, e.IdempotencyKey)
		return err
	})
	return out, err
}

// Debit removes souls. The decrement is a conditional update so the balance
// can never be driven below zero, even by callers that skipped the row lock.
func (s *Store) Debit(ctx context.Context, e LedgerEntry) (Applied, error) {
	var out Applied
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		playerID, _, err := lockPlayer(ctx, tx, e.SteamID)
		if err != nil {
			return err
		}
		if prior, ok, err := findByIdempotencyKey(ctx, tx, playerID, e.IdempotencyKey, -e.Amount, e.Category); err != nil {
			return err
		} else if ok {
			out = prior
			return nil
		}
		out, err = applyDebit(ctx, tx, playerID, e.Amount, e.Category, e.Description, e.IdempotencyKey)
		return err
	})
	return out, err
}

// SetBalance overwrites the balance and logs the difference as one entry.
// A zero difference writes nothing.
func (s *Store) SetBalance(ctx context.Context, steamID string, newBalance int64, category, description string) (Applied, error) {
	var out Applied
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		playerID, current, err := lockPlayer(ctx, tx, steamID)
		if err != nil {
			return err
		}
		delta := newBalance - current
		if delta == 0 {
			return tx.QueryRow(ctx, `SELECT souls, total_souls_earned FROM players WHERE id = $1`, playerID).
				Scan(&out.Balance, &out.TotalSoulsEarned)
		}
		earned := delta
		if earned < 0 {
			earned = 0
		}
		if err := tx.QueryRow(ctx, `UPDATE players SET
			souls = $2,
			total_souls_earned = total_souls_earned + $3,
			updated_at = now()
			WHERE id = $1
			RETURNING souls, total_souls_earned`, playerID, newBalance, earned).Scan(&out.Balance, &out.TotalSoulsEarned); err != nil {
			return err
		}
		out.TransactionID, err = insertTransaction(ctx, tx, playerID, delta, category, description, out.Balance, "")
		return err
	})
	return out, err
}

const playerLogSQL = `SELECT t.id, t.player_id, p.steam_id, t.seq, t.amount, t.category, t.description,
		t.balance_after, t.idempotency_key, t.created_at
	FROM soul_transactions t JOIN players p ON p.id = t.player_id
	WHERE p.steam_id = $1
	ORDER BY t.seq`

// LedgerSnapshot reads the player and its full log from a single snapshot so
// the two agree even while writes continue.
func (s *Store) LedgerSnapshot(ctx context.Context, steamID string) (*Player, []SoulTransaction, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := scanPlayer(tx.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE steam_id = $1`, steamID))
	if err != nil {
		return nil, nil, mapNotFound(err)
	}
	rows, err := tx.Query(ctx, playerLogSQL, steamID)
	if err != nil {
		return nil, nil, err
	}
	txs, err := collectTransactions(rows)
	rows.Close()
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return p, txs, nil
}

func (s *Store) ListTransactions(ctx context.Context, f TransactionFilter, limit, offset int) ([]SoulTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `SELECT t.id, t.player_id, p.steam_id, t.seq, t.amount, t.category, t.description,
			t.balance_after, t.idempotency_key, t.created_at
		FROM soul_transactions t JOIN players p ON p.id = t.player_id
		WHERE ($1::text IS NULL OR p.steam_id = $1)
		  AND ($2::text IS NULL OR t.category = $2)
		  AND ($3::timestamptz IS NULL OR t.created_at >= $3)
		  AND ($4::timestamptz IS NULL OR t.created_at < $4)
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $5 OFFSET $6`, textParam(f.SteamID), textParam(f.Category), f.From, f.To, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]SoulTransaction, error) {
	out := []SoulTransaction{}
	for rows.Next() {
		var t SoulTransaction
		var key pgtype.Text
		if err := rows.Scan(&t.ID, &t.PlayerID, &t.SteamID, &t.Seq, &t.Amount, &t.Category, &t.Description,
			&t.BalanceAfter, &key, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.IdempotencyKey = textVal(key)
		out = append(out, t)
	}
	return out, rows.Err()
}

// lockPlayer takes the row lock that serializes every balance change for one
// player and returns the internal id with the balance seen under the lock.
func lockPlayer(ctx context.Context, tx pgx.Tx, steamID string) (string, int64, error) {
	var (
		id    string
		souls int64
	)
	err := tx.QueryRow(ctx, `SELECT id, souls FROM players WHERE steam_id = $1 FOR UPDATE`, steamID).Scan(&id, &souls)
	if err != nil {
		return "", 0, mapNotFound(err)
	}
	return id, souls, nil
}

// findByIdempotencyKey returns the entry already recorded under key. The
// stored entry must match the signed amount and category of the retry;
// anything else is a reused key and fails with ErrConflict.
func findByIdempotencyKey(ctx context.Context, tx pgx.Tx, playerID, key string, amount int64, category string) (Applied, bool, error) {
	if key == "" {
		return Applied{}, false, nil
	}
	var (
		out          Applied
		prevAmount   int64
		prevCategory string
	)
	err := tx.QueryRow(ctx, `SELECT t.id, t.amount, t.category, t.balance_after, p.total_souls_earned
		FROM soul_transactions t JOIN players p ON p.id = t.player_id
		WHERE t.player_id = $1 AND t.idempotency_key = $2`, playerID, key).
		Scan(&out.TransactionID, &prevAmount, &prevCategory, &out.Balance, &out.TotalSoulsEarned)
	if errors.Is(err, pgx.ErrNoRows) {
		return Applied{}, false, nil
	}
	if err != nil {
		return Applied{}, false, err
	}
	if prevAmount != amount || prevCategory != category {
		return Applied{}, false, ErrConflict
	}
	out.Replayed = true
	return out, true, nil
}

func applyCredit(ctx context.Context, tx pgx.Tx, playerID string, amount int64, category, description, key string) (Applied, error) {
	var out Applied
	if err := tx.QueryRow(ctx, `UPDATE players SET
		souls = souls + $2,
		total_souls_earned = total_souls_earned + $2,
		updated_at = now()
		WHERE id = $1
		RETURNING souls, total_souls_earned`, playerID, amount).Scan(&out.Balance, &out.TotalSoulsEarned); err != nil {
		return Applied{}, mapNotFound(err)
	}
	id, err := insertTransaction(ctx, tx, playerID, amount, category, description, out.Balance, key)
	if err != nil {
		return Applied{}, err
	}
	out.TransactionID = id
	return out, nil
}

func applyDebit(ctx context.Context, tx pgx.Tx, playerID string, amount int64, category, description, key string) (Applied, error) {
	var out Applied
	err := tx.QueryRow(ctx, `UPDATE players SET
		souls = souls - $2,
		updated_at = now()
		WHERE id = $1 AND souls >= $2
		RETURNING souls, total_souls_earned`, playerID, amount).Scan(&out.Balance, &out.TotalSoulsEarned)
	if errors.Is(err, pgx.ErrNoRows) {
		return Applied{}, ErrInsufficientFunds
	}
	if err != nil {
		return Applied{}, err
	}
	id, err := insertTransaction(ctx, tx, playerID, -amount, category, description, out.Balance, key)
	if err != nil {
		return Applied{}, err
	}
	out.TransactionID = id
	return out, nil
}

func insertTransaction(ctx context.Context, tx pgx.Tx, playerID string, amount int64, category, description string, balanceAfter int64, key string) (string, error) {
	// Callers hold the player row lock, so max+1 cannot race.
	var seq int64
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM soul_transactions WHERE player_id = $1`, playerID).
		Scan(&seq); err != nil {
		return "", err
	}
	id := NewID()
	_, err := tx.Exec(ctx, `INSERT INTO soul_transactions
		(id, player_id, seq, amount, category, description, balance_after, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, playerID, seq, amount, category, description, balanceAfter, textParam(key))
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrConflict
		}
		return "", err
	}
	return id, nil
}
