package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// OpenCase debits the case price and grants the rolled item in one
// transaction. On ErrInsufficientFunds nothing is written.
func (s *Store) OpenCase(ctx context.Context, in CaseOpenInput) (CaseOpenResult, error) {
	var out CaseOpenResult
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		playerID, _, err := lockPlayer(ctx, tx, in.SteamID)
		if err != nil {
			return err
		}
		applied, err := applyDebit(ctx, tx, playerID, in.Price, CategoryCaseOpen, "Opened "+in.CaseName, "")
		if err != nil {
			return err
		}
		itemID := NewID()
		if _, err := tx.Exec(ctx, `INSERT INTO inventory_items (id, player_id, item_name, weapon, rarity, wear)
			VALUES ($1, $2, $3, $4, $5, $6)`, itemID, playerID, in.ItemName, in.Weapon, in.Rarity, in.Wear); err != nil {
			return err
		}
		openID := NewID()
		if _, err := tx.Exec(ctx, `INSERT INTO case_opens
			(id, player_id, case_id, inventory_item_id, item_name, weapon, rarity, wear, price, server_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			openID, playerID, in.CaseID, itemID, in.ItemName, in.Weapon, in.Rarity, in.Wear, in.Price, textParam(in.ServerID)); err != nil {
			return err
		}
		open, err := scanCaseOpen(tx.QueryRow(ctx, caseOpenSelect+` WHERE o.id = $1`, openID))
		if err != nil {
			return err
		}
		out = CaseOpenResult{Open: *open, Balance: applied.Balance}
		return nil
	})
	return out, err
}

func (s *Store) ListInventory(ctx context.Context, steamID string) ([]InventoryItem, error) {
	rows, err := s.Pool.Query(ctx, `SELECT i.id, i.player_id, i.item_name, i.weapon, i.rarity, i.wear,
			i.equipped, i.favorite, i.created_at
		FROM inventory_items i JOIN players p ON p.id = i.player_id
		WHERE p.steam_id = $1
		ORDER BY i.created_at DESC, i.id DESC`, steamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []InventoryItem{}
	for rows.Next() {
		var it InventoryItem
		if err := rows.Scan(&it.ID, &it.PlayerID, &it.ItemName, &it.Weapon, &it.Rarity, &it.Wear,
			&it.Equipped, &it.Favorite, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

type InventoryFlag string

const (
	FlagEquipped InventoryFlag = "equipped"
	FlagFavorite InventoryFlag = "favorite"
)

// SetInventoryFlag only touches items owned by steamID; anything else is
// ErrNotFound.
func (s *Store) SetInventoryFlag(ctx context.Context, steamID, itemID string, flag InventoryFlag, value bool) error {
	var col string
	switch flag {
	case FlagEquipped:
		col = "equipped"
	case FlagFavorite:
		col = "favorite"
	default:
		return ErrNotFound
	}
	tag, err := s.Pool.Exec(ctx, `UPDATE inventory_items i SET `+col+` = $3
		FROM players p
		WHERE i.player_id = p.id AND p.steam_id = $1 AND i.id = $2`, steamID, itemID, value)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const caseOpenSelect = `SELECT o.id, o.player_id, p.steam_id, p.username, p.avatar_url, o.case_id,
		o.inventory_item_id, o.item_name, o.weapon, o.rarity, o.wear, o.price, o.server_id, o.created_at
	FROM case_opens o JOIN players p ON p.id = o.player_id`

func scanCaseOpen(row rowScanner) (*CaseOpen, error) {
	var o CaseOpen
	var serverID pgtype.Text
	if err := row.Scan(&o.ID, &o.PlayerID, &o.SteamID, &o.Username, &o.AvatarURL, &o.CaseID,
		&o.InventoryItemID, &o.ItemName, &o.Weapon, &o.Rarity, &o.Wear, &o.Price, &serverID, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.ServerID = textVal(serverID)
	return &o, nil
}

// ListCaseOpens returns opens strictly newer than since (when set), newest
// first.
func (s *Store) ListCaseOpens(ctx context.Context, since *time.Time, limit int) ([]CaseOpen, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.Pool.Query(ctx, caseOpenSelect+`
		WHERE ($1::timestamptz IS NULL OR o.created_at > $1)
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $2`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []CaseOpen{}
	for rows.Next() {
		o, err := scanCaseOpen(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
