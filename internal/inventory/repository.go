// Package inventory stores (player, item) quantities. An entry that reaches
// zero is removed, never retained.
package inventory

import (
	"database/sql"
	"fmt"
	"log/slog"

	apperrors "nexium-server/internal/shared/errors"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	slog.With("component", "inventory_repository", "operation", "init").Debug("Initializing inventory repository")
	return &Repository{db: db}
}

// Entry is one stack of an item in a player's hold.
type Entry struct {
	PlayerID int64  `json:"player_id"`
	ItemID   int64  `json:"item_id"`
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// Get returns the quantity a player holds of an item; zero when there is no
// entry.
func (r *Repository) Get(playerID, itemID int64) (int, error) {
	logger := slog.With("component", "inventory_repository", "operation", "get", "player_id", playerID, "item_id", itemID)

	var quantity int
	err := r.db.QueryRow(
		`SELECT quantity FROM inventories WHERE player_id = $1 AND item_id = $2`,
		playerID, itemID,
	).Scan(&quantity)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		logger.Error("Database error reading inventory", "error", err)
		return 0, fmt.Errorf("database error: %w", err)
	}

	return quantity, nil
}

// List returns every stack a player holds.
func (r *Repository) List(playerID int64) ([]Entry, error) {
	logger := slog.With("component", "inventory_repository", "operation", "list", "player_id", playerID)

	query := `
		SELECT i.player_id, i.item_id, it.name, i.quantity
		FROM inventories i
		JOIN items it ON it.id = i.item_id
		WHERE i.player_id = $1
		ORDER BY it.name
	`

	rows, err := r.db.Query(query, playerID)
	if err != nil {
		logger.Error("Failed to query inventory", "error", err)
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.PlayerID, &e.ItemID, &e.ItemName, &e.Quantity); err != nil {
			logger.Error("Failed to scan inventory row", "error", err)
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating inventory: %w", err)
	}

	return entries, nil
}

// EnsureItem resolves an item name to its id, creating the item row on
// first sight. Resource finds use this so the items catalog grows with the
// universe instead of being pre-seeded exhaustively.
func (r *Repository) EnsureItem(name string) (int64, error) {
	logger := slog.With("component", "inventory_repository", "operation", "ensure_item", "name", name)

	query := `
		INSERT INTO items (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`

	var itemID int64
	if err := r.db.QueryRow(query, name).Scan(&itemID); err != nil {
		logger.Error("Failed to ensure item", "error", err)
		return 0, fmt.Errorf("failed to ensure item: %w", err)
	}

	return itemID, nil
}

// Adjust changes a stack by delta, merging into an existing entry when
// present and deleting the row when it reaches zero. The adjust and the
// delete commit together, so a stack at zero is never observable. A delta
// that would go negative is refused; callers pre-check quantities.
func (r *Repository) Adjust(playerID, itemID int64, delta int) (int, error) {
	logger := slog.With("component", "inventory_repository", "operation", "adjust",
		"player_id", playerID, "item_id", itemID, "delta", delta)

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin inventory transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			logger.Error("Failed to rollback transaction", "error", err)
		}
	}()

	query := `
		INSERT INTO inventories (player_id, item_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id, item_id)
		DO UPDATE SET quantity = inventories.quantity + $3
		WHERE inventories.quantity + $3 >= 0
		RETURNING quantity
	`

	var quantity int
	err = tx.QueryRow(query, playerID, itemID, delta).Scan(&quantity)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, apperrors.Invariantf("inventory adjust of %d for player %d item %d would go negative", delta, playerID, itemID)
		}
		logger.Error("Failed to adjust inventory", "error", err)
		return 0, fmt.Errorf("failed to adjust inventory: %w", err)
	}

	if quantity < 0 {
		return 0, apperrors.Invariantf("inventory for player %d item %d reached %d", playerID, itemID, quantity)
	}

	if quantity == 0 {
		if _, err := tx.Exec(
			`DELETE FROM inventories WHERE player_id = $1 AND item_id = $2 AND quantity = 0`,
			playerID, itemID,
		); err != nil {
			logger.Error("Failed to remove empty inventory entry", "error", err)
			return 0, fmt.Errorf("failed to remove empty inventory entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit inventory adjust", "error", err)
		return 0, fmt.Errorf("failed to commit inventory adjust: %w", err)
	}

	logger.Debug("Inventory adjusted", "quantity", quantity)
	return quantity, nil
}
