package ship

import (
	"database/sql"
	"fmt"
	"log/slog"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	slog.With("component", "ship_repository", "operation", "init").Debug("Initializing ship repository")
	return &Repository{db: db}
}

const shipColumns = `id, player_id, name, hull, max_hull, shields, max_shields, attack, defense, speed, fuel, max_fuel, experience, level, active, created_at, updated_at`

func scanShip(row *sql.Row) (*Ship, error) {
	var s Ship
	err := row.Scan(
		&s.ID,
		&s.PlayerID,
		&s.Name,
		&s.Hull,
		&s.MaxHull,
		&s.Shields,
		&s.MaxShields,
		&s.Attack,
		&s.Defense,
		&s.Speed,
		&s.Fuel,
		&s.MaxFuel,
		&s.Experience,
		&s.Level,
		&s.Active,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ActiveForPlayer returns the player's active ship, or nil when none is
// active.
func (r *Repository) ActiveForPlayer(playerID int64) (*Ship, error) {
	logger := slog.With("component", "ship_repository", "operation", "active_for_player", "player_id", playerID)

	query := `SELECT ` + shipColumns + ` FROM ships WHERE player_id = $1 AND active LIMIT 1`

	s, err := scanShip(r.db.QueryRow(query, playerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("Database error loading active ship", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	return s, nil
}

// ApplyDelta mutates the ship in a single statement. Hull, shields and fuel
// are clamped to [0, max] inside the update so no interleaving can drive
// them out of range.
func (r *Repository) ApplyDelta(shipID int64, delta Delta) (*Ship, error) {
	logger := slog.With("component", "ship_repository", "operation", "apply_delta", "ship_id", shipID)

	query := `
		UPDATE ships
		SET hull = LEAST(max_hull, GREATEST(0, hull + $2)),
		    shields = LEAST(max_shields, GREATEST(0, shields + $3)),
		    fuel = LEAST(max_fuel, GREATEST(0, fuel + $4)),
		    experience = experience + $5,
		    level = level + $6,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + shipColumns

	s, err := scanShip(r.db.QueryRow(query, shipID, delta.Hull, delta.Shields, delta.Fuel, delta.Experience, delta.Level))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("ship %d not found", shipID)
		}
		logger.Error("Failed to apply ship delta", "error", err)
		return nil, fmt.Errorf("failed to apply ship delta: %w", err)
	}

	logger.Debug("Ship delta applied", "hull", s.Hull, "shields", s.Shields, "level", s.Level)
	return s, nil
}
