package player

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	apperrors "nexium-server/internal/shared/errors"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	slog.With("component", "player_repository", "operation", "init").Debug("Initializing player repository")
	return &Repository{db: db}
}

const playerColumns = `id, username, currency, energy, max_energy, total_explored, battles_won, last_energy_restore, last_daily_claim, last_active, created_at`

func scanPlayer(row *sql.Row) (*Player, error) {
	var p Player
	err := row.Scan(
		&p.ID,
		&p.Username,
		&p.Currency,
		&p.Energy,
		&p.MaxEnergy,
		&p.TotalExplored,
		&p.BattlesWon,
		&p.LastEnergyRestore,
		&p.LastDailyClaim,
		&p.LastActive,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Load returns the player by id, or nil when it does not exist.
func (r *Repository) Load(playerID int64) (*Player, error) {
	logger := slog.With("component", "player_repository", "operation", "load", "player_id", playerID)

	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	p, err := scanPlayer(r.db.QueryRow(query, playerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("Database error loading player", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	return p, nil
}

// ApplyDelta mutates the player in a single statement. Energy is clamped to
// [0, max_energy]; a currency delta that would leave the balance negative is
// refused outright. Callers pre-check balances, so a refusal here marks a
// bug, not a user error.
func (r *Repository) ApplyDelta(playerID int64, delta Delta) (*Player, error) {
	logger := slog.With("component", "player_repository", "operation", "apply_delta", "player_id", playerID)

	query := `
		UPDATE players
		SET currency = currency + $2,
		    energy = LEAST(max_energy, GREATEST(0, energy + $3)),
		    total_explored = total_explored + $4,
		    battles_won = battles_won + $5,
		    last_active = NOW()
		WHERE id = $1 AND currency + $2 >= 0
		RETURNING ` + playerColumns

	p, err := scanPlayer(r.db.QueryRow(query, playerID, delta.Currency, delta.Energy, delta.TotalExplored, delta.BattlesWon))
	if err != nil {
		if err == sql.ErrNoRows {
			exists, existsErr := r.exists(playerID)
			if existsErr != nil {
				return nil, existsErr
			}
			if !exists {
				return nil, apperrors.NotFoundf("player %d not found", playerID)
			}
			return nil, apperrors.Invariantf("currency delta %s for player %d would leave a negative balance", delta.Currency, playerID)
		}
		logger.Error("Failed to apply player delta", "error", err)
		return nil, fmt.Errorf("failed to apply player delta: %w", err)
	}

	logger.Debug("Player delta applied", "currency", p.Currency, "energy", p.Energy)
	return p, nil
}

// SetEnergy records the result of a lazy energy restore: the regenerated
// value plus the restore timestamp the regeneration was computed against.
func (r *Repository) SetEnergy(playerID int64, energy int, restoredAt time.Time) error {
	logger := slog.With("component", "player_repository", "operation", "set_energy", "player_id", playerID)

	query := `
		UPDATE players
		SET energy = LEAST(max_energy, GREATEST(0, $2)), last_energy_restore = $3
		WHERE id = $1
	`

	if _, err := r.db.Exec(query, playerID, energy, restoredAt); err != nil {
		logger.Error("Failed to set energy", "error", err)
		return fmt.Errorf("failed to set energy: %w", err)
	}

	return nil
}

// SetDailyClaim stamps when the player last took the daily reward.
func (r *Repository) SetDailyClaim(playerID int64, at time.Time) error {
	logger := slog.With("component", "player_repository", "operation", "set_daily_claim", "player_id", playerID)

	if _, err := r.db.Exec(
		`UPDATE players SET last_daily_claim = $2 WHERE id = $1`,
		playerID, at,
	); err != nil {
		logger.Error("Failed to set daily claim", "error", err)
		return fmt.Errorf("failed to set daily claim: %w", err)
	}

	return nil
}

func (r *Repository) exists(playerID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM players WHERE id = $1)`, playerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return exists, nil
}
