package combat

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// BattleRecord is the append-only ledger entry of one resolved battle.
type BattleRecord struct {
	ID             int64           `json:"id"`
	AttackerID     int64           `json:"attacker_id"`
	DefenderID     int64           `json:"defender_id"`
	WinnerID       int64           `json:"winner_id"`
	Rounds         int             `json:"rounds"`
	AttackerDamage int             `json:"attacker_damage"`
	DefenderDamage int             `json:"defender_damage"`
	Prize          decimal.Decimal `json:"prize"`
	Rating         string          `json:"rating"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Repository stores battle records. Rows are only ever inserted.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	slog.With("component", "battle_repository", "operation", "init").Debug("Initializing battle repository")
	return &Repository{db: db}
}

// Record appends one battle to the ledger, filling in id and created_at.
func (r *Repository) Record(rec *BattleRecord) error {
	logger := slog.With("component", "battle_repository", "operation", "record",
		"attacker_id", rec.AttackerID, "defender_id", rec.DefenderID)

	query := `
		INSERT INTO battles (attacker_id, defender_id, winner_id, rounds, attacker_damage, defender_damage, prize, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(query,
		rec.AttackerID, rec.DefenderID, rec.WinnerID, rec.Rounds,
		rec.AttackerDamage, rec.DefenderDamage, rec.Prize, rec.Rating,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		logger.Error("Failed to record battle", "error", err)
		return fmt.Errorf("failed to record battle: %w", err)
	}

	return nil
}

// LastAttackAt returns when the player last initiated a battle, or nil when
// they never have. Being attacked does not count.
func (r *Repository) LastAttackAt(playerID int64) (*time.Time, error) {
	logger := slog.With("component", "battle_repository", "operation", "last_attack_at", "player_id", playerID)

	var last sql.NullTime
	err := r.db.QueryRow(
		`SELECT MAX(created_at) FROM battles WHERE attacker_id = $1`,
		playerID,
	).Scan(&last)
	if err != nil {
		logger.Error("Database error reading battle history", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}
