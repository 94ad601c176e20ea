package universe

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	slog.With("component", "universe_repository", "operation", "init").Debug("Initializing universe repository")
	return &Repository{db: db}
}

const sectorColumns = `id, coordinate, name, sector_type, difficulty, resources, hazards, discovered_by, visit_count, last_visited, special_site, created_at`

func scanSector(row *sql.Row) (*Sector, error) {
	var s Sector
	var resources, hazards []byte
	err := row.Scan(
		&s.ID,
		&s.Coordinate,
		&s.Name,
		&s.Type,
		&s.Difficulty,
		&resources,
		&hazards,
		&s.DiscoveredBy,
		&s.VisitCount,
		&s.LastVisited,
		&s.SpecialSite,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(resources, &s.Resources); err != nil {
		return nil, fmt.Errorf("failed to decode sector resources: %w", err)
	}
	if err := json.Unmarshal(hazards, &s.Hazards); err != nil {
		return nil, fmt.Errorf("failed to decode sector hazards: %w", err)
	}

	return &s, nil
}

// GetByCoordinate returns the sector at a coordinate, or nil when the
// coordinate is still uncharted.
func (r *Repository) GetByCoordinate(coordinate string) (*Sector, error) {
	logger := slog.With("component", "universe_repository", "operation", "get_sector", "coordinate", coordinate)

	query := `
		SELECT ` + sectorColumns + `
		FROM sectors
		WHERE coordinate = $1
	`

	sector, err := scanSector(r.db.QueryRow(query, coordinate))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("Database error getting sector", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	return sector, nil
}

// CreateIfAbsent inserts the draft unless the coordinate already exists, in
// which case the existing sector is returned unchanged. Two callers racing
// the same coordinate can never produce two rows; the loser of the insert
// race re-fetches the winner's sector. The bool reports whether this call
// created the sector.
func (r *Repository) CreateIfAbsent(draft SectorDraft) (*Sector, bool, error) {
	logger := slog.With(
		"component", "universe_repository",
		"operation", "create_sector_if_absent",
		"coordinate", draft.Coordinate,
	)

	resources, err := json.Marshal(draft.Resources)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode sector resources: %w", err)
	}
	hazards, err := json.Marshal(draft.Hazards)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode sector hazards: %w", err)
	}

	query := `
		INSERT INTO sectors (coordinate, name, sector_type, difficulty, resources, hazards, discovered_by, special_site)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (coordinate) DO NOTHING
		RETURNING ` + sectorColumns

	sector, err := scanSector(r.db.QueryRow(query,
		draft.Coordinate,
		draft.Name,
		draft.Type,
		draft.Difficulty,
		resources,
		hazards,
		draft.DiscoveredBy,
		draft.SpecialSite,
	))
	if err == nil {
		logger.Info("Sector created", "sector_id", sector.ID, "name", sector.Name)
		return sector, true, nil
	}
	if err != sql.ErrNoRows {
		logger.Error("Failed to create sector", "error", err)
		return nil, false, fmt.Errorf("failed to create sector: %w", err)
	}

	// Insert lost the race; the row exists now.
	existing, err := r.GetByCoordinate(draft.Coordinate)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("sector %s vanished after conflicting insert", draft.Coordinate)
	}

	logger.Debug("Sector already existed", "sector_id", existing.ID)
	return existing, false, nil
}

// RecordVisit bumps the visit counter. Draft fields stay immutable; only
// visit metadata changes after creation.
func (r *Repository) RecordVisit(sectorID int64, at time.Time) error {
	logger := slog.With("component", "universe_repository", "operation", "record_visit", "sector_id", sectorID)

	query := `
		UPDATE sectors
		SET visit_count = visit_count + 1, last_visited = $2
		WHERE id = $1
	`

	if _, err := r.db.Exec(query, sectorID, at); err != nil {
		logger.Error("Failed to record visit", "error", err)
		return fmt.Errorf("failed to record visit: %w", err)
	}

	return nil
}
