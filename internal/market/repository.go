package market

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"nexium-server/internal/shared/database"
	apperrors "nexium-server/internal/shared/errors"
)

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	slog.With("component", "market_repository", "operation", "init").Debug("Initializing market repository")
	return &Repository{db: db}
}

const listingColumns = `l.id, l.seller_id, l.item_id, it.name, l.quantity, l.price_per_unit, l.total_price, l.created_at, l.expires_at, l.active`

func scanListing(scanner interface {
	Scan(dest ...interface{}) error
}) (*Listing, error) {
	var l Listing
	err := scanner.Scan(
		&l.ID,
		&l.SellerID,
		&l.ItemID,
		&l.ItemName,
		&l.Quantity,
		&l.PricePerUnit,
		&l.TotalPrice,
		&l.CreatedAt,
		&l.ExpiresAt,
		&l.Active,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateFromInventory debits the listed quantity from the seller's inventory
// and creates the listing in one transaction, so a crash can never leave the
// item both listed and held.
func (r *Repository) CreateFromInventory(l *Listing) (*Listing, error) {
	logger := slog.With(
		"component", "market_repository",
		"operation", "create_listing",
		"seller_id", l.SellerID,
		"item_id", l.ItemID,
		"quantity", l.Quantity,
	)

	tx, err := r.db.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin listing transaction: %w", err)
	}
	defer rollback(tx, logger)

	var remaining int
	err = tx.QueryRow(`
		UPDATE inventories
		SET quantity = quantity - $3
		WHERE player_id = $1 AND item_id = $2 AND quantity >= $3
		RETURNING quantity
	`, l.SellerID, l.ItemID, l.Quantity).Scan(&remaining)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Precondition("you do not have enough of that item to list")
		}
		logger.Error("Failed to debit seller inventory", "error", err)
		return nil, fmt.Errorf("failed to debit seller inventory: %w", err)
	}

	if remaining == 0 {
		if _, err := tx.Exec(
			`DELETE FROM inventories WHERE player_id = $1 AND item_id = $2 AND quantity = 0`,
			l.SellerID, l.ItemID,
		); err != nil {
			logger.Error("Failed to remove empty inventory entry", "error", err)
			return nil, fmt.Errorf("failed to remove empty inventory entry: %w", err)
		}
	}

	err = tx.QueryRow(`
		INSERT INTO market_listings (seller_id, item_id, quantity, price_per_unit, total_price, expires_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING id, created_at
	`, l.SellerID, l.ItemID, l.Quantity, l.PricePerUnit, l.TotalPrice, l.ExpiresAt).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		logger.Error("Failed to insert listing", "error", err)
		return nil, fmt.Errorf("failed to insert listing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit listing transaction", "error", err)
		return nil, fmt.Errorf("failed to commit listing transaction: %w", err)
	}

	l.Active = true
	logger.Info("Listing created", "listing_id", l.ID, "total_price", l.TotalPrice)
	return l, nil
}

// GetActive returns an active listing by id, or nil when it does not exist
// or is no longer active.
func (r *Repository) GetActive(listingID int64) (*Listing, error) {
	logger := slog.With("component", "market_repository", "operation", "get_active", "listing_id", listingID)

	query := `
		SELECT ` + listingColumns + `
		FROM market_listings l
		JOIN items it ON it.id = l.item_id
		WHERE l.id = $1 AND l.active
	`

	l, err := scanListing(r.db.QueryRow(query, listingID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("Database error getting listing", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	return l, nil
}

// ListActive returns active, unexpired listings in arrival order.
func (r *Repository) ListActive(limit, offset int) ([]Listing, error) {
	logger := slog.With("component", "market_repository", "operation", "list_active", "limit", limit, "offset", offset)

	query := `
		SELECT ` + listingColumns + `
		FROM market_listings l
		JOIN items it ON it.id = l.item_id
		WHERE l.active AND l.expires_at > NOW()
		ORDER BY l.created_at, l.id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		logger.Error("Failed to query listings", "error", err)
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var listings []Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			logger.Error("Failed to scan listing row", "error", err)
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *l)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}

	return listings, nil
}

// Settle applies a purchase as one atomic unit: debit the buyer, credit the
// seller, merge the quantity into the buyer's inventory, and deactivate the
// listing. The listing row is locked for the duration, so two buyers racing
// the same listing resolve to exactly one settlement; the loser sees a
// conflict.
func (r *Repository) Settle(buyerID, listingID int64, now time.Time) (*Settlement, error) {
	logger := slog.With(
		"component", "market_repository",
		"operation", "settle",
		"buyer_id", buyerID,
		"listing_id", listingID,
	)

	tx, err := r.db.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin settlement transaction: %w", err)
	}
	defer rollback(tx, logger)

	listing, err := scanListing(tx.QueryRow(`
		SELECT `+listingColumns+`
		FROM market_listings l
		JOIN items it ON it.id = l.item_id
		WHERE l.id = $1 AND l.active
		FOR UPDATE OF l
	`, listingID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Conflict("listing is no longer available")
		}
		logger.Error("Failed to lock listing", "error", err)
		return nil, fmt.Errorf("failed to lock listing: %w", err)
	}

	if listing.Expired(now) {
		return nil, apperrors.Precondition("listing has expired")
	}
	if listing.SellerID == buyerID {
		return nil, apperrors.Precondition("you cannot buy your own listing")
	}

	res, err := tx.Exec(`
		UPDATE players
		SET currency = currency - $2, last_active = NOW()
		WHERE id = $1 AND currency >= $2
	`, buyerID, listing.TotalPrice)
	if err != nil {
		logger.Error("Failed to debit buyer", "error", err)
		return nil, fmt.Errorf("failed to debit buyer: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to debit buyer: %w", err)
	} else if n == 0 {
		return nil, apperrors.Precondition("insufficient currency for this purchase")
	}

	if _, err := tx.Exec(`
		UPDATE players
		SET currency = currency + $2
		WHERE id = $1
	`, listing.SellerID, listing.TotalPrice); err != nil {
		logger.Error("Failed to credit seller", "error", err)
		return nil, fmt.Errorf("failed to credit seller: %w", err)
	}

	var buyerQuantity int
	err = tx.QueryRow(`
		INSERT INTO inventories (player_id, item_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id, item_id)
		DO UPDATE SET quantity = inventories.quantity + $3
		RETURNING quantity
	`, buyerID, listing.ItemID, listing.Quantity).Scan(&buyerQuantity)
	if err != nil {
		logger.Error("Failed to credit buyer inventory", "error", err)
		return nil, fmt.Errorf("failed to credit buyer inventory: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE market_listings SET active = FALSE WHERE id = $1`,
		listingID,
	); err != nil {
		logger.Error("Failed to deactivate listing", "error", err)
		return nil, fmt.Errorf("failed to deactivate listing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit settlement", "error", err)
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	listing.Active = false
	logger.Info("Listing settled", "seller_id", listing.SellerID, "amount", listing.TotalPrice)

	return &Settlement{
		Listing:       *listing,
		BuyerID:       buyerID,
		AmountPaid:    listing.TotalPrice,
		BuyerQuantity: buyerQuantity,
	}, nil
}

// CancelWithRefund takes a seller's own active listing off the market and
// returns the held quantity to their inventory as one atomic unit, so a
// crash can never deactivate the listing without the refund. The listing row
// is locked for the duration; a buyer racing the cancel settles or conflicts
// cleanly.
func (r *Repository) CancelWithRefund(sellerID, listingID int64) (*Listing, error) {
	logger := slog.With(
		"component", "market_repository",
		"operation", "cancel_listing",
		"seller_id", sellerID,
		"listing_id", listingID,
	)

	tx, err := r.db.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin cancel transaction: %w", err)
	}
	defer rollback(tx, logger)

	listing, err := scanListing(tx.QueryRow(`
		SELECT `+listingColumns+`
		FROM market_listings l
		JOIN items it ON it.id = l.item_id
		WHERE l.id = $1 AND l.active
		FOR UPDATE OF l
	`, listingID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFoundf("listing %d not found", listingID)
		}
		logger.Error("Failed to lock listing", "error", err)
		return nil, fmt.Errorf("failed to lock listing: %w", err)
	}

	if listing.SellerID != sellerID {
		return nil, apperrors.Precondition("you can only cancel your own listings")
	}

	if _, err := tx.Exec(
		`UPDATE market_listings SET active = FALSE WHERE id = $1`,
		listingID,
	); err != nil {
		logger.Error("Failed to deactivate listing", "error", err)
		return nil, fmt.Errorf("failed to deactivate listing: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO inventories (player_id, item_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id, item_id)
		DO UPDATE SET quantity = inventories.quantity + $3
	`, sellerID, listing.ItemID, listing.Quantity); err != nil {
		logger.Error("Failed to refund seller inventory", "error", err)
		return nil, fmt.Errorf("failed to refund seller inventory: %w", err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit cancel", "error", err)
		return nil, fmt.Errorf("failed to commit cancel: %w", err)
	}

	listing.Active = false
	logger.Info("Listing cancelled", "item_id", listing.ItemID, "quantity", listing.Quantity)
	return listing, nil
}

// DeactivateExpired sweeps expired listings and returns how many it turned
// off. Items on expired listings return to the void rather than the seller;
// the listing fee is the risk of listing.
func (r *Repository) DeactivateExpired(now time.Time) (int64, error) {
	logger := slog.With("component", "market_repository", "operation", "deactivate_expired")

	res, err := r.db.Exec(`UPDATE market_listings SET active = FALSE WHERE active AND expires_at <= $1`, now)
	if err != nil {
		logger.Error("Failed to sweep expired listings", "error", err)
		return 0, fmt.Errorf("failed to sweep expired listings: %w", err)
	}

	swept, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count swept listings: %w", err)
	}

	if swept > 0 {
		logger.Info("Expired listings deactivated", "count", swept)
	}
	return swept, nil
}

func rollback(tx *database.Tx, logger *slog.Logger) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		logger.Error("Failed to rollback transaction", "error", err)
	}
}
