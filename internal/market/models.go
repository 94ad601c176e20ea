package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing is a seller's standing offer: a quantity of one item at a fixed
// unit price. TotalPrice always equals Quantity x PricePerUnit exactly; a
// listing is bought whole or not at all.
type Listing struct {
	ID           int64           `json:"id"`
	SellerID     int64           `json:"seller_id"`
	ItemID       int64           `json:"item_id"`
	ItemName     string          `json:"item_name,omitempty"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	CreatedAt    time.Time       `json:"created_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
	Active       bool            `json:"active"`
}

// Expired reports whether the listing's expiry has passed.
func (l *Listing) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// Settlement records the applied effects of one successful purchase.
type Settlement struct {
	Listing       Listing         `json:"listing"`
	BuyerID       int64           `json:"buyer_id"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	BuyerQuantity int             `json:"buyer_quantity"`
}
