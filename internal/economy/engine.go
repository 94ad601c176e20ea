// Package economy holds the market rules and the energy clock: listing
// validation, purchase preconditions, price trend analysis, and lazy energy
// regeneration. Everything here is pure computation; persistence and
// settlement live in the market repository.
package economy

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"nexium-server/internal/market"
	"nexium-server/internal/player"
	"nexium-server/internal/rng"
	apperrors "nexium-server/internal/shared/errors"
)

// Trend directions.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// trendThreshold is the percentage move beyond which a price counts as
// rising or falling rather than stable.
var trendThreshold = decimal.NewFromInt(5)

// Trend summarizes price movement for one item across its active listings.
type Trend struct {
	ItemID     int64           `json:"item_id"`
	ItemName   string          `json:"item_name"`
	MeanPrice  decimal.Decimal `json:"mean_price"`
	RecentMean decimal.Decimal `json:"recent_mean"`
	ChangePct  decimal.Decimal `json:"change_pct"`
	Direction  string          `json:"direction"`
}

// PopularItem is one row of the market overview ranking.
type PopularItem struct {
	ItemID       int64           `json:"item_id"`
	ItemName     string          `json:"item_name"`
	Listings     int             `json:"listings"`
	AveragePrice decimal.Decimal `json:"average_price"`
}

type Engine struct {
	listingTTL time.Duration
}

func NewEngine(listingTTL time.Duration) *Engine {
	return &Engine{listingTTL: listingTTL}
}

// NewListing validates a sell request and builds the listing value. The
// total is the exact decimal product of quantity and unit price; the
// inventory debit happens together with persistence, not here.
func (e *Engine) NewListing(sellerID, itemID int64, quantity int, pricePerUnit decimal.Decimal, now time.Time) (*market.Listing, error) {
	if quantity <= 0 {
		return nil, apperrors.Validation("listing quantity must be positive")
	}
	if !pricePerUnit.IsPositive() {
		return nil, apperrors.Validation("price per unit must be positive")
	}

	return &market.Listing{
		SellerID:     sellerID,
		ItemID:       itemID,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
		TotalPrice:   pricePerUnit.Mul(decimal.NewFromInt(int64(quantity))),
		ExpiresAt:    now.Add(e.listingTTL),
	}, nil
}

// ValidatePurchase checks a purchase's preconditions against a snapshot of
// the listing and the buyer. The settlement transaction re-checks under its
// row lock; this front check exists to give a clean error without taking
// the lock.
func (e *Engine) ValidatePurchase(l *market.Listing, buyer *player.Player, now time.Time) error {
	if !l.Active {
		return apperrors.Precondition("listing is no longer active")
	}
	if l.Expired(now) {
		return apperrors.Precondition("listing has expired")
	}
	if l.SellerID == buyer.ID {
		return apperrors.Precondition("you cannot buy your own listing")
	}
	if buyer.Currency.LessThan(l.TotalPrice) {
		return apperrors.Precondition("insufficient currency for this purchase")
	}
	return nil
}

// ComputeTrends groups active listings by item and compares the recent mean
// unit price (last up to five listings by arrival order) against the overall
// mean. A move beyond five percent in either direction classifies the item
// as rising or falling. Pure and idempotent over a fixed listing set.
func ComputeTrends(listings []market.Listing) map[int64]Trend {
	grouped := groupByItem(listings)

	trends := make(map[int64]Trend, len(grouped))
	for itemID, group := range grouped {
		mean := meanUnitPrice(group)

		recent := group
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		recentMean := meanUnitPrice(recent)

		changePct := recentMean.Sub(mean).
			Div(mean).
			Mul(decimal.NewFromInt(100)).
			Round(2)

		direction := TrendStable
		if changePct.GreaterThan(trendThreshold) {
			direction = TrendRising
		} else if changePct.LessThan(trendThreshold.Neg()) {
			direction = TrendFalling
		}

		trends[itemID] = Trend{
			ItemID:     itemID,
			ItemName:   group[0].ItemName,
			MeanPrice:  mean.Round(2),
			RecentMean: recentMean.Round(2),
			ChangePct:  changePct,
			Direction:  direction,
		}
	}

	return trends
}

// PopularItems ranks items by how many active listings they have, breaking
// ties by item id, and returns at most the top ten with their average unit
// price.
func PopularItems(listings []market.Listing) []PopularItem {
	grouped := groupByItem(listings)

	items := make([]PopularItem, 0, len(grouped))
	for itemID, group := range grouped {
		items = append(items, PopularItem{
			ItemID:       itemID,
			ItemName:     group[0].ItemName,
			Listings:     len(group),
			AveragePrice: meanUnitPrice(group).Round(2),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Listings != items[j].Listings {
			return items[i].Listings > items[j].Listings
		}
		return items[i].ItemID < items[j].ItemID
	})

	if len(items) > 10 {
		items = items[:10]
	}
	return items
}

// DailyRewardCooldown is the minimum gap between two daily claims.
const DailyRewardCooldown = 24 * time.Hour

const (
	dailyBaseReward   = 100
	dailyLevelBonus   = 10
	dailyRewardJitter = 50
	dailyBonusChance  = 0.1
)

// dailyBonusItems are the supply crates a lucky claim can include.
var dailyBonusItems = []string{"Fuel Cell", "Repair Kit", "Shield Booster", "Energy Core"}

// DailyReward is one resolved daily claim. BonusItem is empty on most claims.
type DailyReward struct {
	Currency      decimal.Decimal `json:"currency"`
	BonusItem     string          `json:"bonus_item,omitempty"`
	BonusQuantity int             `json:"bonus_quantity,omitempty"`
}

// DailyEligible reports whether a player may claim the daily reward, and if
// not, how long until they can.
func DailyEligible(lastClaim *time.Time, now time.Time) (bool, time.Duration) {
	if lastClaim == nil {
		return true, 0
	}
	wait := DailyRewardCooldown - now.Sub(*lastClaim)
	if wait <= 0 {
		return true, 0
	}
	return false, wait
}

// RollDailyReward draws one daily reward: a base crystal grant scaled by the
// ship's level plus jitter, and a one-in-ten chance of a small supply crate.
// The full energy restore that accompanies a claim is the caller's to apply.
func RollDailyReward(shipLevel int, src rng.Source) DailyReward {
	reward := DailyReward{
		Currency: decimal.NewFromInt(int64(dailyBaseReward + shipLevel*dailyLevelBonus + src.IntN(dailyRewardJitter))),
	}

	if rng.Chance(src, dailyBonusChance) {
		reward.BonusItem = dailyBonusItems[src.IntN(len(dailyBonusItems))]
		reward.BonusQuantity = rng.IntBetween(src, 1, 3)
	}
	return reward
}

// RestoreEnergy applies lazy regeneration of one energy per elapsed minute
// since the last restore, capped at the player's maximum. It mutates the
// player snapshot and returns how much was restored; the caller persists.
func RestoreEnergy(p *player.Player, now time.Time) int {
	if p.Energy >= p.MaxEnergy {
		p.LastEnergyRestore = now
		return 0
	}

	minutes := int(now.Sub(p.LastEnergyRestore).Minutes())
	if minutes <= 0 {
		return 0
	}

	restored := p.MaxEnergy - p.Energy
	if minutes < restored {
		restored = minutes
	}

	p.Energy += restored
	if p.Energy >= p.MaxEnergy {
		// Full tank; leftover elapsed time grants nothing.
		p.LastEnergyRestore = now
	} else {
		// Keep the partial minute so slow pollers do not lose regen.
		p.LastEnergyRestore = p.LastEnergyRestore.Add(time.Duration(restored) * time.Minute)
	}
	return restored
}

func groupByItem(listings []market.Listing) map[int64][]market.Listing {
	grouped := make(map[int64][]market.Listing)
	for _, l := range listings {
		grouped[l.ItemID] = append(grouped[l.ItemID], l)
	}
	return grouped
}

func meanUnitPrice(listings []market.Listing) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range listings {
		sum = sum.Add(l.PricePerUnit)
	}
	return sum.Div(decimal.NewFromInt(int64(len(listings))))
}
