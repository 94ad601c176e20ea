package economy

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"nexium-server/internal/market"
	"nexium-server/internal/player"
	"nexium-server/internal/rng"
	apperrors "nexium-server/internal/shared/errors"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func listing(itemID int64, unitPrice string) market.Listing {
	return market.Listing{
		ItemID:       itemID,
		ItemName:     "Item",
		Quantity:     1,
		PricePerUnit: dec(unitPrice),
		TotalPrice:   dec(unitPrice),
		Active:       true,
	}
}

func TestNewListingExactTotal(t *testing.T) {
	engine := NewEngine(7 * 24 * time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l, err := engine.NewListing(1, 42, 3, dec("19.99"), now)
	if err != nil {
		t.Fatal(err)
	}

	if !l.TotalPrice.Equal(dec("59.97")) {
		t.Errorf("total = %s, want 59.97", l.TotalPrice)
	}
	if !l.ExpiresAt.Equal(now.Add(7 * 24 * time.Hour)) {
		t.Errorf("expiry = %v, want now+7d", l.ExpiresAt)
	}
}

func TestNewListingRejectsInvalidInput(t *testing.T) {
	engine := NewEngine(time.Hour)
	now := time.Now()

	if _, err := engine.NewListing(1, 42, 0, dec("5"), now); !apperrors.Is(err, apperrors.ErrorTypeValidation) {
		t.Errorf("zero quantity: error type = %v, want validation", apperrors.GetType(err))
	}
	if _, err := engine.NewListing(1, 42, 3, dec("0"), now); !apperrors.Is(err, apperrors.ErrorTypeValidation) {
		t.Errorf("zero price: error type = %v, want validation", apperrors.GetType(err))
	}
	if _, err := engine.NewListing(1, 42, 3, dec("-1.50"), now); !apperrors.Is(err, apperrors.ErrorTypeValidation) {
		t.Errorf("negative price: error type = %v, want validation", apperrors.GetType(err))
	}
}

func TestValidatePurchase(t *testing.T) {
	engine := NewEngine(time.Hour)
	now := time.Now()

	base := market.Listing{
		ID:         1,
		SellerID:   2,
		TotalPrice: dec("50.00"),
		ExpiresAt:  now.Add(time.Hour),
		Active:     true,
	}
	buyer := &player.Player{ID: 3, Currency: dec("50.00")}

	// Exact balance is enough.
	if err := engine.ValidatePurchase(&base, buyer, now); err != nil {
		t.Errorf("exact balance rejected: %v", err)
	}

	inactive := base
	inactive.Active = false
	if err := engine.ValidatePurchase(&inactive, buyer, now); !apperrors.Is(err, apperrors.ErrorTypePrecondition) {
		t.Errorf("inactive listing: error type = %v, want precondition", apperrors.GetType(err))
	}

	expired := base
	expired.ExpiresAt = now.Add(-time.Minute)
	if err := engine.ValidatePurchase(&expired, buyer, now); !apperrors.Is(err, apperrors.ErrorTypePrecondition) {
		t.Errorf("expired listing: error type = %v, want precondition", apperrors.GetType(err))
	}

	if err := engine.ValidatePurchase(&base, &player.Player{ID: 2, Currency: dec("1000")}, now); !apperrors.Is(err, apperrors.ErrorTypePrecondition) {
		t.Error("self-trade should be rejected regardless of funds")
	}

	poor := &player.Player{ID: 3, Currency: dec("49.99")}
	if err := engine.ValidatePurchase(&base, poor, now); !apperrors.Is(err, apperrors.ErrorTypePrecondition) {
		t.Errorf("insufficient funds: error type = %v, want precondition", apperrors.GetType(err))
	}
}

func TestComputeTrendsClassification(t *testing.T) {
	var listings []market.Listing
	// Item 1: five at 10 then five at 20; the recent mean sits well above the
	// overall mean.
	for i := 0; i < 5; i++ {
		listings = append(listings, listing(1, "10"))
	}
	for i := 0; i < 5; i++ {
		listings = append(listings, listing(1, "20"))
	}
	// Item 2: the reverse shape.
	for i := 0; i < 5; i++ {
		listings = append(listings, listing(2, "20"))
	}
	for i := 0; i < 5; i++ {
		listings = append(listings, listing(2, "10"))
	}
	// Item 3: flat.
	for i := 0; i < 4; i++ {
		listings = append(listings, listing(3, "10"))
	}

	trends := ComputeTrends(listings)

	if got := trends[1]; got.Direction != TrendRising || !got.ChangePct.Equal(dec("33.33")) {
		t.Errorf("item 1: direction %s change %s, want rising 33.33", got.Direction, got.ChangePct)
	}
	if got := trends[2]; got.Direction != TrendFalling || !got.ChangePct.Equal(dec("-33.33")) {
		t.Errorf("item 2: direction %s change %s, want falling -33.33", got.Direction, got.ChangePct)
	}
	if got := trends[3]; got.Direction != TrendStable || !got.ChangePct.IsZero() {
		t.Errorf("item 3: direction %s change %s, want stable 0", got.Direction, got.ChangePct)
	}
}

func TestComputeTrendsIdempotent(t *testing.T) {
	listings := []market.Listing{
		listing(1, "10.50"), listing(1, "11.25"), listing(2, "3.33"),
		listing(1, "12.00"), listing(2, "3.00"), listing(1, "9.75"),
		listing(1, "14.10"), listing(1, "15.00"),
	}

	first := ComputeTrends(listings)
	second := ComputeTrends(listings)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("trends differ across identical inputs:\n%v\n%v", first, second)
	}
}

func TestPopularItemsRanking(t *testing.T) {
	listings := []market.Listing{
		listing(1, "10"), listing(1, "20"),
		listing(2, "5"), listing(2, "5"), listing(2, "5"),
		listing(3, "100"),
	}

	items := PopularItems(listings)

	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	if items[0].ItemID != 2 || items[0].Listings != 3 {
		t.Errorf("top item = %d (%d listings), want item 2 with 3", items[0].ItemID, items[0].Listings)
	}
	if items[1].ItemID != 1 {
		t.Errorf("second item = %d, want 1", items[1].ItemID)
	}
	if !items[1].AveragePrice.Equal(dec("15")) {
		t.Errorf("item 1 average = %s, want 15", items[1].AveragePrice)
	}
}

func TestRestoreEnergy(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	p := &player.Player{Energy: 50, MaxEnergy: 100, LastEnergyRestore: now.Add(-10 * time.Minute)}
	if got := RestoreEnergy(p, now); got != 10 {
		t.Errorf("restored = %d, want 10", got)
	}
	if p.Energy != 60 {
		t.Errorf("energy = %d, want 60", p.Energy)
	}

	// Partial minutes carry over instead of being lost.
	p = &player.Player{Energy: 50, MaxEnergy: 100, LastEnergyRestore: now.Add(-90 * time.Second)}
	if got := RestoreEnergy(p, now); got != 1 {
		t.Errorf("restored = %d, want 1", got)
	}
	if got := RestoreEnergy(p, now.Add(30*time.Second)); got != 1 {
		t.Errorf("carried half minute: restored = %d, want 1", got)
	}

	// Regeneration caps at max.
	p = &player.Player{Energy: 98, MaxEnergy: 100, LastEnergyRestore: now.Add(-time.Hour)}
	if got := RestoreEnergy(p, now); got != 2 {
		t.Errorf("restored = %d, want 2", got)
	}
	if p.Energy != 100 {
		t.Errorf("energy = %d, want 100", p.Energy)
	}

	// A full player gains nothing.
	p = &player.Player{Energy: 100, MaxEnergy: 100, LastEnergyRestore: now.Add(-time.Hour)}
	if got := RestoreEnergy(p, now); got != 0 {
		t.Errorf("restored = %d, want 0", got)
	}
}

func TestDailyEligible(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if ok, _ := DailyEligible(nil, now); !ok {
		t.Error("a player who never claimed should be eligible")
	}

	recent := now.Add(-23 * time.Hour)
	ok, wait := DailyEligible(&recent, now)
	if ok {
		t.Error("claim 23h ago should not be eligible")
	}
	if wait != time.Hour {
		t.Errorf("wait = %v, want 1h", wait)
	}

	stale := now.Add(-25 * time.Hour)
	if ok, _ := DailyEligible(&stale, now); !ok {
		t.Error("claim 25h ago should be eligible")
	}
}

func TestRollDailyRewardBounds(t *testing.T) {
	sawBonus := false
	for seed := int64(0); seed < 200; seed++ {
		reward := RollDailyReward(3, rng.New(seed))

		lo, hi := decimal.NewFromInt(130), decimal.NewFromInt(179)
		if reward.Currency.LessThan(lo) || reward.Currency.GreaterThan(hi) {
			t.Errorf("seed %d: currency %s out of [130,179] at level 3", seed, reward.Currency)
		}

		if reward.BonusItem != "" {
			sawBonus = true
			if reward.BonusQuantity < 1 || reward.BonusQuantity > 3 {
				t.Errorf("seed %d: bonus quantity %d out of [1,3]", seed, reward.BonusQuantity)
			}
		} else if reward.BonusQuantity != 0 {
			t.Errorf("seed %d: bonus quantity %d without a bonus item", seed, reward.BonusQuantity)
		}
	}

	if !sawBonus {
		t.Error("200 claims never drew a bonus crate")
	}
}
