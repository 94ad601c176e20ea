// Package game orchestrates the engines against persistent state. The
// service owns the per-player locks, debits energy, persists engine deltas
// through the repositories, and emits domain events. Engines stay pure; this
// is the only layer that mutates.
package game

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"nexium-server/internal/combat"
	"nexium-server/internal/economy"
	"nexium-server/internal/events"
	"nexium-server/internal/exploration"
	"nexium-server/internal/inventory"
	"nexium-server/internal/market"
	"nexium-server/internal/player"
	"nexium-server/internal/rng"
	"nexium-server/internal/shared/config"
	apperrors "nexium-server/internal/shared/errors"
	"nexium-server/internal/ship"
	"nexium-server/internal/universe"
)

// battlePrizeRate is the share of the loser's currency the winner claims.
var battlePrizeRate = decimal.New(5, -2)

// battleCooldown is the minimum gap between two attacks by the same player.
// Defending costs nothing and has no cooldown.
const battleCooldown = 5 * time.Minute

// trendSampleSize caps how many active listings feed trend and popularity
// analysis per overview request.
const trendSampleSize = 500

type Service struct {
	players     *player.Repository
	ships       *ship.Repository
	inventories *inventory.Repository
	listings    *market.Repository
	battles     *combat.Repository
	explorer    *exploration.Engine
	economy     *economy.Engine
	publisher   events.Publisher
	src         rng.Source
	cfg         config.GameConfig

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewService(
	players *player.Repository,
	ships *ship.Repository,
	inventories *inventory.Repository,
	listings *market.Repository,
	battles *combat.Repository,
	explorer *exploration.Engine,
	econ *economy.Engine,
	publisher events.Publisher,
	src rng.Source,
	cfg config.GameConfig,
) *Service {
	slog.With("component", "game_service", "operation", "init").Debug("Initializing game service")
	return &Service{
		players:     players,
		ships:       ships,
		inventories: inventories,
		listings:    listings,
		battles:     battles,
		explorer:    explorer,
		economy:     econ,
		publisher:   publisher,
		src:         src,
		cfg:         cfg,
		locks:       make(map[int64]*sync.Mutex),
	}
}

// playerLock returns the mutex serializing one player's mutations. Locks are
// never removed; the map grows with the active player set.
func (s *Service) playerLock(playerID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[playerID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[playerID] = l
	}
	return l
}

// lockPair locks two players in ascending id order so concurrent battles
// between the same pair cannot deadlock.
func (s *Service) lockPair(a, b int64) func() {
	first, second := a, b
	if second < first {
		first, second = second, first
	}

	firstLock := s.playerLock(first)
	secondLock := s.playerLock(second)
	firstLock.Lock()
	secondLock.Lock()
	return func() {
		secondLock.Unlock()
		firstLock.Unlock()
	}
}

// Profile is the assembled view of one player's state.
type Profile struct {
	Player    *player.Player    `json:"player"`
	Ship      *ship.Ship        `json:"ship,omitempty"`
	Inventory []inventory.Entry `json:"inventory"`
}

// ExploreReport is an explore outcome plus the persisted state it produced.
type ExploreReport struct {
	Outcome *exploration.ExploreOutcome `json:"outcome"`
	Player  *player.Player              `json:"player"`
	Ship    *ship.Ship                  `json:"ship"`
}

// ScanReport is a scan outcome plus the player's post-scan state.
type ScanReport struct {
	Outcome *exploration.ScanOutcome `json:"outcome"`
	Player  *player.Player           `json:"player"`
}

// JumpReport is a jump outcome plus the persisted state it produced.
type JumpReport struct {
	Outcome *exploration.JumpOutcome `json:"outcome"`
	Player  *player.Player           `json:"player"`
	Ship    *ship.Ship               `json:"ship"`
}

// BattleReport is a resolved battle plus its persisted aftermath.
type BattleReport struct {
	Result       combat.Result   `json:"result"`
	AttackerShip *ship.Ship      `json:"attacker_ship"`
	DefenderShip *ship.Ship      `json:"defender_ship"`
	WinnerID     int64           `json:"winner_id"`
	LoserID      int64           `json:"loser_id"`
	Prize        decimal.Decimal `json:"prize"`
}

// MarketOverview is the read-only market dashboard: one page of listings
// plus trend and popularity analysis over the active set.
type MarketOverview struct {
	Listings []market.Listing        `json:"listings"`
	Trends   map[int64]economy.Trend `json:"trends"`
	Popular  []economy.PopularItem   `json:"popular"`
}

// loadPlayer fetches a player and applies lazy energy regeneration,
// persisting the restore when anything regenerated. Callers hold the
// player's lock.
func (s *Service) loadPlayer(playerID int64, now time.Time) (*player.Player, error) {
	p, err := s.players.Load(playerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFoundf("player %d not found", playerID)
	}

	if restored := economy.RestoreEnergy(p, now); restored > 0 {
		if err := s.players.SetEnergy(p.ID, p.Energy, p.LastEnergyRestore); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *Service) activeShip(playerID int64) (*ship.Ship, error) {
	sh, err := s.ships.ActiveForPlayer(playerID)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, apperrors.Preconditionf("player %d has no active ship", playerID)
	}
	return sh, nil
}

// Profile returns the player's current state with energy regeneration
// applied.
func (s *Service) Profile(ctx context.Context, playerID int64) (*Profile, error) {
	lock := s.playerLock(playerID)
	lock.Lock()
	defer lock.Unlock()

	p, err := s.loadPlayer(playerID, time.Now())
	if err != nil {
		return nil, err
	}

	sh, err := s.ships.ActiveForPlayer(playerID)
	if err != nil {
		return nil, err
	}

	entries, err := s.inventories.List(playerID)
	if err != nil {
		return nil, err
	}

	return &Profile{Player: p, Ship: sh, Inventory: entries}, nil
}

// exploreDeltas translates an explore outcome into the state changes it
// earns. Energy is spent and experience gained either way; only a successful
// exploration counts toward the player's exploration tally.
func exploreDeltas(outcome *exploration.ExploreOutcome) (player.Delta, ship.Delta) {
	shipDelta := ship.Delta{Experience: outcome.Experience}
	if outcome.LevelUp {
		shipDelta.Level = 1
	}

	playerDelta := player.Delta{
		Currency: decimal.NewFromInt(int64(outcome.CurrencyReward)),
		Energy:   -outcome.EnergyCost,
	}
	if outcome.Success {
		playerDelta.TotalExplored = 1
	}
	return playerDelta, shipDelta
}

// Explore resolves one exploration action: energy check, engine run, then
// persistence of every delta the outcome declared.
func (s *Service) Explore(ctx context.Context, playerID int64) (*ExploreReport, error) {
	logger := slog.With("component", "game_service", "operation", "explore", "player_id", playerID)

	lock := s.playerLock(playerID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()

	p, err := s.loadPlayer(playerID, now)
	if err != nil {
		return nil, err
	}
	if p.Energy < s.cfg.ExploreEnergyCost {
		return nil, apperrors.Preconditionf("exploration requires %d energy, you have %d", s.cfg.ExploreEnergyCost, p.Energy)
	}

	sh, err := s.activeShip(playerID)
	if err != nil {
		return nil, err
	}

	outcome, err := s.explorer.Explore(p, sh, s.src, now)
	if err != nil {
		return nil, err
	}
	// Config is authoritative for costs; the engine declares the default.
	outcome.EnergyCost = s.cfg.ExploreEnergyCost

	playerDelta, shipDelta := exploreDeltas(outcome)

	updatedShip, err := s.ships.ApplyDelta(sh.ID, shipDelta)
	if err != nil {
		return nil, err
	}

	updatedPlayer, err := s.players.ApplyDelta(playerID, playerDelta)
	if err != nil {
		return nil, err
	}

	if outcome.ResourceFind != nil {
		itemID, err := s.inventories.EnsureItem(string(outcome.ResourceFind.Resource))
		if err != nil {
			return nil, err
		}
		if _, err := s.inventories.Adjust(playerID, itemID, outcome.ResourceFind.Amount); err != nil {
			return nil, err
		}
	}

	if outcome.Discovered {
		s.publisher.Publish(ctx, events.TypeSectorDiscovered, map[string]interface{}{
			"player_id":  playerID,
			"coordinate": outcome.Sector.Coordinate,
			"name":       outcome.Sector.Name,
			"type":       outcome.Sector.Type,
		})
	}

	logger.Info("Exploration resolved",
		"success", outcome.Success,
		"discovered", outcome.Discovered,
		"sector", outcome.Sector.Coordinate,
		"level_up", outcome.LevelUp,
	)

	return &ExploreReport{Outcome: outcome, Player: updatedPlayer, Ship: updatedShip}, nil
}

// Scan resolves one scan action.
func (s *Service) Scan(ctx context.Context, playerID int64) (*ScanReport, error) {
	logger := slog.With("component", "game_service", "operation", "scan", "player_id", playerID)

	lock := s.playerLock(playerID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()

	p, err := s.loadPlayer(playerID, now)
	if err != nil {
		return nil, err
	}
	if p.Energy < s.cfg.ScanEnergyCost {
		return nil, apperrors.Preconditionf("scanning requires %d energy, you have %d", s.cfg.ScanEnergyCost, p.Energy)
	}

	sh, err := s.activeShip(playerID)
	if err != nil {
		return nil, err
	}

	outcome, err := s.explorer.Scan(p, sh, s.src, now)
	if err != nil {
		return nil, err
	}
	outcome.EnergyCost = s.cfg.ScanEnergyCost

	updatedPlayer, err := s.players.ApplyDelta(playerID, player.Delta{Energy: -outcome.EnergyCost})
	if err != nil {
		return nil, err
	}

	logger.Info("Scan resolved", "readings", len(outcome.Readings))
	return &ScanReport{Outcome: outcome, Player: updatedPlayer}, nil
}

// Jump resolves one warp toward a charted or uncharted coordinate. Energy
// cost scales with the target's distance; fuel is checked against a full
// jump up front even though a misfire burns less.
func (s *Service) Jump(ctx context.Context, playerID int64, coordinate string) (*JumpReport, error) {
	logger := slog.With("component", "game_service", "operation", "jump", "player_id", playerID)

	target, err := universe.ParseCoordinate(coordinate)
	if err != nil {
		return nil, apperrors.WrapValidation("invalid jump coordinate", err)
	}

	lock := s.playerLock(playerID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()

	p, err := s.loadPlayer(playerID, now)
	if err != nil {
		return nil, err
	}
	energyCost := exploration.JumpEnergyCost(target)
	if p.Energy < energyCost {
		return nil, apperrors.Preconditionf("a jump to %s requires %d energy, you have %d", coordinate, energyCost, p.Energy)
	}

	sh, err := s.activeShip(playerID)
	if err != nil {
		return nil, err
	}
	if sh.Fuel < exploration.JumpFuelCost {
		return nil, apperrors.Preconditionf("a jump burns %d fuel, you have %d", exploration.JumpFuelCost, sh.Fuel)
	}

	outcome, err := s.explorer.Jump(p, sh, target, s.src, now)
	if err != nil {
		return nil, err
	}

	updatedShip, err := s.ships.ApplyDelta(sh.ID, ship.Delta{
		Fuel: -outcome.FuelCost,
		Hull: -outcome.HullDamage,
	})
	if err != nil {
		return nil, err
	}

	updatedPlayer, err := s.players.ApplyDelta(playerID, player.Delta{Energy: -outcome.EnergyCost})
	if err != nil {
		return nil, err
	}

	if outcome.Discovered {
		s.publisher.Publish(ctx, events.TypeSectorDiscovered, map[string]interface{}{
			"player_id":  playerID,
			"coordinate": outcome.Sector.Coordinate,
			"name":       outcome.Sector.Name,
			"type":       outcome.Sector.Type,
		})
	}

	logger.Info("Jump resolved",
		"success", outcome.Success,
		"target", coordinate,
		"arrival", outcome.Sector.Coordinate,
		"discovered", outcome.Discovered,
	)

	return &JumpReport{Outcome: outcome, Player: updatedPlayer, Ship: updatedShip}, nil
}

// Battle resolves an attack on another player. The winner claims five
// percent of the loser's currency, floored to a whole crystal. Only the
// attacker pays energy and serves the cooldown; being attacked costs
// nothing. Every resolved battle lands in the append-only battle ledger.
func (s *Service) Battle(ctx context.Context, attackerID, defenderID int64) (*BattleReport, error) {
	logger := slog.With("component", "game_service", "operation", "battle",
		"attacker_id", attackerID, "defender_id", defenderID)

	if attackerID == defenderID {
		return nil, apperrors.Precondition("you cannot battle yourself")
	}

	unlock := s.lockPair(attackerID, defenderID)
	defer unlock()

	now := time.Now()

	attacker, err := s.loadPlayer(attackerID, now)
	if err != nil {
		return nil, err
	}
	if attacker.Energy < s.cfg.BattleEnergyCost {
		return nil, apperrors.Preconditionf("battle requires %d energy, you have %d", s.cfg.BattleEnergyCost, attacker.Energy)
	}

	lastAttack, err := s.battles.LastAttackAt(attackerID)
	if err != nil {
		return nil, err
	}
	if lastAttack != nil {
		if wait := battleCooldown - now.Sub(*lastAttack); wait > 0 {
			return nil, apperrors.Preconditionf("your crew needs %d more minute(s) to regroup before the next battle",
				int(wait.Minutes())+1)
		}
	}

	defender, err := s.loadPlayer(defenderID, now)
	if err != nil {
		return nil, err
	}

	attackerShip, err := s.activeShip(attackerID)
	if err != nil {
		return nil, err
	}
	if attackerShip.Defeated() {
		return nil, apperrors.Precondition("your ship needs repairs before it can fight")
	}

	defenderShip, err := s.activeShip(defenderID)
	if err != nil {
		return nil, err
	}
	if defenderShip.Defeated() {
		return nil, apperrors.Precondition("the target ship is already defeated")
	}

	result := combat.Simulate(attackerShip, defenderShip, s.src)

	winnerID, loserID := attackerID, defenderID
	loser := defender
	if result.Winner == combat.SideDefender {
		winnerID, loserID = defenderID, attackerID
		loser = attacker
	}
	prize := loser.Currency.Mul(battlePrizeRate).Floor()

	updatedAttackerShip, err := s.ships.ApplyDelta(attackerShip.ID, ship.Delta{
		Hull:    -result.AttackerDamage,
		Shields: -result.AttackerShieldDamage,
	})
	if err != nil {
		return nil, err
	}
	updatedDefenderShip, err := s.ships.ApplyDelta(defenderShip.ID, ship.Delta{
		Hull:    -result.DefenderDamage,
		Shields: -result.DefenderShieldDamage,
	})
	if err != nil {
		return nil, err
	}

	attackerDelta := player.Delta{Energy: -s.cfg.BattleEnergyCost}
	defenderDelta := player.Delta{}
	if winnerID == attackerID {
		attackerDelta.Currency = prize
		attackerDelta.BattlesWon = 1
		defenderDelta.Currency = prize.Neg()
	} else {
		attackerDelta.Currency = prize.Neg()
		defenderDelta.Currency = prize
		defenderDelta.BattlesWon = 1
	}

	if _, err := s.players.ApplyDelta(attackerID, attackerDelta); err != nil {
		return nil, err
	}
	if _, err := s.players.ApplyDelta(defenderID, defenderDelta); err != nil {
		return nil, err
	}

	if err := s.battles.Record(&combat.BattleRecord{
		AttackerID:     attackerID,
		DefenderID:     defenderID,
		WinnerID:       winnerID,
		Rounds:         result.Rounds,
		AttackerDamage: result.AttackerDamage,
		DefenderDamage: result.DefenderDamage,
		Prize:          prize,
		Rating:         result.Rating,
	}); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.TypeBattleCompleted, map[string]interface{}{
		"attacker_id": attackerID,
		"defender_id": defenderID,
		"winner_id":   winnerID,
		"rounds":      result.Rounds,
		"prize":       prize,
		"rating":      result.Rating,
	})

	logger.Info("Battle resolved", "winner_id", winnerID, "rounds", result.Rounds, "prize", prize)

	return &BattleReport{
		Result:       result,
		AttackerShip: updatedAttackerShip,
		DefenderShip: updatedDefenderShip,
		WinnerID:     winnerID,
		LoserID:      loserID,
		Prize:        prize,
	}, nil
}

// DailyReport is one claimed daily reward plus the refreshed player state.
type DailyReport struct {
	Reward economy.DailyReward `json:"reward"`
	Player *player.Player      `json:"player"`
}

// ClaimDaily grants the once-per-day reward: crystals scaled by the active
// ship's level, a full energy restore, and occasionally a supply crate.
// Players without a ship still claim at the base rate.
func (s *Service) ClaimDaily(ctx context.Context, playerID int64) (*DailyReport, error) {
	logger := slog.With("component", "game_service", "operation", "claim_daily", "player_id", playerID)

	lock := s.playerLock(playerID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()

	p, err := s.loadPlayer(playerID, now)
	if err != nil {
		return nil, err
	}

	eligible, wait := economy.DailyEligible(p.LastDailyClaim, now)
	if !eligible {
		return nil, apperrors.Preconditionf("daily reward already claimed, next one in %s", wait.Round(time.Minute))
	}

	shipLevel := 0
	sh, err := s.ships.ActiveForPlayer(playerID)
	if err != nil {
		return nil, err
	}
	if sh != nil {
		shipLevel = sh.Level
	}

	reward := economy.RollDailyReward(shipLevel, s.src)

	updatedPlayer, err := s.players.ApplyDelta(playerID, player.Delta{
		Currency: reward.Currency,
		Energy:   p.MaxEnergy, // clamped to a full tank
	})
	if err != nil {
		return nil, err
	}

	if err := s.players.SetDailyClaim(playerID, now); err != nil {
		return nil, err
	}
	updatedPlayer.LastDailyClaim = &now

	if reward.BonusItem != "" {
		itemID, err := s.inventories.EnsureItem(reward.BonusItem)
		if err != nil {
			return nil, err
		}
		if _, err := s.inventories.Adjust(playerID, itemID, reward.BonusQuantity); err != nil {
			return nil, err
		}
	}

	logger.Info("Daily reward claimed",
		"currency", reward.Currency,
		"bonus_item", reward.BonusItem,
	)

	return &DailyReport{Reward: reward, Player: updatedPlayer}, nil
}

// SellItem lists a quantity of an item on the market. The inventory debit
// and listing creation commit together.
func (s *Service) SellItem(ctx context.Context, sellerID, itemID int64, quantity int, pricePerUnit decimal.Decimal) (*market.Listing, error) {
	logger := slog.With("component", "game_service", "operation", "sell_item",
		"seller_id", sellerID, "item_id", itemID)

	lock := s.playerLock(sellerID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()

	if _, err := s.loadPlayer(sellerID, now); err != nil {
		return nil, err
	}

	draft, err := s.economy.NewListing(sellerID, itemID, quantity, pricePerUnit, now)
	if err != nil {
		return nil, err
	}

	// Front check for a clean error; the listing transaction re-checks.
	held, err := s.inventories.Get(sellerID, itemID)
	if err != nil {
		return nil, err
	}
	if held < quantity {
		return nil, apperrors.Preconditionf("you hold %d of that item, cannot list %d", held, quantity)
	}

	listing, err := s.listings.CreateFromInventory(draft)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.TypeListingCreated, map[string]interface{}{
		"listing_id": listing.ID,
		"seller_id":  sellerID,
		"item_id":    itemID,
		"quantity":   quantity,
		"total":      listing.TotalPrice,
	})

	logger.Info("Listing created", "listing_id", listing.ID, "total", listing.TotalPrice)
	return listing, nil
}

// CancelListing takes a seller's own listing off the market and returns the
// held quantity to their inventory. The deactivation and the refund commit
// together inside the repository, so a racing buyer resolves to a clean
// conflict rather than a double-spend and a crash can never burn the items.
func (s *Service) CancelListing(ctx context.Context, sellerID, listingID int64) (*market.Listing, error) {
	logger := slog.With("component", "game_service", "operation", "cancel_listing",
		"seller_id", sellerID, "listing_id", listingID)

	lock := s.playerLock(sellerID)
	lock.Lock()
	defer lock.Unlock()

	listing, err := s.listings.CancelWithRefund(sellerID, listingID)
	if err != nil {
		return nil, err
	}

	logger.Info("Listing cancelled", "item_id", listing.ItemID, "quantity", listing.Quantity)
	return listing, nil
}

// BuyListing purchases a listing whole. Preconditions are checked against a
// snapshot for a clean error; the settlement transaction re-checks under its
// row lock and is the source of truth.
func (s *Service) BuyListing(ctx context.Context, buyerID, listingID int64) (*market.Settlement, error) {
	logger := slog.With("component", "game_service", "operation", "buy_listing",
		"buyer_id", buyerID, "listing_id", listingID)

	lock := s.playerLock(buyerID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()

	buyer, err := s.loadPlayer(buyerID, now)
	if err != nil {
		return nil, err
	}

	listing, err := s.listings.GetActive(listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, apperrors.NotFoundf("listing %d not found", listingID)
	}

	if err := s.economy.ValidatePurchase(listing, buyer, now); err != nil {
		return nil, err
	}

	settlement, err := s.listings.Settle(buyerID, listingID, now)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.TypeListingSold, map[string]interface{}{
		"listing_id": listingID,
		"seller_id":  settlement.Listing.SellerID,
		"buyer_id":   buyerID,
		"amount":     settlement.AmountPaid,
	})

	logger.Info("Listing purchased", "amount", settlement.AmountPaid)
	return settlement, nil
}

// MarketOverview returns one page of active listings plus trend and
// popularity analysis computed over the current active set.
func (s *Service) MarketOverview(ctx context.Context, page int) (*MarketOverview, error) {
	if page < 0 {
		page = 0
	}

	pageListings, err := s.listings.ListActive(s.cfg.MarketPageSize, page*s.cfg.MarketPageSize)
	if err != nil {
		return nil, err
	}

	sample, err := s.listings.ListActive(trendSampleSize, 0)
	if err != nil {
		return nil, err
	}

	return &MarketOverview{
		Listings: pageListings,
		Trends:   economy.ComputeTrends(sample),
		Popular:  economy.PopularItems(sample),
	}, nil
}

// SweepExpiredListings deactivates expired listings until the context is
// cancelled; meant to run as a background goroutine.
func (s *Service) SweepExpiredListings(ctx context.Context) {
	logger := slog.With("component", "game_service", "operation", "expiry_sweep")
	ticker := time.NewTicker(s.cfg.ExpirySweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Expiry sweep stopped")
			return
		case <-ticker.C:
			if _, err := s.listings.DeactivateExpired(time.Now()); err != nil {
				logger.Error("Expiry sweep failed", "error", err)
			}
		}
	}
}
