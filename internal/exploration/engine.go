// Package exploration resolves explore and scan actions. The engine is a
// pure computation over the provided player and ship state plus the world
// repository's idempotent get-or-create; debiting energy and persisting the
// returned deltas is the orchestration layer's job.
package exploration

import (
	"fmt"
	"time"

	"nexium-server/internal/player"
	"nexium-server/internal/rng"
	apperrors "nexium-server/internal/shared/errors"
	"nexium-server/internal/ship"
	"nexium-server/internal/universe"
)

// Energy costs declared by the engine, debited by the caller.
const (
	ExploreCost = 10
	ScanCost    = 5
)

// JumpFuelCost is the fuel a completed jump burns. A misfire burns half and
// batters the hull instead.
const (
	JumpFuelCost       = 20
	jumpMisfireFuel    = 10
	jumpMisfireHull    = 10
	jumpSuccessChance  = 0.9
	jumpMisfireScatter = 100
)

const scanSectorCount = 3

// WorldRepository is the storage boundary the engine reads sectors through.
type WorldRepository interface {
	GetByCoordinate(coordinate string) (*universe.Sector, error)
	CreateIfAbsent(draft universe.SectorDraft) (*universe.Sector, bool, error)
	RecordVisit(sectorID int64, at time.Time) error
}

// ResourceFind is the flavor portion of a successful exploration reward.
type ResourceFind struct {
	Resource universe.Resource `json:"resource"`
	Amount   int               `json:"amount"`
}

// ExploreOutcome carries the state deltas of one explore action. Nothing has
// been applied to the player or ship when it is returned.
type ExploreOutcome struct {
	Success        bool             `json:"success"`
	Sector         *universe.Sector `json:"sector"`
	Discovered     bool             `json:"discovered"`
	CurrencyReward int              `json:"currency_reward"`
	ResourceFind   *ResourceFind    `json:"resource_find,omitempty"`
	Experience     int              `json:"experience"`
	LevelUp        bool             `json:"level_up"`
	Description    string           `json:"description"`
	EnergyCost     int              `json:"energy_cost"`
}

// ScanReading reports at most the first detected resource and hazard of one
// scanned sector. The partial report is deliberate fog-of-war, not an
// exhaustive survey.
type ScanReading struct {
	Sector   *universe.Sector   `json:"sector"`
	Resource *universe.Resource `json:"resource,omitempty"`
	Hazard   *universe.Hazard   `json:"hazard,omitempty"`
}

// ScanOutcome carries the readings of one scan action.
type ScanOutcome struct {
	Readings   []ScanReading `json:"readings"`
	EnergyCost int           `json:"energy_cost"`
}

type Engine struct {
	repo WorldRepository
}

func NewEngine(repo WorldRepository) *Engine {
	return &Engine{repo: repo}
}

// SuccessChance is the explore success probability for a ship level against
// a sector difficulty, clamped to [0.1, 0.95].
func SuccessChance(shipLevel, sectorDifficulty int) float64 {
	chance := 0.7 + 0.02*float64(shipLevel) - 0.05*float64(sectorDifficulty)
	if chance < 0.1 {
		return 0.1
	}
	if chance > 0.95 {
		return 0.95
	}
	return chance
}

// Explore resolves one exploration attempt at a freshly generated
// coordinate. Repository failures abort with a world access error and no
// partial state change.
func (e *Engine) Explore(p *player.Player, sh *ship.Ship, src rng.Source, now time.Time) (*ExploreOutcome, error) {
	gen := universe.NewGenerator(src)

	draft := gen.Sector(gen.Coordinates())
	draft.DiscoveredBy = &p.ID

	sector, created, err := e.repo.CreateIfAbsent(draft)
	if err != nil {
		return nil, apperrors.WrapWorldAccess("failed to chart sector", err)
	}
	if !created {
		if err := e.repo.RecordVisit(sector.ID, now); err != nil {
			return nil, apperrors.WrapWorldAccess("failed to record sector visit", err)
		}
	}

	success := rng.Chance(src, SuccessChance(sh.Level, sector.Difficulty))

	outcome := &ExploreOutcome{
		Success:    success,
		Sector:     sector,
		Discovered: created,
		Experience: rng.IntBetween(src, 10, 29),
		EnergyCost: ExploreCost,
	}

	if success {
		if find := pickResource(sector, src); find != nil {
			find.Amount = rng.IntBetween(src, 10, 59)
			outcome.ResourceFind = find
		}
		outcome.CurrencyReward = rng.IntBetween(src, 25, 124)
	}

	// One level per explore, never compounding.
	if sh.Experience+outcome.Experience >= sh.Level*100 {
		outcome.LevelUp = true
	}

	outcome.Description = describeExploration(sector, success)
	return outcome, nil
}

// JumpOutcome carries the state deltas of one jump action. The sector is
// where the ship actually arrived, which on a misfire is not the target.
type JumpOutcome struct {
	Success     bool             `json:"success"`
	Sector      *universe.Sector `json:"sector"`
	Discovered  bool             `json:"discovered"`
	EnergyCost  int              `json:"energy_cost"`
	FuelCost    int              `json:"fuel_cost"`
	HullDamage  int              `json:"hull_damage"`
	Description string           `json:"description"`
}

// JumpEnergyCost scales with the target's distance from the galactic origin,
// one energy per ten units with a floor of fifteen.
func JumpEnergyCost(target universe.Coordinate) int {
	cost := int(universe.Distance(universe.Coordinate{}, target) / 10)
	if cost < 15 {
		cost = 15
	}
	return cost
}

// Jump resolves one warp attempt toward a target coordinate. A completed
// jump arrives at the target; a misfire scatters the ship to a coordinate
// near it at half the energy, less fuel, and some hull. Either way the
// arrival sector is charted or revisited idempotently.
func (e *Engine) Jump(p *player.Player, sh *ship.Ship, target universe.Coordinate, src rng.Source, now time.Time) (*JumpOutcome, error) {
	gen := universe.NewGenerator(src)

	success := rng.Chance(src, jumpSuccessChance)

	outcome := &JumpOutcome{
		Success:    success,
		EnergyCost: JumpEnergyCost(target),
		FuelCost:   JumpFuelCost,
	}

	arrival := target
	if !success {
		arrival = gen.NearbyCoordinate(target, jumpMisfireScatter)
		outcome.EnergyCost /= 2
		outcome.FuelCost = jumpMisfireFuel
		outcome.HullDamage = jumpMisfireHull
	}

	draft := gen.Sector(arrival)
	draft.DiscoveredBy = &p.ID

	sector, created, err := e.repo.CreateIfAbsent(draft)
	if err != nil {
		return nil, apperrors.WrapWorldAccess("failed to chart jump destination", err)
	}
	if !created {
		if err := e.repo.RecordVisit(sector.ID, now); err != nil {
			return nil, apperrors.WrapWorldAccess("failed to record sector visit", err)
		}
	}

	outcome.Sector = sector
	outcome.Discovered = created
	if success {
		outcome.Description = fmt.Sprintf("Your jump drive hurls you across the void to %s.", sector.Name)
	} else {
		outcome.Description = fmt.Sprintf("The jump drive misfires! You drop out of warp near %s, hull groaning.", sector.Name)
	}
	return outcome, nil
}

// Scan surveys three independently generated coordinates. Sectors are
// fetched or created idempotently; repeated coordinates are possible and
// report the same sector twice.
func (e *Engine) Scan(p *player.Player, sh *ship.Ship, src rng.Source, now time.Time) (*ScanOutcome, error) {
	gen := universe.NewGenerator(src)

	readings := make([]ScanReading, 0, scanSectorCount)
	for i := 0; i < scanSectorCount; i++ {
		draft := gen.Sector(gen.Coordinates())

		sector, _, err := e.repo.CreateIfAbsent(draft)
		if err != nil {
			return nil, apperrors.WrapWorldAccess("failed to chart scanned sector", err)
		}

		reading := ScanReading{Sector: sector}
		if resource, ok := sector.FirstResource(); ok {
			reading.Resource = &resource
		}
		if hazard, ok := sector.FirstHazard(); ok {
			reading.Hazard = &hazard
		}
		readings = append(readings, reading)
	}

	return &ScanOutcome{Readings: readings, EnergyCost: ScanCost}, nil
}

// pickResource selects a uniform resource key from the sector's resource
// map, iterating in detection order so the draw is deterministic for a given
// source state.
func pickResource(sector *universe.Sector, src rng.Source) *ResourceFind {
	if len(sector.Resources) == 0 {
		return nil
	}

	keys := make([]universe.Resource, 0, len(sector.Resources))
	for _, r := range universe.Resources {
		if _, ok := sector.Resources[r]; ok {
			keys = append(keys, r)
		}
	}

	return &ResourceFind{Resource: keys[src.IntN(len(keys))]}
}

type narrative struct {
	success string
	failure string
}

// Narratives never imply a reward that was not granted; failure lines
// describe setbacks only.
var narratives = map[universe.SectorType]narrative{
	universe.TypeAsteroidField: {
		success: "You successfully navigate through the %s asteroid field, avoiding collisions and finding valuable minerals!",
		failure: "Your ship takes minor damage while navigating the treacherous %s asteroid field.",
	},
	universe.TypeGasGiant: {
		success: "Your sensors detect rare gases and energy signatures around the massive %s gas giant!",
		failure: "The intense radiation from %s interferes with your ship's systems.",
	},
	universe.TypePlanetarySystem: {
		success: "You discover an inhabited planetary system in %s with potential trading opportunities!",
		failure: "Hostile forces in the %s system force you to retreat quickly.",
	},
	universe.TypeNebula: {
		success: "The beautiful %s nebula yields exotic matter and energy readings!",
		failure: "Dense particle clouds in %s damage your ship's sensors.",
	},
	universe.TypeBinaryStar: {
		success: "The unique electromagnetic properties of the %s binary star system prove valuable for research!",
		failure: "Dangerous solar flares from %s force an emergency retreat.",
	},
	universe.TypeBlackHole: {
		success: "You carefully study the gravitational anomalies around %s and make groundbreaking discoveries!",
		failure: "The intense gravitational forces of %s nearly trap your ship!",
	},
	universe.TypeAncientRuins: {
		success: "You uncover ancient alien artifacts in the mysterious ruins of %s!",
		failure: "Automated defense systems in %s activate, forcing you to flee.",
	},
}

func describeExploration(sector *universe.Sector, success bool) string {
	if n, ok := narratives[sector.Type]; ok {
		if success {
			return fmt.Sprintf(n.success, sector.Name)
		}
		return fmt.Sprintf(n.failure, sector.Name)
	}

	if success {
		return fmt.Sprintf("You successfully explore %s!", sector.Name)
	}
	return fmt.Sprintf("Your exploration of %s encounters difficulties.", sector.Name)
}
