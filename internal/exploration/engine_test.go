package exploration

import (
	"errors"
	"math"
	"testing"
	"time"

	"nexium-server/internal/player"
	"nexium-server/internal/rng"
	apperrors "nexium-server/internal/shared/errors"
	"nexium-server/internal/ship"
	"nexium-server/internal/universe"
)

// forcedSource draws ints from a seeded source but pins Float64, which lets
// a test force success or failure while keeping generation varied.
type forcedSource struct {
	ints rng.Source
	roll float64
}

func (s forcedSource) IntN(n int) int   { return s.ints.IntN(n) }
func (s forcedSource) Float64() float64 { return s.roll }

type fakeWorld struct {
	nextID     int64
	existing   *universe.Sector
	visits     map[int64]int
	failCreate bool
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{visits: make(map[int64]int)}
}

func (w *fakeWorld) GetByCoordinate(coordinate string) (*universe.Sector, error) {
	if w.existing != nil && w.existing.Coordinate == coordinate {
		return w.existing, nil
	}
	return nil, nil
}

func (w *fakeWorld) CreateIfAbsent(draft universe.SectorDraft) (*universe.Sector, bool, error) {
	if w.failCreate {
		return nil, false, errors.New("storage unavailable")
	}
	if w.existing != nil {
		return w.existing, false, nil
	}

	w.nextID++
	return &universe.Sector{
		ID:           w.nextID,
		Coordinate:   draft.Coordinate,
		Name:         draft.Name,
		Type:         draft.Type,
		Difficulty:   draft.Difficulty,
		Resources:    draft.Resources,
		Hazards:      draft.Hazards,
		DiscoveredBy: draft.DiscoveredBy,
		VisitCount:   1,
	}, true, nil
}

func (w *fakeWorld) RecordVisit(sectorID int64, at time.Time) error {
	w.visits[sectorID]++
	return nil
}

func testPlayer() *player.Player {
	return &player.Player{ID: 1, Energy: 100, MaxEnergy: 100}
}

func testShip(level, experience int) *ship.Ship {
	return &ship.Ship{ID: 1, PlayerID: 1, Hull: 100, MaxHull: 100, Level: level, Experience: experience, Active: true}
}

func TestSuccessChance(t *testing.T) {
	tests := []struct {
		level, difficulty int
		want              float64
	}{
		{1, 5, 0.47},
		{1, 1, 0.67},
		{10, 1, 0.85},
		{50, 1, 0.95}, // clamped high
		{1, 20, 0.1},  // clamped low
	}

	for _, tt := range tests {
		got := SuccessChance(tt.level, tt.difficulty)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("SuccessChance(%d, %d) = %v, want %v", tt.level, tt.difficulty, got, tt.want)
		}
	}
}

func TestExploreSuccessRewards(t *testing.T) {
	engine := NewEngine(newFakeWorld())

	for seed := int64(0); seed < 50; seed++ {
		src := forcedSource{ints: rng.New(seed), roll: 0.0} // always succeeds

		outcome, err := engine.Explore(testPlayer(), testShip(1, 0), src, time.Now())
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		if !outcome.Success {
			t.Fatalf("seed %d: expected success", seed)
		}
		if outcome.CurrencyReward < 25 || outcome.CurrencyReward > 124 {
			t.Errorf("seed %d: currency reward %d out of [25,124]", seed, outcome.CurrencyReward)
		}
		if outcome.Experience < 10 || outcome.Experience > 29 {
			t.Errorf("seed %d: experience %d out of [10,29]", seed, outcome.Experience)
		}
		if outcome.EnergyCost != ExploreCost {
			t.Errorf("seed %d: energy cost %d, want %d", seed, outcome.EnergyCost, ExploreCost)
		}
		if !outcome.Discovered {
			t.Errorf("seed %d: fresh sector should be a discovery", seed)
		}
		if outcome.ResourceFind != nil {
			if _, ok := outcome.Sector.Resources[outcome.ResourceFind.Resource]; !ok {
				t.Errorf("seed %d: resource find %s not present in sector", seed, outcome.ResourceFind.Resource)
			}
			if outcome.ResourceFind.Amount < 10 || outcome.ResourceFind.Amount > 59 {
				t.Errorf("seed %d: find amount %d out of [10,59]", seed, outcome.ResourceFind.Amount)
			}
		}
	}
}

func TestExploreFailureGrantsNoCurrency(t *testing.T) {
	engine := NewEngine(newFakeWorld())
	src := forcedSource{ints: rng.New(9), roll: 0.99} // above any success chance

	outcome, err := engine.Explore(testPlayer(), testShip(1, 0), src, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	if outcome.Success {
		t.Fatal("expected failure")
	}
	if outcome.CurrencyReward != 0 {
		t.Errorf("failed explore granted %d currency", outcome.CurrencyReward)
	}
	if outcome.ResourceFind != nil {
		t.Error("failed explore granted a resource find")
	}
	if outcome.Experience < 10 || outcome.Experience > 29 {
		t.Errorf("experience %d out of [10,29] (failures still teach)", outcome.Experience)
	}
}

func TestExploreLevelUp(t *testing.T) {
	engine := NewEngine(newFakeWorld())

	// 95 XP at level 1: any gain in [10,29] crosses the 100 threshold.
	outcome, err := engine.Explore(testPlayer(), testShip(1, 95), forcedSource{ints: rng.New(1), roll: 0.99}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.LevelUp {
		t.Error("expected a level up crossing level*100")
	}

	// Level 5 at 0 XP: threshold 500 is unreachable in one explore.
	outcome, err = engine.Explore(testPlayer(), testShip(5, 0), forcedSource{ints: rng.New(2), roll: 0.99}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if outcome.LevelUp {
		t.Error("level up flagged without crossing the threshold")
	}
}

func TestExploreRevisitRecordsVisit(t *testing.T) {
	world := newFakeWorld()
	world.existing = &universe.Sector{
		ID:         7,
		Coordinate: "X1:Y2:Z3",
		Name:       "Alpha Reach",
		Type:       universe.TypeNebula,
		Difficulty: 2,
		Resources:  map[universe.Resource]int{},
		Hazards:    map[universe.Hazard]int{},
	}
	engine := NewEngine(world)

	outcome, err := engine.Explore(testPlayer(), testShip(1, 0), forcedSource{ints: rng.New(3), roll: 0.99}, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	if outcome.Discovered {
		t.Error("revisit should not count as a discovery")
	}
	if world.visits[7] != 1 {
		t.Errorf("visit count = %d, want 1", world.visits[7])
	}
}

func TestExploreWorldErrorClassified(t *testing.T) {
	world := newFakeWorld()
	world.failCreate = true
	engine := NewEngine(world)

	outcome, err := engine.Explore(testPlayer(), testShip(1, 0), rng.New(4), time.Now())
	if outcome != nil {
		t.Error("outcome should be nil on world access failure")
	}
	if !apperrors.Is(err, apperrors.ErrorTypeWorldAccess) {
		t.Errorf("error type = %v, want world_access", apperrors.GetType(err))
	}
}

func TestJumpEnergyCost(t *testing.T) {
	tests := []struct {
		target universe.Coordinate
		want   int
	}{
		{universe.Coordinate{}, 15},
		{universe.Coordinate{X: 30, Y: 40}, 15}, // distance 50, floored
		{universe.Coordinate{X: 300, Y: 400}, 50},
		{universe.Coordinate{X: -600, Y: 800}, 100},
	}

	for _, tt := range tests {
		if got := JumpEnergyCost(tt.target); got != tt.want {
			t.Errorf("JumpEnergyCost(%v) = %d, want %d", tt.target, got, tt.want)
		}
	}
}

func TestJumpArrivesAtTarget(t *testing.T) {
	engine := NewEngine(newFakeWorld())
	target := universe.Coordinate{X: 300, Y: -400, Z: 10}
	src := forcedSource{ints: rng.New(11), roll: 0.0} // drive holds

	outcome, err := engine.Jump(testPlayer(), testShip(1, 0), target, src, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	if !outcome.Success {
		t.Fatal("expected a completed jump")
	}
	if outcome.Sector.Coordinate != target.String() {
		t.Errorf("arrived at %s, want %s", outcome.Sector.Coordinate, target.String())
	}
	if outcome.EnergyCost != 50 {
		t.Errorf("energy cost %d, want 50", outcome.EnergyCost)
	}
	if outcome.FuelCost != JumpFuelCost {
		t.Errorf("fuel cost %d, want %d", outcome.FuelCost, JumpFuelCost)
	}
	if outcome.HullDamage != 0 {
		t.Errorf("completed jump damaged hull by %d", outcome.HullDamage)
	}
	if !outcome.Discovered {
		t.Error("fresh arrival sector should be a discovery")
	}
}

func TestJumpMisfireScattersNearby(t *testing.T) {
	engine := NewEngine(newFakeWorld())
	target := universe.Coordinate{X: 300, Y: -400, Z: 10}
	src := forcedSource{ints: rng.New(12), roll: 0.99} // misfire

	outcome, err := engine.Jump(testPlayer(), testShip(1, 0), target, src, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	if outcome.Success {
		t.Fatal("expected a misfire")
	}
	if outcome.EnergyCost != 25 {
		t.Errorf("misfire energy cost %d, want half of 50", outcome.EnergyCost)
	}
	if outcome.FuelCost != 10 {
		t.Errorf("misfire fuel cost %d, want 10", outcome.FuelCost)
	}
	if outcome.HullDamage != 10 {
		t.Errorf("misfire hull damage %d, want 10", outcome.HullDamage)
	}

	arrival, err := universe.ParseCoordinate(outcome.Sector.Coordinate)
	if err != nil {
		t.Fatalf("unparseable arrival coordinate %q: %v", outcome.Sector.Coordinate, err)
	}
	if abs(arrival.X-target.X) > 100 || abs(arrival.Y-target.Y) > 100 || abs(arrival.Z-target.Z) > 100 {
		t.Errorf("misfire scattered to %v, more than 100 per axis from %v", arrival, target)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func TestScanReportsFirstDetectionsOnly(t *testing.T) {
	world := newFakeWorld()
	world.existing = &universe.Sector{
		ID:         3,
		Coordinate: "X0:Y0:Z0",
		Name:       "Sigma Void",
		Type:       universe.TypeBlackHole,
		Difficulty: 4,
		Resources: map[universe.Resource]int{
			universe.ResourceTritium:  120,
			universe.ResourceTitanium: 300,
		},
		Hazards: map[universe.Hazard]int{
			universe.HazardIonStorms: 4,
			universe.HazardRadiation: 9,
		},
	}
	engine := NewEngine(world)

	outcome, err := engine.Scan(testPlayer(), testShip(1, 0), rng.New(5), time.Now())
	if err != nil {
		t.Fatal(err)
	}

	if len(outcome.Readings) != 3 {
		t.Fatalf("readings = %d, want 3", len(outcome.Readings))
	}
	if outcome.EnergyCost != ScanCost {
		t.Errorf("energy cost %d, want %d", outcome.EnergyCost, ScanCost)
	}

	for i, reading := range outcome.Readings {
		if reading.Resource == nil || *reading.Resource != universe.ResourceTitanium {
			t.Errorf("reading %d: resource = %v, want titanium (detection order)", i, reading.Resource)
		}
		if reading.Hazard == nil || *reading.Hazard != universe.HazardRadiation {
			t.Errorf("reading %d: hazard = %v, want radiation (detection order)", i, reading.Hazard)
		}
	}
}
