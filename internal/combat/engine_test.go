package combat

import (
	"testing"

	"nexium-server/internal/rng"
	"nexium-server/internal/ship"
)

// fixedSource scripts every draw: IntN(11) yields a fixed damage variation,
// Float64 never rolls a critical hit, and any other IntN picks index 0.
type fixedSource struct {
	variation int
}

func (s fixedSource) IntN(n int) int {
	if n == 11 {
		return s.variation + 5
	}
	return 0
}

func (s fixedSource) Float64() float64 {
	return 0.9 // above the 10% crit threshold
}

func testShip(hull, shields, attack, defense, speed int) *ship.Ship {
	return &ship.Ship{
		Hull:       hull,
		MaxHull:    hull,
		Shields:    shields,
		MaxShields: shields,
		Attack:     attack,
		Defense:    defense,
		Speed:      speed,
	}
}

// With zero variation and no crits: A hits for 30-floor(20/2)=20, B hits for
// 20-floor(10/2)=15. B's 50 shields absorb A's first two and a half hits, so
// B's hull first bleeds in round 3 and reaches zero in round 8. A attacks
// first every round (speed 15 vs 5) and B never gets a round-8 counter.
func TestSimulateDeterministicScenario(t *testing.T) {
	attacker := testShip(100, 50, 30, 10, 15)
	defender := testShip(100, 50, 20, 20, 5)

	result := Simulate(attacker, defender, fixedSource{variation: 0})

	if result.Winner != SideAttacker {
		t.Errorf("winner = %s, want attacker", result.Winner)
	}
	if result.Rounds != 8 {
		t.Errorf("rounds = %d, want 8", result.Rounds)
	}
	if result.DefenderDamage != 100 {
		t.Errorf("defender hull damage = %d, want 100", result.DefenderDamage)
	}
	// B lands 7 hits of 15; A's 50 shields soak the first three and part of
	// the fourth, leaving 55 hull damage.
	if result.AttackerDamage != 55 {
		t.Errorf("attacker hull damage = %d, want 55", result.AttackerDamage)
	}
	if result.AttackerShieldDamage != 50 || result.DefenderShieldDamage != 50 {
		t.Errorf("shield damage = %d/%d, want both fully drained at 50",
			result.AttackerShieldDamage, result.DefenderShieldDamage)
	}
	if len(result.Log) == 0 {
		t.Error("battle log should not be empty")
	}

	// Inputs must come back untouched.
	if attacker.Hull != 100 || defender.Hull != 100 {
		t.Error("Simulate must not mutate its input ships")
	}
}

func TestSimulateTerminatesAndClamps(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		src := rng.New(seed)
		attacker := testShip(80+int(seed%40), 30, 15, 25, 10)
		defender := testShip(80, 30, 15, 25, 10)

		result := Simulate(attacker, defender, src)

		if result.Rounds < 1 || result.Rounds > MaxRounds {
			t.Fatalf("seed %d: rounds = %d", seed, result.Rounds)
		}
		if result.Winner != SideAttacker && result.Winner != SideDefender {
			t.Fatalf("seed %d: no winner declared", seed)
		}
		if result.AttackerDamage < 0 || result.AttackerDamage > attacker.Hull {
			t.Fatalf("seed %d: attacker damage %d out of [0,%d]", seed, result.AttackerDamage, attacker.Hull)
		}
		if result.DefenderDamage < 0 || result.DefenderDamage > defender.Hull {
			t.Fatalf("seed %d: defender damage %d out of [0,%d]", seed, result.DefenderDamage, defender.Hull)
		}
	}
}

// Two tanks that cannot break through each other reach the round cap with
// hull remaining on both sides; the attacker takes the win.
func TestSimulateRoundCapFavorsAttacker(t *testing.T) {
	attacker := testShip(1000, 0, 5, 50, 10)
	defender := testShip(1000, 0, 5, 50, 10)

	result := Simulate(attacker, defender, fixedSource{variation: 0})

	if result.Rounds != MaxRounds {
		t.Errorf("rounds = %d, want %d", result.Rounds, MaxRounds)
	}
	if result.Winner != SideAttacker {
		t.Errorf("winner = %s, want attacker at the round cap", result.Winner)
	}
}

func TestSimulateDeadShipDoesNotCounter(t *testing.T) {
	// Defender dies to the first hit and must not retaliate.
	attacker := testShip(100, 0, 500, 0, 10)
	defender := testShip(5, 0, 100, 0, 1)

	result := Simulate(attacker, defender, fixedSource{variation: 0})

	if result.Rounds != 1 {
		t.Errorf("rounds = %d, want 1", result.Rounds)
	}
	if result.AttackerDamage != 0 {
		t.Errorf("attacker damage = %d, want 0 (no counter from a dead ship)", result.AttackerDamage)
	}
}

func TestBalanceRating(t *testing.T) {
	tests := []struct {
		name string
		a, b *ship.Ship
		want string
	}{
		{"identical", testShip(100, 50, 30, 10, 5), testShip(100, 50, 30, 10, 5), "Perfectly Balanced"},
		{"slight edge", testShip(100, 50, 30, 10, 5), testShip(80, 45, 25, 10, 5), "Well Matched"},
		{"strong edge", testShip(100, 50, 30, 10, 5), testShip(80, 40, 25, 10, 5), "Competitive"},
		{"lopsided", testShip(100, 50, 30, 10, 5), testShip(60, 30, 20, 10, 5), "One-Sided"},
		{"crushing", testShip(200, 100, 60, 40, 5), testShip(40, 10, 10, 5, 5), "Overwhelming"},
	}

	for _, tt := range tests {
		result := Simulate(tt.a, tt.b, fixedSource{variation: 0})
		if result.Rating != tt.want {
			t.Errorf("%s: rating = %q, want %q", tt.name, result.Rating, tt.want)
		}
	}
}
