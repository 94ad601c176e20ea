// Package combat resolves turn-based battles between two ship states. The
// simulation is pure: given the same inputs and random source state it
// produces the same result, and it never touches the ships it is handed.
package combat

import (
	"fmt"

	"nexium-server/internal/rng"
	"nexium-server/internal/ship"
)

// Side tags which role a combatant fought under.
type Side string

const (
	SideAttacker Side = "attacker"
	SideDefender Side = "defender"
)

// MaxRounds caps a battle; no engagement runs longer.
const MaxRounds = 10

const critChance = 0.1

// Result is the immutable outcome of a simulated battle. Damage fields are
// totals actually absorbed, so applying them as deltas reproduces the final
// hull and shield states.
type Result struct {
	Winner               Side     `json:"winner"`
	Rounds               int      `json:"rounds"`
	AttackerDamage       int      `json:"attacker_damage"`
	DefenderDamage       int      `json:"defender_damage"`
	AttackerShieldDamage int      `json:"attacker_shield_damage"`
	DefenderShieldDamage int      `json:"defender_shield_damage"`
	Log                  []string `json:"log"`
	Description          string   `json:"description"`
	Rating               string   `json:"rating"`
}

// combatant is the mutable working copy of a ship's battle stats.
type combatant struct {
	name    string
	hull    int
	shields int
	attack  int
	defense int
	speed   int
}

// Simulate runs a battle between two ships and returns the outcome. Both
// ships must enter with hull > 0; the caller enforces that precondition.
// Rounds alternate attacks until a hull reaches zero or the round cap. If
// both ships still have hull at the cap, the attacker is declared winner;
// that matches the shipped balance and is a deliberate policy choice.
func Simulate(attackerShip, defenderShip *ship.Ship, src rng.Source) Result {
	attacker := &combatant{
		name:    "Attacker",
		hull:    attackerShip.Hull,
		shields: attackerShip.Shields,
		attack:  attackerShip.Attack,
		defense: attackerShip.Defense,
		speed:   attackerShip.Speed,
	}
	defender := &combatant{
		name:    "Defender",
		hull:    defenderShip.Hull,
		shields: defenderShip.Shields,
		attack:  defenderShip.Attack,
		defense: defenderShip.Defense,
		speed:   defenderShip.Speed,
	}

	var log []string
	rounds := 0

	for attacker.hull > 0 && defender.hull > 0 && rounds < MaxRounds {
		rounds++

		// Strictly higher speed moves first; ties favor the attacker role.
		if attacker.speed >= defender.speed {
			log = performAttack(attacker, defender, src, log)
			if defender.hull > 0 {
				log = performAttack(defender, attacker, src, log)
			}
		} else {
			log = performAttack(defender, attacker, src, log)
			if attacker.hull > 0 {
				log = performAttack(attacker, defender, src, log)
			}
		}
	}

	winner := SideDefender
	if attacker.hull > 0 {
		winner = SideAttacker
	}

	return Result{
		Winner:               winner,
		Rounds:               rounds,
		AttackerDamage:       attackerShip.Hull - attacker.hull,
		DefenderDamage:       defenderShip.Hull - defender.hull,
		AttackerShieldDamage: attackerShip.Shields - attacker.shields,
		DefenderShieldDamage: defenderShip.Shields - defender.shields,
		Log:                  log,
		Description:          describeBattle(winner, rounds, src),
		Rating:               balanceRating(attackerShip, defenderShip),
	}
}

func performAttack(from, to *combatant, src rng.Source, log []string) []string {
	variation := src.IntN(11) - 5 // uniform [-5, 5]
	damage := from.attack + variation
	if damage < 1 {
		damage = 1
	}

	damage -= to.defense / 2
	if damage < 1 {
		damage = 1
	}

	if rng.Chance(src, critChance) {
		damage = damage * 3 / 2
		log = append(log, fmt.Sprintf("%s scores a critical hit!", from.name))
	}

	// Shields absorb before hull.
	if to.shields > 0 {
		absorbed := damage
		if absorbed > to.shields {
			absorbed = to.shields
		}
		to.shields -= absorbed
		damage -= absorbed

		if absorbed > 0 {
			log = append(log, fmt.Sprintf("%s hits shields for %d damage", from.name, absorbed))
		}
	}

	if damage > 0 {
		to.hull -= damage
		log = append(log, fmt.Sprintf("%s hits hull for %d damage", from.name, damage))
	}

	if to.hull < 0 {
		to.hull = 0
	}

	return log
}

func describeBattle(winner Side, rounds int, src rng.Source) string {
	descriptions := []string{
		fmt.Sprintf("After %d intense rounds of combat, the %s emerges victorious!", rounds, winner),
		fmt.Sprintf("The battle rages for %d rounds before the %s claims victory!", rounds, winner),
		fmt.Sprintf("In a %d-round engagement, the %s proves superior in combat!", rounds, winner),
		fmt.Sprintf("Following %d rounds of fierce space combat, the %s is triumphant!", rounds, winner),
	}

	return descriptions[src.IntN(len(descriptions))]
}

// balanceRating summarizes how evenly matched the combatants were going in,
// from the relative gap between their total power (attack+defense+hull+shields).
func balanceRating(a, b *ship.Ship) string {
	powerA := a.Attack + a.Defense + a.Hull + a.Shields
	powerB := b.Attack + b.Defense + b.Hull + b.Shields

	diff := powerA - powerB
	if diff < 0 {
		diff = -diff
	}
	avg := float64(powerA+powerB) / 2
	ratio := float64(diff) / avg

	switch {
	case ratio < 0.1:
		return "Perfectly Balanced"
	case ratio < 0.2:
		return "Well Matched"
	case ratio < 0.3:
		return "Competitive"
	case ratio < 0.5:
		return "One-Sided"
	default:
		return "Overwhelming"
	}
}
