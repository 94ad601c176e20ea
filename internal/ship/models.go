package ship

import (
	"time"
)

// Ship holds the combat and exploration relevant state of a player's vessel.
// Hull and shields are always clamped to [0, max]; a ship at hull 0 is
// defeated.
type Ship struct {
	ID         int64     `json:"id"`
	PlayerID   int64     `json:"player_id"`
	Name       string    `json:"name"`
	Hull       int       `json:"hull"`
	MaxHull    int       `json:"max_hull"`
	Shields    int       `json:"shields"`
	MaxShields int       `json:"max_shields"`
	Attack     int       `json:"attack"`
	Defense    int       `json:"defense"`
	Speed      int       `json:"speed"`
	Fuel       int       `json:"fuel"`
	MaxFuel    int       `json:"max_fuel"`
	Experience int       `json:"experience"`
	Level      int       `json:"level"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Defeated reports whether the ship has been reduced to zero hull.
func (s *Ship) Defeated() bool {
	return s.Hull <= 0
}

// Delta is an atomic state change applied through the repository. Hull,
// shields and fuel deltas are clamped to their [0, max] ranges in the update
// statement itself.
type Delta struct {
	Hull       int
	Shields    int
	Fuel       int
	Experience int
	Level      int
}
