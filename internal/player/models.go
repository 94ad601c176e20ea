package player

import (
	"time"

	"github.com/shopspring/decimal"
)

// Player holds the account-level mutable game state. Currency is exact
// decimal and never negative; energy stays within [0, MaxEnergy].
type Player struct {
	ID                int64           `json:"id"`
	Username          string          `json:"username"`
	Currency          decimal.Decimal `json:"currency"`
	Energy            int             `json:"energy"`
	MaxEnergy         int             `json:"max_energy"`
	TotalExplored     int             `json:"total_explored"`
	BattlesWon        int             `json:"battles_won"`
	LastEnergyRestore time.Time       `json:"last_energy_restore"`
	LastDailyClaim    *time.Time      `json:"last_daily_claim,omitempty"`
	LastActive        time.Time       `json:"last_active"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Delta is an atomic account state change. Currency is a signed exact
// decimal; the update statement refuses any change that would leave the
// balance negative.
type Delta struct {
	Currency      decimal.Decimal
	Energy        int
	TotalExplored int
	BattlesWon    int
}
