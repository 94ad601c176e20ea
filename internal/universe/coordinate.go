package universe

import (
	"fmt"
	"math"
)

// Coordinate addresses a sector in the universe. The canonical string form
// "X{x}:Y{y}:Z{z}" is the sector's unique key in the world store.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

const (
	CoordMaxXY = 1000
	CoordMaxZ  = 100
)

func (c Coordinate) String() string {
	return fmt.Sprintf("X%d:Y%d:Z%d", c.X, c.Y, c.Z)
}

// ParseCoordinate parses the canonical coordinate format. It is the inverse
// of String for any coordinate the generator can produce.
func ParseCoordinate(s string) (Coordinate, error) {
	var c Coordinate
	n, err := fmt.Sscanf(s, "X%d:Y%d:Z%d", &c.X, &c.Y, &c.Z)
	if err != nil || n != 3 {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q", s)
	}
	if c.String() != s {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q", s)
	}
	return c, nil
}

// Distance returns the euclidean distance between two coordinates.
func Distance(a, b Coordinate) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	dz := float64(b.Z - a.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
