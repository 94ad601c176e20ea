package universe

import (
	"math"
	"testing"
)

func TestCoordinateRoundTrip(t *testing.T) {
	coords := []Coordinate{
		{X: 0, Y: 0, Z: 0},
		{X: -1000, Y: 1000, Z: -100},
		{X: 42, Y: -7, Z: 99},
	}

	for _, c := range coords {
		parsed, err := ParseCoordinate(c.String())
		if err != nil {
			t.Fatalf("ParseCoordinate(%q): %v", c.String(), err)
		}
		if parsed != c {
			t.Errorf("round trip mismatch: %v -> %q -> %v", c, c.String(), parsed)
		}
	}
}

func TestParseCoordinateRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "X1:Y2", "1:2:3", "Xa:Yb:Zc", "X1:Y2:Z3:W4"} {
		if _, err := ParseCoordinate(s); err == nil {
			t.Errorf("ParseCoordinate(%q) should fail", s)
		}
	}
}

func TestDistance(t *testing.T) {
	a := Coordinate{X: 0, Y: 0, Z: 0}
	b := Coordinate{X: 3, Y: 4, Z: 0}

	if d := Distance(a, b); d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}

	if d := Distance(a, a); d != 0 {
		t.Errorf("Distance to self = %v, want 0", d)
	}

	c := Coordinate{X: 1, Y: 1, Z: 1}
	if d := Distance(a, c); math.Abs(d-math.Sqrt(3)) > 1e-9 {
		t.Errorf("Distance = %v, want sqrt(3)", d)
	}
}
