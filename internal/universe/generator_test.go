package universe

import (
	"reflect"
	"strings"
	"testing"

	"nexium-server/internal/rng"
)

func TestGeneratorDeterministic(t *testing.T) {
	a := NewGenerator(rng.New(12345))
	b := NewGenerator(rng.New(12345))

	for i := 0; i < 50; i++ {
		ca, cb := a.Coordinates(), b.Coordinates()
		if ca != cb {
			t.Fatalf("coordinate draw %d diverged: %v != %v", i, ca, cb)
		}

		da, db := a.Sector(ca), b.Sector(cb)
		if !reflect.DeepEqual(da, db) {
			t.Fatalf("sector draw %d diverged:\n%+v\n%+v", i, da, db)
		}
	}
}

func TestCoordinatesWithinBounds(t *testing.T) {
	g := NewGenerator(rng.New(1))

	for i := 0; i < 1000; i++ {
		c := g.Coordinates()
		if c.X < -CoordMaxXY || c.X > CoordMaxXY {
			t.Fatalf("x out of bounds: %d", c.X)
		}
		if c.Y < -CoordMaxXY || c.Y > CoordMaxXY {
			t.Fatalf("y out of bounds: %d", c.Y)
		}
		if c.Z < -CoordMaxZ || c.Z > CoordMaxZ {
			t.Fatalf("z out of bounds: %d", c.Z)
		}
	}
}

func TestSectorDraftBounds(t *testing.T) {
	g := NewGenerator(rng.New(2))

	for i := 0; i < 500; i++ {
		draft := g.Sector(g.Coordinates())

		if draft.Difficulty < 1 || draft.Difficulty > 5 {
			t.Fatalf("difficulty out of range: %d", draft.Difficulty)
		}

		if len(draft.Resources) > 3 {
			t.Fatalf("too many resources: %d", len(draft.Resources))
		}
		for resource, abundance := range draft.Resources {
			if abundance < 50 || abundance > 549 {
				t.Fatalf("abundance of %s out of range: %d", resource, abundance)
			}
		}

		if len(draft.Hazards) > 2 {
			t.Fatalf("too many hazards: %d", len(draft.Hazards))
		}
		for hazard, intensity := range draft.Hazards {
			if intensity < 1 || intensity > 10 {
				t.Fatalf("intensity of %s out of range: %d", hazard, intensity)
			}
		}

		found := false
		for _, st := range SectorTypes {
			if draft.Type == st {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("unknown sector type %q", draft.Type)
		}
	}
}

func TestSectorNameVocabulary(t *testing.T) {
	g := NewGenerator(rng.New(3))

	for i := 0; i < 200; i++ {
		name := g.SectorName()
		parts := strings.Fields(name)
		if len(parts) != 2 && len(parts) != 3 {
			t.Fatalf("unexpected name shape %q", name)
		}

		if !contains(sectorPrefixes, parts[0]) {
			t.Errorf("prefix %q not in vocabulary", parts[0])
		}
		if !contains(sectorSuffixes, parts[1]) {
			t.Errorf("suffix %q not in vocabulary", parts[1])
		}
	}
}

func TestNearbyCoordinateStaysClose(t *testing.T) {
	g := NewGenerator(rng.New(4))
	base := Coordinate{X: 10, Y: -20, Z: 5}

	for i := 0; i < 200; i++ {
		c := g.NearbyCoordinate(base, 50)
		if abs(c.X-base.X) > 50 || abs(c.Y-base.Y) > 50 || abs(c.Z-base.Z) > 50 {
			t.Fatalf("nearby coordinate %v too far from %v", c, base)
		}
	}
}

func TestFirstResourceDetectionOrder(t *testing.T) {
	s := &Sector{
		Resources: map[Resource]int{
			ResourceTritium: 100,
			ResourceIron:    200,
		},
		Hazards: map[Hazard]int{},
	}

	resource, ok := s.FirstResource()
	if !ok || resource != ResourceIron {
		t.Errorf("FirstResource = %v, want iron (declaration order)", resource)
	}

	if _, ok := s.FirstHazard(); ok {
		t.Error("FirstHazard should report nothing for an empty hazard map")
	}
}

func TestFlavorNamesNonEmptyAndDeterministic(t *testing.T) {
	a := NewGenerator(rng.New(6))
	b := NewGenerator(rng.New(6))

	for i := 0; i < 100; i++ {
		pa, pb := a.PlanetName(), b.PlanetName()
		if pa != pb {
			t.Fatalf("planet name draw %d diverged: %q != %q", i, pa, pb)
		}
		if pa == "" {
			t.Fatal("empty planet name")
		}

		aa, ab := a.ArtifactName(), b.ArtifactName()
		if aa != ab {
			t.Fatalf("artifact name draw %d diverged: %q != %q", i, aa, ab)
		}
		if len(strings.Fields(aa)) < 2 {
			t.Fatalf("artifact name %q too short", aa)
		}
	}
}

func TestEncounterDescriptionCoversAllTypes(t *testing.T) {
	g := NewGenerator(rng.New(7))

	for _, st := range SectorTypes {
		if desc := g.EncounterDescription(st); desc == "" {
			t.Errorf("no encounter description for sector type %s", st)
		}
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
