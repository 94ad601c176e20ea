package universe

import (
	"fmt"

	"nexium-server/internal/rng"
)

var sectorPrefixes = []string{
	"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta", "Eta", "Theta",
	"Iota", "Kappa", "Lambda", "Mu", "Nu", "Xi", "Omicron", "Pi", "Rho",
	"Sigma", "Tau", "Upsilon", "Phi", "Chi", "Psi", "Omega",
}

var sectorSuffixes = []string{
	"Nebula", "Cluster", "System", "Void", "Expanse", "Region", "Zone",
	"Sector", "Quadrant", "Territory", "Domain", "Realm", "Space",
	"Field", "Belt", "Ring", "Haven", "Reach", "Frontier", "Outpost",
}

// Generator produces sector drafts on demand. Given the same Source state the
// output is deterministic; there is no hidden global state.
type Generator struct {
	src rng.Source
}

func NewGenerator(src rng.Source) *Generator {
	return &Generator{src: src}
}

// Coordinates returns a fresh coordinate with x,y in [-1000,1000] and
// z in [-100,100].
func (g *Generator) Coordinates() Coordinate {
	return Coordinate{
		X: g.src.IntN(2*CoordMaxXY+1) - CoordMaxXY,
		Y: g.src.IntN(2*CoordMaxXY+1) - CoordMaxXY,
		Z: g.src.IntN(2*CoordMaxZ+1) - CoordMaxZ,
	}
}

// NearbyCoordinate offsets each axis of base by a uniform value in
// [-maxDistance, maxDistance].
func (g *Generator) NearbyCoordinate(base Coordinate, maxDistance int) Coordinate {
	offset := func() int {
		return g.src.IntN(2*maxDistance+1) - maxDistance
	}
	return Coordinate{
		X: base.X + offset(),
		Y: base.Y + offset(),
		Z: base.Z + offset(),
	}
}

// SectorName combines a random prefix and suffix, numbered about 60% of the
// time.
func (g *Generator) SectorName() string {
	prefix := sectorPrefixes[g.src.IntN(len(sectorPrefixes))]
	suffix := sectorSuffixes[g.src.IntN(len(sectorSuffixes))]
	number := g.src.IntN(999) + 1

	if rng.Chance(g.src, 0.6) {
		return fmt.Sprintf("%s %s %d", prefix, suffix, number)
	}
	return fmt.Sprintf("%s %s", prefix, suffix)
}

// Sector generates the full draft for a coordinate.
func (g *Generator) Sector(coord Coordinate) SectorDraft {
	return SectorDraft{
		Coordinate:  coord.String(),
		Name:        g.SectorName(),
		Type:        SectorTypes[g.src.IntN(len(SectorTypes))],
		Difficulty:  g.src.IntN(5) + 1,
		Resources:   g.generateResources(),
		Hazards:     g.generateHazards(),
		SpecialSite: rng.Chance(g.src, 0.1),
	}
}

func (g *Generator) generateResources() map[Resource]int {
	result := make(map[Resource]int)
	numResources := g.src.IntN(4) // 0-3 resources

	for i := 0; i < numResources; i++ {
		resource := Resources[g.src.IntN(len(Resources))]
		if _, ok := result[resource]; !ok {
			result[resource] = rng.IntBetween(g.src, 50, 549)
		}
	}

	return result
}

func (g *Generator) generateHazards() map[Hazard]int {
	result := make(map[Hazard]int)
	numHazards := g.src.IntN(3) // 0-2 hazards

	for i := 0; i < numHazards; i++ {
		hazard := Hazards[g.src.IntN(len(Hazards))]
		if _, ok := result[hazard]; !ok {
			result[hazard] = rng.IntBetween(g.src, 1, 10)
		}
	}

	return result
}

// PlanetName returns a flavor name for planets discovered inside sectors.
func (g *Generator) PlanetName() string {
	prefixes := []string{"Kepler", "Gliese", "Trappist", "Proxima", "Wolf", "Ross", "Tau", "HD"}
	suffixes := []string{"Prime", "Alpha", "Beta", "Secundus", "Major", "Minor", "Tertius"}

	prefix := prefixes[g.src.IntN(len(prefixes))]
	number := g.src.IntN(9999) + 1

	if rng.Chance(g.src, 0.3) {
		suffix := suffixes[g.src.IntN(len(suffixes))]
		return fmt.Sprintf("%s-%d %s", prefix, number, suffix)
	}
	letter := rune('a' + g.src.IntN(26))
	return fmt.Sprintf("%s-%d%c", prefix, number, letter)
}

// ArtifactName returns a flavor name for special-site artifacts.
func (g *Generator) ArtifactName() string {
	origins := []string{"Ancient", "Forgotten", "Lost", "Mysterious", "Alien", "Precursor"}
	types := []string{"Codex", "Relic", "Core", "Matrix", "Shard", "Beacon", "Archive", "Key"}
	materials := []string{"Crystal", "Metal", "Stone", "Energy", "Data", "Neural", "Quantum"}

	origin := origins[g.src.IntN(len(origins))]
	artifactType := types[g.src.IntN(len(types))]

	if rng.Chance(g.src, 0.4) {
		material := materials[g.src.IntN(len(materials))]
		return fmt.Sprintf("%s %s %s", origin, material, artifactType)
	}
	return fmt.Sprintf("%s %s", origin, artifactType)
}

var encounters = map[SectorType][]string{
	TypeAsteroidField: {
		"You navigate through a dense field of slowly rotating asteroids.",
		"Mining drones detect valuable ore deposits in the asteroid clusters.",
		"Ancient ship wrecks drift among the asteroids, telling tales of past battles.",
		"Unexpected gravity fluctuations make navigation challenging.",
	},
	TypeGasGiant: {
		"The massive planet's storms rage across its surface in hypnotic patterns.",
		"Floating cities of an unknown civilization orbit in the upper atmosphere.",
		"Your sensors detect rare gases that could power your ship for months.",
		"Strange bio-luminescent creatures swim through the dense gas layers.",
	},
	TypePlanetarySystem: {
		"Multiple worlds orbit a stable star, showing signs of terraforming.",
		"Trade beacons indicate this system is part of an active commerce route.",
		"Defense satellites challenge your approach with automated hails.",
		"One planet shows clear signs of recent industrial development.",
	},
	TypeNebula: {
		"Brilliant colors swirl around your ship as you enter the nebula.",
		"Communication systems are disrupted by the dense particle clouds.",
		"Your ship's hull begins to glow with accumulated static charge.",
		"Hidden within the nebula, you discover a previously unknown space station.",
	},
	TypeBlackHole: {
		"Time dilation effects make your chronometer spin wildly.",
		"The accretion disk provides a spectacular but dangerous light show.",
		"Gravitational lensing reveals distant galaxies behind the singularity.",
		"Your ship's AI calculates a narrow corridor of stable spacetime.",
	},
	TypeAncientRuins: {
		"Massive structures drift in space, clearly of non-human origin.",
		"Faint energy signatures suggest some systems are still active.",
		"Hieroglyphic-like symbols cover the hull of the alien construct.",
		"Your approach triggers ancient defense systems that scan your ship.",
	},
}

var genericEncounters = []string{
	"Your sensors detect unusual readings from this uncharted region.",
	"The void of space here seems different somehow, charged with potential.",
	"Navigation charts will need updating after this discovery.",
}

// EncounterDescription returns a flavor line for arriving in a sector of the
// given type.
func (g *Generator) EncounterDescription(t SectorType) string {
	descriptions, ok := encounters[t]
	if !ok {
		descriptions = genericEncounters
	}
	return descriptions[g.src.IntN(len(descriptions))]
}
