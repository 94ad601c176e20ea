package universe

import (
	"time"
)

// SectorType classifies the dominant feature of a sector.
type SectorType string

const (
	TypeAsteroidField       SectorType = "asteroid_field"
	TypeGasGiant            SectorType = "gas_giant"
	TypePlanetarySystem     SectorType = "planetary_system"
	TypeNebula              SectorType = "nebula"
	TypeBinaryStar          SectorType = "binary_star"
	TypeBlackHole           SectorType = "black_hole"
	TypeAncientRuins        SectorType = "ancient_ruins"
	TypeSpaceStation        SectorType = "space_station"
	TypeWormhole            SectorType = "wormhole"
	TypeQuantumStorm        SectorType = "quantum_storm"
	TypeDarkMatterCloud     SectorType = "dark_matter_cloud"
	TypePulsarSystem        SectorType = "pulsar_system"
	TypeNeutronStar         SectorType = "neutron_star"
	TypeRedGiant            SectorType = "red_giant"
	TypeWhiteDwarf          SectorType = "white_dwarf"
	TypeProtostar           SectorType = "protostar"
	TypePlanetaryRing       SectorType = "planetary_ring"
	TypeCometField          SectorType = "comet_field"
	TypeMagneticAnomaly     SectorType = "magnetic_anomaly"
	TypeTimeDistortion      SectorType = "time_distortion"
)

// SectorTypes lists every sector type; generation draws uniformly from it.
var SectorTypes = []SectorType{
	TypeAsteroidField, TypeGasGiant, TypePlanetarySystem, TypeNebula,
	TypeBinaryStar, TypeBlackHole, TypeAncientRuins, TypeSpaceStation,
	TypeWormhole, TypeQuantumStorm, TypeDarkMatterCloud, TypePulsarSystem,
	TypeNeutronStar, TypeRedGiant, TypeWhiteDwarf, TypeProtostar,
	TypePlanetaryRing, TypeCometField, TypeMagneticAnomaly, TypeTimeDistortion,
}

// Resource is a closed enum of harvestable sector resources.
type Resource string

const (
	ResourceIron              Resource = "iron"
	ResourceTitanium          Resource = "titanium"
	ResourcePlatinum          Resource = "platinum"
	ResourceNexiumCrystals    Resource = "nexium_crystals"
	ResourceDarkMatter        Resource = "dark_matter"
	ResourceQuantumEnergy     Resource = "quantum_energy"
	ResourceCosmicDust        Resource = "cosmic_dust"
	ResourceHelium3           Resource = "helium_3"
	ResourceDeuterium         Resource = "deuterium"
	ResourceTritium           Resource = "tritium"
	ResourceRareEarthMetals   Resource = "rare_earth_metals"
	ResourceExoticMatter      Resource = "exotic_matter"
	ResourceAntimatter        Resource = "antimatter"
	ResourceZeroPointEnergy   Resource = "zero_point_energy"
	ResourceCrystallineMatrix Resource = "crystalline_matrix"
	ResourceBioNeuralGel      Resource = "bio_neural_gel"
	ResourcePhotonicMatter    Resource = "photonic_matter"
	ResourceTachyonParticles  Resource = "tachyon_particles"
)

// Resources lists every resource in detection order. Scan reports use this
// order, so the "first detected" resource of a sector is deterministic.
var Resources = []Resource{
	ResourceIron, ResourceTitanium, ResourcePlatinum, ResourceNexiumCrystals,
	ResourceDarkMatter, ResourceQuantumEnergy, ResourceCosmicDust,
	ResourceHelium3, ResourceDeuterium, ResourceTritium,
	ResourceRareEarthMetals, ResourceExoticMatter, ResourceAntimatter,
	ResourceZeroPointEnergy, ResourceCrystallineMatrix, ResourceBioNeuralGel,
	ResourcePhotonicMatter, ResourceTachyonParticles,
}

// Hazard is a closed enum of sector hazards.
type Hazard string

const (
	HazardRadiation            Hazard = "radiation"
	HazardGravityWells         Hazard = "gravity_wells"
	HazardPlasmaStorms         Hazard = "plasma_storms"
	HazardSpacePirates         Hazard = "space_pirates"
	HazardTemporalAnomalies    Hazard = "temporal_anomalies"
	HazardIonStorms            Hazard = "ion_storms"
	HazardSolarFlares          Hazard = "solar_flares"
	HazardMagneticInterference Hazard = "magnetic_interference"
	HazardQuantumFluctuations  Hazard = "quantum_fluctuations"
	HazardGravityDistortions   Hazard = "gravity_distortions"
	HazardEnergyVampires       Hazard = "energy_vampires"
	HazardSentientGasClouds    Hazard = "sentient_gas_clouds"
	HazardDimensionalRifts     Hazard = "dimensional_rifts"
	HazardNullSpacePockets     Hazard = "null_space_pockets"
)

// Hazards lists every hazard in detection order.
var Hazards = []Hazard{
	HazardRadiation, HazardGravityWells, HazardPlasmaStorms,
	HazardSpacePirates, HazardTemporalAnomalies, HazardIonStorms,
	HazardSolarFlares, HazardMagneticInterference, HazardQuantumFluctuations,
	HazardGravityDistortions, HazardEnergyVampires, HazardSentientGasClouds,
	HazardDimensionalRifts, HazardNullSpacePockets,
}

// Sector is a coordinate-addressed region of the universe. Type, difficulty,
// resources and hazards are fixed at creation; only the visit metadata
// mutates afterwards.
type Sector struct {
	ID           int64            `json:"id"`
	Coordinate   string           `json:"coordinate"`
	Name         string           `json:"name"`
	Type         SectorType       `json:"type"`
	Difficulty   int              `json:"difficulty"`
	Resources    map[Resource]int `json:"resources"`
	Hazards      map[Hazard]int   `json:"hazards"`
	DiscoveredBy *int64           `json:"discovered_by,omitempty"`
	VisitCount   int              `json:"visit_count"`
	LastVisited  time.Time        `json:"last_visited"`
	SpecialSite  bool             `json:"special_site"`
	CreatedAt    time.Time        `json:"created_at"`
}

// SectorDraft is the generator's output, persisted by CreateIfAbsent.
type SectorDraft struct {
	Coordinate   string
	Name         string
	Type         SectorType
	Difficulty   int
	Resources    map[Resource]int
	Hazards      map[Hazard]int
	DiscoveredBy *int64
	SpecialSite  bool
}

// FirstResource returns the sector's first resource in detection order, or
// false when the sector holds none.
func (s *Sector) FirstResource() (Resource, bool) {
	for _, r := range Resources {
		if _, ok := s.Resources[r]; ok {
			return r, true
		}
	}
	return "", false
}

// FirstHazard returns the sector's first hazard in detection order, or false
// when the sector holds none.
func (s *Sector) FirstHazard() (Hazard, bool) {
	for _, h := range Hazards {
		if _, ok := s.Hazards[h]; ok {
			return h, true
		}
	}
	return "", false
}
