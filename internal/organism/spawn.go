package organism

import (
	"time"

	"github.com/chaosgarden/ecosim/internal/geo"
	"github.com/chaosgarden/ecosim/internal/rng"
)

// newBase fills the fields common to every kind.
func newBase(src rng.Source, k Kind, pos geo.Point, bornAtTick int64, lineage string, now time.Time) Entity {
	name := GenerateName(src, k)
	return Entity{
		ID:         geo.NewEntityID(),
		BornAtTick: bornAtTick,
		IsAlive:    true,
		Kind:       k,
		Name:       name,
		Species:    SpeciesFromName(name),
		Position:   pos,
		Age:        0,
		Lineage:    lineage,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewPlant constructs a freshly-seeded or freshly-born plant.
func NewPlant(src rng.Source, pos geo.Point, bornAtTick int64, lineage string, now time.Time, energy, health float64, traits PlantTraits) *Entity {
	e := newBase(src, KindPlant, pos, bornAtTick, lineage, now)
	e.Energy, e.Health = energy, health
	e.Traits = &traits
	return &e
}

// NewHerbivore constructs a freshly-seeded or freshly-born herbivore.
func NewHerbivore(src rng.Source, pos geo.Point, bornAtTick int64, lineage string, now time.Time, energy, health float64, traits HerbivoreTraits) *Entity {
	e := newBase(src, KindHerbivore, pos, bornAtTick, lineage, now)
	e.Energy, e.Health = energy, health
	e.Traits = &traits
	return &e
}

// NewCarnivore constructs a freshly-seeded or freshly-born carnivore.
func NewCarnivore(src rng.Source, pos geo.Point, bornAtTick int64, lineage string, now time.Time, energy, health float64, traits CarnivoreTraits) *Entity {
	e := newBase(src, KindCarnivore, pos, bornAtTick, lineage, now)
	e.Energy, e.Health = energy, health
	e.Traits = &traits
	return &e
}

// NewFungus constructs a freshly-seeded, freshly-born, or wild-spore fungus.
func NewFungus(src rng.Source, pos geo.Point, bornAtTick int64, lineage string, now time.Time, energy, health float64, traits FungusTraits) *Entity {
	e := newBase(src, KindFungus, pos, bornAtTick, lineage, now)
	e.Energy, e.Health = energy, health
	e.Traits = &traits
	return &e
}

// DefaultPlantTraits returns a reasonable starting trait set for a
// wild-seeded or baseline plant.
func DefaultPlantTraits() PlantTraits {
	return PlantTraits{ReproductionRate: 0.06, MetabolismEfficiency: 1.0, PhotosynthesisRate: 1.0}
}

// DefaultHerbivoreTraits returns a reasonable starting trait set.
func DefaultHerbivoreTraits() HerbivoreTraits {
	return HerbivoreTraits{
		ReproductionRate:      0.04,
		MetabolismEfficiency:  1.0,
		MovementSpeed:         4.0,
		PerceptionRadius:      80,
		ThreatDetectionRadius: 120,
	}
}

// DefaultCarnivoreTraits returns a reasonable starting trait set.
func DefaultCarnivoreTraits() CarnivoreTraits {
	return CarnivoreTraits{
		ReproductionRate:     0.025,
		MetabolismEfficiency: 1.0,
		MovementSpeed:        5.5,
		PerceptionRadius:     110,
	}
}

// DefaultFungusTraits returns a reasonable starting trait set.
func DefaultFungusTraits() FungusTraits {
	return FungusTraits{
		ReproductionRate:     0.02,
		MetabolismEfficiency: 1.0,
		DecompositionRate:    0.8,
		PerceptionRadius:     60,
	}
}
