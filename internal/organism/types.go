// Package organism implements the entity kernel: the per-type behavior
// contract (perceive, decide, move, eat, reproduce, mutate, age, die)
// shared by plants, herbivores, carnivores, and fungi.
package organism

import (
	"fmt"
	"time"

	"github.com/chaosgarden/ecosim/internal/geo"
)

// Kind discriminates the four entity types.
type Kind string

const (
	KindPlant     Kind = "plant"
	KindHerbivore Kind = "herbivore"
	KindCarnivore Kind = "carnivore"
	KindFungus    Kind = "fungus"
)

// Traits is implemented by exactly one concrete struct per Kind. Accessing
// traits through the wrong accessor is a programming error and panics,
// matching the discriminated-union contract of the domain.
type Traits interface {
	kind() Kind
}

// PlantTraits holds the plant-specific trait fields.
type PlantTraits struct {
	ReproductionRate     float64 `json:"reproductionRate"`
	MetabolismEfficiency float64 `json:"metabolismEfficiency"`
	PhotosynthesisRate   float64 `json:"photosynthesisRate"`
}

func (PlantTraits) kind() Kind { return KindPlant }

// HerbivoreTraits holds the herbivore-specific trait fields.
type HerbivoreTraits struct {
	ReproductionRate      float64 `json:"reproductionRate"`
	MetabolismEfficiency  float64 `json:"metabolismEfficiency"`
	MovementSpeed         float64 `json:"movementSpeed"`
	PerceptionRadius      float64 `json:"perceptionRadius"`
	ThreatDetectionRadius float64 `json:"threatDetectionRadius"`
}

func (HerbivoreTraits) kind() Kind { return KindHerbivore }

// CarnivoreTraits holds the carnivore-specific trait fields.
type CarnivoreTraits struct {
	ReproductionRate     float64 `json:"reproductionRate"`
	MetabolismEfficiency float64 `json:"metabolismEfficiency"`
	MovementSpeed        float64 `json:"movementSpeed"`
	PerceptionRadius     float64 `json:"perceptionRadius"`
}

func (CarnivoreTraits) kind() Kind { return KindCarnivore }

// FungusTraits holds the fungus-specific trait fields.
type FungusTraits struct {
	ReproductionRate     float64 `json:"reproductionRate"`
	MetabolismEfficiency float64 `json:"metabolismEfficiency"`
	DecompositionRate    float64 `json:"decompositionRate"`
	PerceptionRadius     float64 `json:"perceptionRadius"`
}

func (FungusTraits) kind() Kind { return KindFungus }

// Entity is the tagged record shared by every living or decomposable thing
// in the garden.
type Entity struct {
	ID            string
	GardenStateID string
	BornAtTick    int64
	DeathTick     *int64
	IsAlive       bool
	Kind          Kind
	Name          string
	Species       string
	Position      geo.Point
	Energy        float64
	Health        float64
	Age           int64
	Lineage       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Traits        Traits

	// DeathCause is populated when IsAlive transitions to false; it is not
	// part of the persisted Entity row, only of the DEATH event emitted for
	// it in the same tick.
	DeathCause string
}

// Plant asserts e.Traits is PlantTraits, panicking otherwise.
func (e *Entity) Plant() *PlantTraits { return e.Traits.(*PlantTraits) }

// Herbivore asserts e.Traits is HerbivoreTraits, panicking otherwise.
func (e *Entity) Herbivore() *HerbivoreTraits { return e.Traits.(*HerbivoreTraits) }

// Carnivore asserts e.Traits is CarnivoreTraits, panicking otherwise.
func (e *Entity) Carnivore() *CarnivoreTraits { return e.Traits.(*CarnivoreTraits) }

// Fungus asserts e.Traits is FungusTraits, panicking otherwise.
func (e *Entity) Fungus() *FungusTraits { return e.Traits.(*FungusTraits) }

// IsDecomposableCorpse reports whether e is a dead entity that still holds
// residual energy and is therefore eligible for fungal decomposition.
func (e *Entity) IsDecomposableCorpse() bool {
	return !e.IsAlive && e.Energy > 0
}

// MaxAge returns the age at which e dies of old age.
func MaxAge(k Kind) int64 {
	switch k {
	case KindPlant:
		return 200
	case KindHerbivore:
		return 150
	case KindCarnivore:
		return 220
	case KindFungus:
		return 300
	default:
		panic(fmt.Sprintf("organism: unknown kind %q", k))
	}
}

// ReproductionCost is the flat energy cost of producing one offspring.
func ReproductionCost(k Kind) float64 {
	switch k {
	case KindPlant:
		return 20
	case KindHerbivore:
		return 40
	case KindCarnivore:
		return 50
	case KindFungus:
		return 20
	default:
		panic(fmt.Sprintf("organism: unknown kind %q", k))
	}
}

const (
	// EatingDistance is the maximum separation, in pixels, at which a
	// predator may consume its prey in the same tick.
	EatingDistance = 5.0
	// SeedSpreadRadius bounds how far a plant's or fungus's offspring may
	// land from its parent.
	SeedSpreadRadius = 40.0
	// EnergyFromPlant is the energy a herbivore gains from eating one
	// plant, before the 100 cap.
	EnergyFromPlant = 25.0
)
