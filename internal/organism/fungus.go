package organism

import (
	"fmt"
	"math"

	"github.com/chaosgarden/ecosim/internal/events"
	"github.com/chaosgarden/ecosim/internal/geo"
)

const (
	decompositionConstant = 2.0
	baseFungusMetabolism  = 0.1
)

// DecomposeResult is the outcome of one fungus pass over the decomposable
// corpse set.
type DecomposeResult struct {
	Offspring           []*Entity
	DecomposedEntityIDs []string
}

// ProcessFungi runs the fungus behavior pass over fungi against corpses,
// the decomposition candidate set loaded at tick start (prior-tick corpses
// only — entities killed earlier in this same tick are not eligible until
// the next tick).
func ProcessFungi(fungi []*Entity, corpses []*Entity, ctx Context, reproductionThreshold float64) DecomposeResult {
	var result DecomposeResult
	for _, f := range fungi {
		if !f.IsAlive {
			continue
		}
		traits := f.Fungus()

		corpse := findNearestCorpse(f, corpses, traits.PerceptionRadius)
		if corpse != nil {
			transfer := math.Min(traits.DecompositionRate*decompositionConstant, corpse.Energy)
			f.Energy = clamp(f.Energy+transfer, 0, 100)
			corpse.Energy = math.Max(corpse.Energy-transfer, 0)
			corpse.UpdatedAt = ctx.Now
			if corpse.Energy <= 0 {
				result.DecomposedEntityIDs = append(result.DecomposedEntityIDs, corpse.ID)
				ctx.Events.Emit(events.Death, events.Low,
					fmt.Sprintf("%s finished decomposing %s", f.Name, corpse.Name),
					[]string{f.ID, corpse.ID}, []string{"death", "decomposed", "ecology"}, nil)
			}
		}

		f.Energy = clamp(f.Energy-baseFungusMetabolism, 0, 100)

		if f.Energy >= reproductionThreshold && ctx.RNG.Float64() < traits.ReproductionRate {
			if child := reproduceFungus(f, ctx); child != nil {
				result.Offspring = append(result.Offspring, child)
			}
		}

		f.UpdatedAt = ctx.Now
		DeathCheck(f, ctx, "")
	}

	return result
}

// MaybeSpawnWildFungus implements orchestrator step 8: with probability
// ctx.WildFungusSpawnProbability, produce one wild-lineage fungus. Called
// once per tick, before the type passes, independent of the fungus pass
// itself.
func MaybeSpawnWildFungus(ctx Context) *Entity {
	if ctx.RNG.Float64() >= ctx.WildFungusSpawnProbability {
		return nil
	}
	return spawnWildFungus(ctx)
}

func findNearestCorpse(f *Entity, corpses []*Entity, radius float64) *Entity {
	var nearest *Entity
	best := math.MaxFloat64
	for _, c := range corpses {
		if !c.IsDecomposableCorpse() {
			continue
		}
		d := geo.Distance(f.Position, c.Position)
		if d <= radius && d < best {
			best = d
			nearest = c
		}
	}
	return nearest
}

func reproduceFungus(parent *Entity, ctx Context) *Entity {
	cost := ReproductionCost(KindFungus)
	if parent.Energy < cost {
		return nil
	}
	parent.Energy -= cost

	childTraits, muts := MutateFungusTraits(ctx.RNG, ctx.MutationProbability, ctx.MutationRange, *parent.Fungus())
	pos := geo.PositionNearParent(ctx.RNG, parent.Position, SeedSpreadRadius, ctx.GardenWidth, ctx.GardenHeight)
	child := NewFungus(ctx.RNG, pos, ctx.Tick, parent.ID, ctx.Now, 40, 100, childTraits)
	child.GardenStateID = ctx.GardenStateID

	ctx.Events.Emit(events.Birth, events.Low,
		fmt.Sprintf("%s released spores nearby", parent.Name),
		[]string{parent.ID, child.ID}, []string{"birth", "reproduction", "biology"}, nil)
	emitMutations(ctx, child, muts)
	return child
}

// spawnWildFungus produces a fungus with lineage "wild" at a random garden
// position, independent of any parent.
func spawnWildFungus(ctx Context) *Entity {
	pos := geo.RandomPositionInGarden(ctx.RNG, ctx.GardenWidth, ctx.GardenHeight)
	child := NewFungus(ctx.RNG, pos, ctx.Tick, "wild", ctx.Now, 40, 100, DefaultFungusTraits())
	child.GardenStateID = ctx.GardenStateID

	ctx.Events.Emit(events.Birth, events.Medium,
		fmt.Sprintf("%s sprouted from nowhere", child.Name),
		[]string{child.ID}, []string{"birth", "chaos", "ecology"}, nil)
	return child
}
