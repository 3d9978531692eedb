package organism

import (
	"fmt"

	"github.com/chaosgarden/ecosim/internal/climate"
	"github.com/chaosgarden/ecosim/internal/events"
	"github.com/chaosgarden/ecosim/internal/geo"
)

const (
	basePlantMetabolism      = 0.15
	plantHealthRegenPerTick  = 0.5
	plantHealthRegenFloor    = 70.0
)

// ProcessPlants runs the plant behavior pass over plants, returning any
// offspring born this tick. Dead plants remain in the slice (as corpses);
// the orchestrator finds this tick's deaths by their DeathTick.
func ProcessPlants(plants []*Entity, ctx Context, photosynthesisBaseRate, reproductionThreshold float64) []*Entity {
	var offspring []*Entity
	for _, p := range plants {
		if !p.IsAlive {
			continue
		}
		traits := p.Plant()

		moistureMul := climate.MoistureGrowthMultiplier(ctx.Environment.Moisture)
		fert := 1.0
		if ctx.Fertility != nil {
			fert = ctx.Fertility.At(p.Position.X, p.Position.Y)
		}
		gain := photosynthesisBaseRate * ctx.Environment.Sunlight * traits.PhotosynthesisRate * moistureMul * ctx.Modifiers.PhotosynthesisModifier * fert
		p.Energy = clamp(p.Energy+gain-basePlantMetabolism, 0, 100)

		if p.Energy > plantHealthRegenFloor {
			p.Health = clamp(p.Health+plantHealthRegenPerTick, 0, 100)
		}

		if p.Energy >= reproductionThreshold {
			reproChance := traits.ReproductionRate * ctx.Modifiers.ReproductionModifier
			if ctx.RNG.Float64() < reproChance {
				if child := reproducePlant(p, ctx); child != nil {
					offspring = append(offspring, child)
				}
			}
		}

		p.UpdatedAt = ctx.Now
		DeathCheck(p, ctx, "")
	}
	return offspring
}

func reproducePlant(parent *Entity, ctx Context) *Entity {
	cost := ReproductionCost(KindPlant)
	if parent.Energy < cost {
		return nil
	}
	parent.Energy -= cost

	childTraits, muts := MutatePlantTraits(ctx.RNG, ctx.MutationProbability, ctx.MutationRange, *parent.Plant())
	pos := geo.PositionNearParent(ctx.RNG, parent.Position, SeedSpreadRadius, ctx.GardenWidth, ctx.GardenHeight)
	child := NewPlant(ctx.RNG, pos, ctx.Tick, parent.ID, ctx.Now, 50, 100, childTraits)
	child.GardenStateID = ctx.GardenStateID

	ctx.Events.Emit(events.Birth, events.Low,
		fmt.Sprintf("%s seeds a new plant nearby", parent.Name),
		[]string{parent.ID, child.ID}, []string{"birth", "reproduction", "biology"}, nil)
	ctx.Events.Emit(events.Reproduction, events.Low, parent.Name+" reproduced",
		[]string{parent.ID, child.ID}, []string{"reproduction"}, nil)
	emitMutations(ctx, child, muts)
	return child
}

func emitMutations(ctx Context, child *Entity, muts []TraitMutation) {
	for _, m := range muts {
		ctx.Events.Emit(events.Mutation, events.Low,
			fmt.Sprintf("%s inherited a mutated %s", child.Name, m.Field),
			[]string{child.ID}, []string{"mutation", "evolution"},
			map[string]any{"field": m.Field, "old": m.Old, "new": m.New})
	}
}
