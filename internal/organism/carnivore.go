package organism

import (
	"fmt"
	"math"

	"github.com/chaosgarden/ecosim/internal/climate"
	"github.com/chaosgarden/ecosim/internal/events"
	"github.com/chaosgarden/ecosim/internal/geo"
)

const (
	baseCarnivoreMetabolism  = 0.25
	carnivoreCoordinationRadius = 70.0
)

// ProcessCarnivores runs the carnivore behavior pass. It returns newborn
// carnivores and the ids of herbivores killed by hunting this tick.
func ProcessCarnivores(carnivores []*Entity, herbivores []*Entity, ctx Context, reproductionThreshold float64) (offspring []*Entity, killedHerbivoreIDs []string) {
	for _, c := range carnivores {
		if !c.IsAlive {
			continue
		}
		traits := c.Carnivore()

		prey := findNearestLivingHerbivore(c, herbivores, traits.PerceptionRadius)
		switch {
		case prey != nil && geo.Distance(c.Position, prey.Position) <= EatingDistance:
			hunt(c, prey, ctx)
			killedHerbivoreIDs = append(killedHerbivoreIDs, prey.ID)
		case prey != nil:
			moveToward(c, prey.Position, traits.MovementSpeed, ctx)
		default:
			explore(c, ctx)
		}

		c.Energy = clamp(c.Energy-baseCarnivoreMetabolism*climate.TemperatureMetabolismMultiplier(ctx.Environment.Temperature), 0, 100)

		if c.Energy >= reproductionThreshold && ctx.RNG.Float64() < traits.ReproductionRate {
			if child := reproduceCarnivore(c, ctx); child != nil {
				offspring = append(offspring, child)
			}
		}

		c.UpdatedAt = ctx.Now
		DeathCheck(c, ctx, "")
	}
	return offspring, killedHerbivoreIDs
}

func findNearestLivingHerbivore(c *Entity, herbivores []*Entity, radius float64) *Entity {
	var nearest *Entity
	best := math.MaxFloat64
	for _, h := range herbivores {
		if !h.IsAlive {
			continue
		}
		d := geo.Distance(c.Position, h.Position)
		if d <= radius && d < best {
			best = d
			nearest = h
		}
	}
	return nearest
}

// findCompetingCarnivores returns the other living carnivores within the
// coordination radius of prey. Reserved for
// future hunting-coordination refinements; the contract requires it be
// exposed even though no behavior currently consumes the result.
func findCompetingCarnivores(self *Entity, prey *Entity, carnivores []*Entity) []*Entity {
	var competitors []*Entity
	for _, c := range carnivores {
		if c == self || !c.IsAlive {
			continue
		}
		if geo.Distance(c.Position, prey.Position) <= carnivoreCoordinationRadius {
			competitors = append(competitors, c)
		}
	}
	return competitors
}

func hunt(c *Entity, prey *Entity, ctx Context) {
	share := ctx.EnergyFromPrey
	if share <= 0 {
		share = 30
	}
	c.Energy = clamp(c.Energy+share, 0, 100)
	prey.Energy = 0
	prey.IsAlive = false
	tick := ctx.Tick
	prey.DeathTick = &tick
	prey.DeathCause = "hunted and eaten by a predator"
	prey.UpdatedAt = ctx.Now

	ctx.Events.Emit(events.Death, events.Medium,
		fmt.Sprintf("%s hunted down %s", c.Name, prey.Name),
		[]string{c.ID, prey.ID}, []string{"death", "predation", "interspecies", "tension"}, nil)
}

func reproduceCarnivore(parent *Entity, ctx Context) *Entity {
	cost := ReproductionCost(KindCarnivore)
	if parent.Energy < cost {
		return nil
	}
	parent.Energy -= cost

	childTraits, muts := MutateCarnivoreTraits(ctx.RNG, ctx.MutationProbability, ctx.MutationRange, *parent.Carnivore())
	pos := geo.PositionNearParent(ctx.RNG, parent.Position, SeedSpreadRadius, ctx.GardenWidth, ctx.GardenHeight)
	child := NewCarnivore(ctx.RNG, pos, ctx.Tick, parent.ID, ctx.Now, 55, 100, childTraits)
	child.GardenStateID = ctx.GardenStateID

	ctx.Events.Emit(events.Birth, events.Low,
		fmt.Sprintf("%s sired a new hunter", parent.Name),
		[]string{parent.ID, child.ID}, []string{"birth", "reproduction", "biology"}, nil)
	emitMutations(ctx, child, muts)
	return child
}
