package organism

import (
	"fmt"
	"math"

	"github.com/chaosgarden/ecosim/internal/climate"
	"github.com/chaosgarden/ecosim/internal/events"
	"github.com/chaosgarden/ecosim/internal/geo"
)

const (
	baseHerbivoreMetabolism   = 0.2
	aimlessExplorationPenalty = 0.1
	explorationRange          = 60.0
	fleeEdgeBias              = 50.0
)

// ProcessHerbivores runs the herbivore behavior pass. It returns newborn
// herbivores and the ids of plants killed by feeding this tick; eatPlant has
// already marked each of those plants dead in place.
func ProcessHerbivores(herbivores []*Entity, plants []*Entity, carnivores []*Entity, ctx Context, reproductionThreshold float64) (offspring []*Entity, eatenPlantIDs []string) {
	for _, h := range herbivores {
		if !h.IsAlive {
			continue
		}
		traits := h.Herbivore()

		threat := findMostDangerousCarnivore(h, carnivores, traits.ThreatDetectionRadius)
		switch {
		case threat != nil:
			flee(h, threat, ctx)
		default:
			target := findNearestLivingPlant(h, plants)
			if target != nil && geo.Distance(h.Position, target.Position) <= EatingDistance {
				eatPlant(h, target, ctx)
				eatenPlantIDs = append(eatenPlantIDs, target.ID)
			} else if target != nil {
				moveToward(h, target.Position, traits.MovementSpeed, ctx)
			} else {
				explore(h, ctx)
			}
		}

		h.Energy = clamp(h.Energy-baseHerbivoreMetabolism*climate.TemperatureMetabolismMultiplier(ctx.Environment.Temperature), 0, 100)

		if h.Energy >= reproductionThreshold && ctx.RNG.Float64() < traits.ReproductionRate {
			if child := reproduceHerbivore(h, ctx); child != nil {
				offspring = append(offspring, child)
			}
		}

		h.UpdatedAt = ctx.Now
		DeathCheck(h, ctx, "")
	}
	return offspring, eatenPlantIDs
}

func findNearestLivingPlant(h *Entity, plants []*Entity) *Entity {
	var nearest *Entity
	best := math.MaxFloat64
	radius := h.Herbivore().PerceptionRadius
	for _, p := range plants {
		if !p.IsAlive {
			continue
		}
		d := geo.Distance(h.Position, p.Position)
		if d <= radius && d < best {
			best = d
			nearest = p
		}
	}
	return nearest
}

// findMostDangerousCarnivore returns the carnivore within radius with the
// highest threat score (increasing with proximity and carnivore energy),
// or nil if none threaten h.
func findMostDangerousCarnivore(h *Entity, carnivores []*Entity, radius float64) *Entity {
	var worst *Entity
	var worstScore float64
	for _, c := range carnivores {
		if !c.IsAlive {
			continue
		}
		d := geo.Distance(h.Position, c.Position)
		if d > radius {
			continue
		}
		proximity := radius - d
		score := proximity*2 + c.Energy*0.5
		if worst == nil || score > worstScore {
			worst = c
			worstScore = score
		}
	}
	return worst
}

func flee(h *Entity, threat *Entity, ctx Context) {
	dx := h.Position.X - threat.Position.X
	dy := h.Position.Y - threat.Position.Y
	angle := math.Atan2(dy, dx)

	jitter := (ctx.RNG.Float64() - 0.5) * (math.Pi / 2) // +-45 degrees at most
	angle += jitter

	if h.Position.X < fleeEdgeBias || h.Position.X > ctx.GardenWidth-fleeEdgeBias ||
		h.Position.Y < fleeEdgeBias || h.Position.Y > ctx.GardenHeight-fleeEdgeBias {
		centerAngle := math.Atan2(ctx.GardenHeight/2-h.Position.Y, ctx.GardenWidth/2-h.Position.X)
		angle = (angle + centerAngle) / 2
	}

	speed := h.Herbivore().MovementSpeed
	dest := geo.Point{
		X: h.Position.X + math.Cos(angle)*speed,
		Y: h.Position.Y + math.Sin(angle)*speed,
	}
	moveToward(h, dest, speed, ctx)
}

func eatPlant(h *Entity, plant *Entity, ctx Context) {
	h.Energy = clamp(h.Energy+EnergyFromPlant, 0, 100)
	plant.Energy = 0
	plant.IsAlive = false
	tick := ctx.Tick
	plant.DeathTick = &tick
	plant.DeathCause = "eaten"
	plant.UpdatedAt = ctx.Now

	ctx.Events.Emit(events.Death, events.Low,
		fmt.Sprintf("%s grazed %s down to nothing", h.Name, plant.Name),
		[]string{h.ID, plant.ID}, []string{"death", "ecology", "interspecies"}, nil)
}

func explore(h *Entity, ctx Context) {
	dest := geo.RandomPositionInGarden(ctx.RNG, explorationRange*2, explorationRange*2)
	dest.X = clamp(h.Position.X+dest.X-explorationRange, 0, ctx.GardenWidth)
	dest.Y = clamp(h.Position.Y+dest.Y-explorationRange, 0, ctx.GardenHeight)
	var speed float64
	if h.Kind == KindCarnivore {
		speed = h.Carnivore().MovementSpeed
	} else {
		speed = h.Herbivore().MovementSpeed
	}
	moveToward(h, dest, speed, ctx)
	h.Energy = clamp(h.Energy-aimlessExplorationPenalty, 0, 100)
}

// moveToward advances e a maximum of speed pixels toward dest, paying
// movementEnergyCostPerPixel per pixel of the actual distance moved (after
// garden-bounds clamping, which may shorten the step).
func moveToward(e *Entity, dest geo.Point, speed float64, ctx Context) {
	origin := e.Position
	dist := geo.Distance(origin, dest)
	if dist == 0 {
		return
	}
	step := speed * ctx.Modifiers.MovementModifier
	if step > dist {
		step = dist
	}
	ratio := step / dist
	moved := geo.Point{
		X: origin.X + (dest.X-origin.X)*ratio,
		Y: origin.Y + (dest.Y-origin.Y)*ratio,
	}
	e.Position = geo.ClampPoint(moved, ctx.GardenWidth, ctx.GardenHeight)
	actualDistance := geo.Distance(origin, e.Position)
	e.Energy = clamp(e.Energy-ctx.MovementEnergyCostPerPixel*actualDistance, 0, 100)
}

func reproduceHerbivore(parent *Entity, ctx Context) *Entity {
	cost := ReproductionCost(KindHerbivore)
	if parent.Energy < cost {
		return nil
	}
	parent.Energy -= cost

	childTraits, muts := MutateHerbivoreTraits(ctx.RNG, ctx.MutationProbability, ctx.MutationRange, *parent.Herbivore())
	pos := geo.PositionNearParent(ctx.RNG, parent.Position, SeedSpreadRadius, ctx.GardenWidth, ctx.GardenHeight)
	child := NewHerbivore(ctx.RNG, pos, ctx.Tick, parent.ID, ctx.Now, 60, 100, childTraits)
	child.GardenStateID = ctx.GardenStateID

	ctx.Events.Emit(events.Birth, events.Low,
		fmt.Sprintf("%s gave birth", parent.Name),
		[]string{parent.ID, child.ID}, []string{"birth", "reproduction", "biology"}, nil)
	emitMutations(ctx, child, muts)
	return child
}
