package organism

import (
	"time"

	"github.com/chaosgarden/ecosim/internal/climate"
	"github.com/chaosgarden/ecosim/internal/events"
	"github.com/chaosgarden/ecosim/internal/fertility"
	"github.com/chaosgarden/ecosim/internal/rng"
)

const idealTemperature = 20.0

// Context bundles everything a per-type behavior pass needs beyond the
// entity slice it owns for the pass. It holds no entity state itself.
type Context struct {
	Tick                int64
	Now                 time.Time
	RNG                 rng.Source
	Events              *events.Buffer
	GardenStateID       string
	GardenWidth         float64
	GardenHeight        float64
	Environment         climate.Environment
	Modifiers           climate.Modifiers
	Fertility           *fertility.Field
	MutationProbability float64
	MutationRange       float64
	BaseEnergyCostPerTick      float64
	MovementEnergyCostPerPixel float64
	EnergyFromPrey      float64
	WildFungusSpawnProbability float64
}

// AgeAndExpose advances age by one tick and applies environmental exposure
// to every living entity in entities. Must run once, at tick start, before
// any per-type behavior pass.
func AgeAndExpose(entities []*Entity, ctx Context) {
	for _, e := range entities {
		if !e.IsAlive {
			continue
		}
		e.Age++
		applyEnvironmentalExposure(e, ctx)
	}
}

func applyEnvironmentalExposure(e *Entity, ctx Context) {
	tempDeviation := absFloat(ctx.Environment.Temperature - idealTemperature)
	if tempDeviation > 10 {
		e.Health -= (tempDeviation - 10) * 0.02
	}
	moisture := ctx.Environment.Moisture
	if moisture < 0.15 || moisture > 0.9 {
		e.Energy -= 0.1
	}
	e.Energy = clamp(e.Energy, 0, 100)
	e.Health = clamp(e.Health, 0, 100)
}

// DeathCheck evaluates the unified death condition for e and, if met,
// marks it dead, sets DeathCause, and emits a DEATH event. Returns true if
// e died this call.
func DeathCheck(e *Entity, ctx Context, cause string) bool {
	if !e.IsAlive {
		return false
	}
	dead := e.Energy <= 0 || e.Health <= 0 || e.Age >= MaxAge(e.Kind)
	if !dead {
		return false
	}
	e.IsAlive = false
	tick := ctx.Tick
	e.DeathTick = &tick
	e.UpdatedAt = ctx.Now

	switch cause {
	case "":
		switch {
		case e.Age >= MaxAge(e.Kind):
			cause = "old age"
		case e.Health <= 0:
			cause = "health"
		default:
			cause = "starvation"
		}
	}
	e.DeathCause = cause

	if e.Kind == KindHerbivore || e.Kind == KindCarnivore {
		e.Energy = 0
	}

	ctx.Events.Emit(events.Death, events.Medium,
		e.Name+" ("+e.Species+") died of "+cause,
		[]string{e.ID}, []string{"death", "ecology", string(e.Kind)}, nil)
	return true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
