package organism

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/chaosgarden/ecosim/internal/climate"
	"github.com/chaosgarden/ecosim/internal/events"
	"github.com/chaosgarden/ecosim/internal/geo"
	"github.com/chaosgarden/ecosim/internal/rng"
)

func centerOf(ctx Context) geo.Point {
	return geo.Point{X: ctx.GardenWidth / 2, Y: ctx.GardenHeight / 2}
}

func testContext(tick int64) Context {
	return Context{
		Tick:                       tick,
		Now:                        time.Now().UTC(),
		RNG:                        rng.NewSeeded(1),
		Events:                     events.NewBuffer(tick, "gs-1"),
		GardenStateID:              "gs-1",
		GardenWidth:                800,
		GardenHeight:               600,
		Environment:                climate.Environment{Tick: tick, Temperature: 20, Sunlight: 0.8, Moisture: 0.5},
		Modifiers:                  climate.NeutralModifiers,
		MutationProbability:        0.1,
		MutationRange:              0.2,
		BaseEnergyCostPerTick:      0.3,
		MovementEnergyCostPerPixel: 0.02,
		EnergyFromPrey:             30,
		WildFungusSpawnProbability: 0.006,
	}
}

func TestDeathCheckEnergyDepletion(t *testing.T) {
	ctx := testContext(5)
	e := NewPlant(ctx.RNG, centerOf(ctx), 0, "genesis", ctx.Now, 0, 50, DefaultPlantTraits())
	died := DeathCheck(e, ctx, "")
	assert.True(t, died)
	assert.False(t, e.IsAlive)
	assert.Equal(t, "starvation", e.DeathCause)
	assert.NotNil(t, e.DeathTick)
	assert.Equal(t, int64(5), *e.DeathTick)
	assert.Equal(t, 1, ctx.Events.Len())
}

func TestDeathCheckOldAge(t *testing.T) {
	ctx := testContext(5)
	e := NewPlant(ctx.RNG, centerOf(ctx), 0, "genesis", ctx.Now, 50, 50, DefaultPlantTraits())
	e.Age = MaxAge(KindPlant)
	died := DeathCheck(e, ctx, "")
	assert.True(t, died)
	assert.Equal(t, "old age", e.DeathCause)
}

func TestDeathCheckExplicitCauseOverridesInference(t *testing.T) {
	ctx := testContext(5)
	e := NewHerbivore(ctx.RNG, centerOf(ctx), 0, "genesis", ctx.Now, 0, 50, DefaultHerbivoreTraits())
	DeathCheck(e, ctx, "eaten")
	assert.Equal(t, "eaten", e.DeathCause)
	assert.Equal(t, 0.0, e.Energy)
}

func TestDeathCheckNoOpOnAlreadyDead(t *testing.T) {
	ctx := testContext(5)
	e := NewPlant(ctx.RNG, centerOf(ctx), 0, "genesis", ctx.Now, 50, 50, DefaultPlantTraits())
	e.IsAlive = false
	assert.False(t, DeathCheck(e, ctx, ""))
}

func TestAgeAndExposeIncrementsAgeAndSkipsDead(t *testing.T) {
	ctx := testContext(1)
	alive := NewPlant(ctx.RNG, centerOf(ctx), 0, "genesis", ctx.Now, 50, 50, DefaultPlantTraits())
	dead := NewPlant(ctx.RNG, centerOf(ctx), 0, "genesis", ctx.Now, 50, 50, DefaultPlantTraits())
	dead.IsAlive = false
	AgeAndExpose([]*Entity{alive, dead}, ctx)
	assert.Equal(t, int64(1), alive.Age)
	assert.Equal(t, int64(0), dead.Age)
}
