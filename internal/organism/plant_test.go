package organism

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessPlantsGainsEnergyFromSunlight(t *testing.T) {
	ctx := testContext(1)
	p := NewPlant(ctx.RNG, centerOf(ctx), 0, "genesis", ctx.Now, 50, 90, DefaultPlantTraits())
	ProcessPlants([]*Entity{p}, ctx, 1.2, 9999)
	assert.Greater(t, p.Energy, 50.0)
}

func TestProcessPlantsReproducesAboveThreshold(t *testing.T) {
	ctx := testContext(1)
	p := NewPlant(ctx.RNG, centerOf(ctx), 0, "genesis", ctx.Now, 95, 100, PlantTraits{
		ReproductionRate: 1.0, MetabolismEfficiency: 1.0, PhotosynthesisRate: 1.0,
	})
	offspring := ProcessPlants([]*Entity{p}, ctx, 1.2, 60)
	assert.Len(t, offspring, 1)
	assert.Equal(t, p.ID, offspring[0].Lineage)
	assert.Less(t, p.Energy, 95.0)
}

func TestProcessPlantsSkipsDeadEntities(t *testing.T) {
	ctx := testContext(1)
	p := NewPlant(ctx.RNG, centerOf(ctx), 0, "genesis", ctx.Now, 50, 90, DefaultPlantTraits())
	p.IsAlive = false
	ProcessPlants([]*Entity{p}, ctx, 1.2, 9999)
	assert.Equal(t, 50.0, p.Energy)
}

func TestReproducePlantWithoutEnoughEnergyDoesNothing(t *testing.T) {
	ctx := testContext(1)
	p := NewPlant(ctx.RNG, centerOf(ctx), 0, "genesis", ctx.Now, 5, 100, DefaultPlantTraits())
	child := reproducePlant(p, ctx)
	assert.Nil(t, child)
	assert.Equal(t, 5.0, p.Energy)
}
