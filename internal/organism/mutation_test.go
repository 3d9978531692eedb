package organism

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chaosgarden/ecosim/internal/rng"
)

func TestMutateFieldNeverMutatesAtZeroProbability(t *testing.T) {
	src := rng.NewSeeded(1)
	v, m := mutateField(src, 0, 0.5, "x", 10)
	assert.Equal(t, 10.0, v)
	assert.Nil(t, m)
}

func TestMutateFieldAlwaysMutatesAtFullProbability(t *testing.T) {
	src := rng.NewSeeded(1)
	changed := false
	for i := 0; i < 50; i++ {
		v, _ := mutateField(src, 1, 0.5, "x", 10)
		if v != 10 {
			changed = true
		}
	}
	assert.True(t, changed)
}

func TestMutateFieldSuppressesNoiseBelowOnePercent(t *testing.T) {
	src := rng.NewSeeded(1)
	_, m := mutateField(src, 1, 0.001, "x", 10)
	assert.Nil(t, m)
}

func TestMutatePlantTraitsPreservesUnmutatedShape(t *testing.T) {
	src := rng.NewSeeded(3)
	parent := DefaultPlantTraits()
	child, _ := MutatePlantTraits(src, 0, 0.2, parent)
	assert.Equal(t, parent, child)
}

func TestMutateHerbivoreTraitsReportsMutations(t *testing.T) {
	src := rng.NewSeeded(9)
	parent := DefaultHerbivoreTraits()
	_, muts := MutateHerbivoreTraits(src, 1, 0.5, parent)
	assert.NotEmpty(t, muts)
	for _, m := range muts {
		assert.NotEmpty(t, m.Field)
	}
}
