package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chaosgarden/ecosim/internal/rng"
)

func TestDistance(t *testing.T) {
	assert.Equal(t, 5.0, Distance(Point{0, 0}, Point{3, 4}))
	assert.Equal(t, 0.0, Distance(Point{1, 1}, Point{1, 1}))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-5, 0, 10))
	assert.Equal(t, 10.0, Clamp(15, 0, 10))
	assert.Equal(t, 5.0, Clamp(5, 0, 10))
}

func TestClampPoint(t *testing.T) {
	p := ClampPoint(Point{X: -10, Y: 900}, 800, 600)
	assert.Equal(t, Point{X: 0, Y: 600}, p)
}

func TestPickRandomEmpty(t *testing.T) {
	src := rng.NewSeeded(1)
	_, ok := PickRandom(src, []int{})
	assert.False(t, ok)
}

func TestPickRandomDeterministic(t *testing.T) {
	seq := []string{"a", "b", "c", "d"}
	a := rng.NewSeeded(7)
	b := rng.NewSeeded(7)
	v1, ok1 := PickRandom(a, seq)
	v2, ok2 := PickRandom(b, seq)
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, v1, v2)
}

func TestPickWeightedRandomAllZero(t *testing.T) {
	src := rng.NewSeeded(3)
	items := []Weighted[string]{{"a", 0}, {"b", 0}}
	_, ok := PickWeightedRandom(src, items)
	assert.False(t, ok)
}

func TestPickWeightedRandomDistribution(t *testing.T) {
	src := rng.NewSeeded(99)
	items := []Weighted[string]{{"rare", 1}, {"common", 99}}
	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		v, ok := PickWeightedRandom(src, items)
		assert.True(t, ok)
		counts[v]++
	}
	assert.Greater(t, counts["common"], counts["rare"]*10)
}

func TestRandomPositionInGardenBounds(t *testing.T) {
	src := rng.NewSeeded(11)
	for i := 0; i < 200; i++ {
		p := RandomPositionInGarden(src, 800, 600)
		assert.GreaterOrEqual(t, p.X, 0.0)
		assert.LessOrEqual(t, p.X, 800.0)
		assert.GreaterOrEqual(t, p.Y, 0.0)
		assert.LessOrEqual(t, p.Y, 600.0)
	}
}

func TestPositionNearParentWithinRadiusOrClamped(t *testing.T) {
	src := rng.NewSeeded(5)
	parent := Point{X: 400, Y: 300}
	for i := 0; i < 200; i++ {
		p := PositionNearParent(src, parent, 40, 800, 600)
		d := Distance(parent, p)
		assert.True(t, d <= 40.0001 || p.X == 0 || p.X == 800 || p.Y == 0 || p.Y == 600)
	}
}

func TestApplyMutationWithinRange(t *testing.T) {
	src := rng.NewSeeded(42)
	for i := 0; i < 500; i++ {
		v := ApplyMutation(src, 10, 0.2)
		assert.GreaterOrEqual(t, v, 10*0.8)
		assert.LessOrEqual(t, v, 10*1.2)
	}
}

func TestNewEntityIDUnique(t *testing.T) {
	a := NewEntityID()
	b := NewEntityID()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}
