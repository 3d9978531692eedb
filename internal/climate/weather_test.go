package climate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chaosgarden/ecosim/internal/rng"
)

func TestEnterStateSamplesWithinDurationBounds(t *testing.T) {
	src := rng.NewSeeded(1)
	def := catalog[Storm]
	for i := 0; i < 200; i++ {
		s := EnterState(src, Storm, 0)
		assert.GreaterOrEqual(t, s.PlannedDurationTicks, def.minDuration)
		assert.LessOrEqual(t, s.PlannedDurationTicks, def.maxDuration)
	}
}

func TestAdvanceWeatherHoldsUntilPlannedDurationElapses(t *testing.T) {
	src := rng.NewSeeded(2)
	s := ActiveState{CurrentState: Clear, StateEnteredAtTick: 0, PlannedDurationTicks: 10}
	next := AdvanceWeather(src, s, 5, 8)
	assert.Equal(t, Clear, next.CurrentState)
	assert.Equal(t, int64(0), next.StateEnteredAtTick)
}

func TestAdvanceWeatherTransitionsAfterPlannedDuration(t *testing.T) {
	src := rng.NewSeeded(2)
	s := ActiveState{CurrentState: Clear, StateEnteredAtTick: 0, PlannedDurationTicks: 10}
	next := AdvanceWeather(src, s, 10, 8)
	assert.Equal(t, int64(10), next.StateEnteredAtTick)
	assert.NotNil(t, next.PreviousState)
	assert.Equal(t, Clear, *next.PreviousState)
}

func TestEffectiveModifiersNoTransitionReturnsCurrent(t *testing.T) {
	s := ActiveState{CurrentState: Storm}
	mods := EffectiveModifiers(&s, 8)
	assert.Equal(t, catalog[Storm].modifiers, mods)
}

func TestEffectiveModifiersInterpolatesDuringTransition(t *testing.T) {
	prev := Clear
	s := ActiveState{CurrentState: Storm, PreviousState: &prev, TransitionProgressTicks: 4}
	mods := EffectiveModifiers(&s, 8)
	clearMods := catalog[Clear].modifiers
	stormMods := catalog[Storm].modifiers
	assert.InDelta(t, (clearMods.TemperatureOffset+stormMods.TemperatureOffset)/2, mods.TemperatureOffset, 0.001)
}

func TestEffectiveModifiersNilStateIsNeutral(t *testing.T) {
	assert.Equal(t, NeutralModifiers, EffectiveModifiers(nil, 8))
}

func TestPickNextStateUnknownFallsBackToClear(t *testing.T) {
	src := rng.NewSeeded(1)
	assert.Equal(t, Clear, pickNextState(src, WeatherKind("NONEXISTENT")))
}
