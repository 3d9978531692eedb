// Package climate implements the environment model (sunlight, temperature,
// moisture) and the weighted-Markov weather state machine that modifies it.
package climate

import (
	"github.com/chaosgarden/ecosim/internal/geo"
	"github.com/chaosgarden/ecosim/internal/rng"
)

// WeatherKind is one of the fixed weather states.
type WeatherKind string

const (
	Clear    WeatherKind = "CLEAR"
	Overcast WeatherKind = "OVERCAST"
	Rain     WeatherKind = "RAIN"
	Storm    WeatherKind = "STORM"
	Fog      WeatherKind = "FOG"
	Drought  WeatherKind = "DROUGHT"
)

// Modifiers is the six-scalar bundle a weather state applies to the
// baseline environment and to behavior.
type Modifiers struct {
	TemperatureOffset     float64
	SunlightMultiplier    float64
	MoistureChangePerTick float64
	PhotosynthesisModifier float64
	MovementModifier      float64
	ReproductionModifier  float64
}

// NeutralModifiers is used for legacy/missing weather states.
var NeutralModifiers = Modifiers{
	TemperatureOffset:      0,
	SunlightMultiplier:     1,
	MoistureChangePerTick:  0,
	PhotosynthesisModifier: 1,
	MovementModifier:       1,
	ReproductionModifier:   1,
}

// transition is one weighted edge out of a weather state.
type transition struct {
	target WeatherKind
	weight float64
}

// stateDef is the static definition of one weather state.
type stateDef struct {
	modifiers   Modifiers
	minDuration int
	maxDuration int
	transitions []transition
}

// catalog is the fixed set of weather states and their transition weights.
var catalog = map[WeatherKind]stateDef{
	Clear: {
		modifiers:   Modifiers{0, 1.0, -0.01, 1.1, 1.0, 1.05},
		minDuration: 8, maxDuration: 40,
		transitions: []transition{
			{Clear, 30}, {Overcast, 25}, {Rain, 10}, {Fog, 10}, {Drought, 5},
		},
	},
	Overcast: {
		modifiers:   Modifiers{-1, 0.7, 0.0, 0.9, 1.0, 1.0},
		minDuration: 6, maxDuration: 24,
		transitions: []transition{
			{Overcast, 20}, {Clear, 25}, {Rain, 25}, {Storm, 10}, {Fog, 10},
		},
	},
	Rain: {
		modifiers:   Modifiers{-2, 0.4, 0.04, 0.7, 0.8, 0.95},
		minDuration: 4, maxDuration: 16,
		transitions: []transition{
			{Rain, 20}, {Overcast, 30}, {Storm, 15}, {Clear, 15},
		},
	},
	Storm: {
		modifiers:   Modifiers{-4, 0.2, 0.08, 0.5, 0.5, 0.6},
		minDuration: 2, maxDuration: 8,
		transitions: []transition{
			{Storm, 10}, {Rain, 40}, {Overcast, 30},
		},
	},
	Fog: {
		modifiers:   Modifiers{-1, 0.5, 0.01, 0.8, 0.6, 0.9},
		minDuration: 3, maxDuration: 12,
		transitions: []transition{
			{Fog, 15}, {Overcast, 35}, {Clear, 30},
		},
	},
	Drought: {
		modifiers:   Modifiers{3, 1.2, -0.03, 0.6, 1.0, 0.5},
		minDuration: 10, maxDuration: 48,
		transitions: []transition{
			{Drought, 20}, {Clear, 40}, {Overcast, 15},
		},
	},
}

// ActiveState mirrors the persisted ActiveWeatherState shape.
type ActiveState struct {
	CurrentState           WeatherKind  `json:"currentState"`
	StateEnteredAtTick     int64        `json:"stateEnteredAtTick"`
	PlannedDurationTicks   int          `json:"plannedDurationTicks"`
	PreviousState          *WeatherKind `json:"previousState,omitempty"`
	TransitionProgressTicks int        `json:"transitionProgressTicks"`
}

// EnterState returns a fresh ActiveState for kind entered at tick, sampling
// its planned duration.
func EnterState(src rng.Source, kind WeatherKind, tick int64) ActiveState {
	def := catalog[kind]
	span := def.maxDuration - def.minDuration
	duration := def.minDuration
	if span > 0 {
		duration += src.IntN(span + 1)
	}
	return ActiveState{
		CurrentState:         kind,
		StateEnteredAtTick:   tick,
		PlannedDurationTicks: duration,
	}
}

// AdvanceWeather applies the weather transition contract for tick,
// returning the next ActiveState.
func AdvanceWeather(src rng.Source, s ActiveState, tick int64, interpolationTicks int) ActiveState {
	elapsed := tick - s.StateEnteredAtTick
	if elapsed >= int64(s.PlannedDurationTicks) {
		next := pickNextState(src, s.CurrentState)
		prev := s.CurrentState
		fresh := EnterState(src, next, tick)
		fresh.PreviousState = &prev
		fresh.TransitionProgressTicks = 0
		return fresh
	}
	if s.PreviousState != nil && s.TransitionProgressTicks < interpolationTicks {
		s.TransitionProgressTicks++
	}
	return s
}

func pickNextState(src rng.Source, current WeatherKind) WeatherKind {
	def, ok := catalog[current]
	if !ok || len(def.transitions) == 0 {
		return Clear
	}
	items := make([]geo.Weighted[WeatherKind], 0, len(def.transitions))
	for _, t := range def.transitions {
		items = append(items, geo.Weighted[WeatherKind]{Value: t.target, Weight: t.weight})
	}
	picked, ok := geo.PickWeightedRandom(src, items)
	if !ok {
		return Clear
	}
	return picked
}

// EffectiveModifiers returns the modifiers in effect for s, interpolating
// between the previous and current state's modifiers during a transition.
func EffectiveModifiers(s *ActiveState, interpolationTicks int) Modifiers {
	if s == nil {
		return NeutralModifiers
	}
	current := catalog[s.CurrentState].modifiers
	if s.PreviousState == nil || interpolationTicks <= 0 {
		return current
	}
	prev := catalog[*s.PreviousState].modifiers
	t := float64(s.TransitionProgressTicks) / float64(interpolationTicks)
	if t > 1 {
		t = 1
	}
	return lerpModifiers(prev, current, t)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func lerpModifiers(a, b Modifiers, t float64) Modifiers {
	return Modifiers{
		TemperatureOffset:      lerp(a.TemperatureOffset, b.TemperatureOffset, t),
		SunlightMultiplier:     lerp(a.SunlightMultiplier, b.SunlightMultiplier, t),
		MoistureChangePerTick:  lerp(a.MoistureChangePerTick, b.MoistureChangePerTick, t),
		PhotosynthesisModifier: lerp(a.PhotosynthesisModifier, b.PhotosynthesisModifier, t),
		MovementModifier:       lerp(a.MovementModifier, b.MovementModifier, t),
		ReproductionModifier:   lerp(a.ReproductionModifier, b.ReproductionModifier, t),
	}
}
