package climate

import (
	"math"

	"github.com/chaosgarden/ecosim/internal/geo"
	"github.com/chaosgarden/ecosim/internal/rng"
)

// TimeOfDay buckets a tick's position within the diurnal cycle.
type TimeOfDay string

const (
	Night TimeOfDay = "night"
	Dawn  TimeOfDay = "dawn"
	Day   TimeOfDay = "day"
	Dusk  TimeOfDay = "dusk"
)

const (
	maxSunlightEvaporationPerTick  = 0.01
	maxLowLightCondensationPerTick = 0.008
	moistureTemperatureFeedback    = 6.0
	sunlightEvaporationThreshold   = 0.55
	sunlightCondensationThreshold  = 0.35
)

// Environment mirrors the persisted Environment shape.
type Environment struct {
	Tick        int64        `json:"tick"`
	Temperature float64      `json:"temperature"`
	Sunlight    float64      `json:"sunlight"`
	Moisture    float64      `json:"moisture"`
	Weather     *ActiveState `json:"weatherState,omitempty"`
}

// SunlightForTick returns the normalized [0,1] sunlight curve for tick,
// with tick 0 at the bottom and ticksPerDay/2 at the peak.
func SunlightForTick(tick int64, ticksPerDay int) float64 {
	phase := float64(tick%int64(ticksPerDay)) / float64(ticksPerDay)
	// cos(2*pi*phase - pi) is -1 at phase 0, +1 at phase 0.5.
	raw := -math.Cos(2 * math.Pi * phase)
	return geo.Clamp((raw+1)/2, 0, 1)
}

// TimeOfDayForTick classifies tick's position in the diurnal cycle.
func TimeOfDayForTick(tick int64, ticksPerDay int) TimeOfDay {
	norm := float64(tick%int64(ticksPerDay)) / float64(ticksPerDay)
	switch {
	case norm < 0.125 || norm >= 0.875:
		return Night
	case norm < 0.375:
		return Dawn
	case norm < 0.625:
		return Day
	default:
		return Dusk
	}
}

// AdvanceEnvironment computes the next Environment from prev at tick,
// applying the diurnal baseline, active weather modifiers, and the
// evaporation / condensation / moisture-temperature-feedback physics.
func AdvanceEnvironment(src rng.Source, prev Environment, tick int64, cfg EnvironmentConfig) Environment {
	baseSunlight := SunlightForTick(tick, cfg.TicksPerDay) // [0,1]

	diurnalPhase := float64(tick%int64(cfg.TicksPerDay)) / float64(cfg.TicksPerDay)
	diurnalTemp := cfg.TemperatureDiurnalBaseline + cfg.TemperatureDiurnalAmplitude*math.Sin(2*math.Pi*(diurnalPhase-0.25))
	jitter := geo.RandomInRange(src, -cfg.WeatherTemperatureJitterRange, cfg.WeatherTemperatureJitterRange)
	baseTemp := prev.Temperature*0.95 + (diurnalTemp+jitter)*0.05

	var weather *ActiveState
	if prev.Weather != nil {
		next := AdvanceWeather(src, *prev.Weather, tick, cfg.WeatherTransitionInterpolationTicks)
		weather = &next
	} else {
		fresh := EnterState(src, Clear, tick)
		weather = &fresh
	}
	mods := EffectiveModifiers(weather, cfg.WeatherTransitionInterpolationTicks)

	sunlight := geo.Clamp(baseSunlight*mods.SunlightMultiplier, 0, 1)
	temperature := baseTemp + mods.TemperatureOffset

	moisture := prev.Moisture + mods.MoistureChangePerTick
	moistureBefore := moisture

	if baseSunlight > sunlightEvaporationThreshold {
		excess := (baseSunlight - sunlightEvaporationThreshold) / (1 - sunlightEvaporationThreshold)
		moisture -= maxSunlightEvaporationPerTick * excess
	}
	if baseSunlight < sunlightCondensationThreshold {
		deficit := (sunlightCondensationThreshold - baseSunlight) / sunlightCondensationThreshold
		moisture += maxLowLightCondensationPerTick * deficit
	}
	moisture = geo.Clamp(moisture, 0, 1)

	moistureDelta := moisture - moistureBefore
	temperature += -moistureDelta * moistureTemperatureFeedback
	temperature = geo.Clamp(temperature, 0, 40)

	return Environment{
		Tick:        tick,
		Temperature: temperature,
		Sunlight:    sunlight,
		Moisture:    moisture,
		Weather:     weather,
	}
}

// EnvironmentConfig is the subset of simconfig.Config the environment model
// consults. Kept separate so this package does not import simconfig and
// create a dependency cycle with callers that need both.
type EnvironmentConfig struct {
	TicksPerDay                         int
	TemperatureDiurnalBaseline          float64
	TemperatureDiurnalAmplitude         float64
	WeatherTemperatureJitterRange       float64
	WeatherTransitionInterpolationTicks int
}

// MoistureGrowthMultiplier is linear, peaking at m=0.5 with value 1.5 and
// falling to 0.5 at the extremes.
func MoistureGrowthMultiplier(m float64) float64 {
	if m <= 0.5 {
		return 0.5 + m*2
	}
	return 1.5 - (m-0.5)*2
}

// TemperatureMetabolismMultiplier scales herbivore/carnivore base
// metabolism by how far temperature sits from the comfortable band.
func TemperatureMetabolismMultiplier(temp float64) float64 {
	deviation := math.Abs(temp - 20)
	return 1 + deviation*0.01
}
