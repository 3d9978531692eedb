// Package simconfig holds the tunable constants of the simulation and the
// environment-variable overrides recognized at process start.
package simconfig

import (
	"fmt"
	"os"
	"strconv"
)

// Config collects every recognized configuration key. Field defaults match
// the values suggested where the domain left them open.
type Config struct {
	GardenWidth  float64
	GardenHeight float64
	TicksPerDay  int

	BasePhotosynthesisRate          float64
	PlantReproductionThreshold      float64
	HerbivoreReproductionThreshold  float64
	CarnivoreReproductionThreshold  float64

	MutationProbability float64
	MutationRange        float64

	MovementEnergyCostPerPixel float64
	BaseEnergyCostPerTick      float64

	WildFungusSpawnProbability          float64
	WeatherTransitionInterpolationTicks int
	TemperatureDiurnalBaseline          float64
	TemperatureDiurnalAmplitude         float64
	WeatherTemperatureJitterRange       float64

	SimulationLockTTLMs int64

	Seed int64

	// EnergyFromPrey is the energy a carnivore gains per kill. It defaults to
	// 30 and can be overridden with CHAOSGARDEN_ENERGY_FROM_PREY.
	EnergyFromPrey float64

	FertilityEnabled   bool
	FertilityNoiseScale float64
}

// Default returns the configuration with every suggested default applied.
func Default() Config {
	return Config{
		GardenWidth:  800,
		GardenHeight: 600,
		TicksPerDay:  96,

		BasePhotosynthesisRate:         1.2,
		PlantReproductionThreshold:     60,
		HerbivoreReproductionThreshold: 70,
		CarnivoreReproductionThreshold: 75,

		MutationProbability: 0.1,
		MutationRange:       0.2,

		MovementEnergyCostPerPixel: 0.02,
		BaseEnergyCostPerTick:      0.3,

		WildFungusSpawnProbability:          0.006,
		WeatherTransitionInterpolationTicks: 8,
		TemperatureDiurnalBaseline:          20,
		TemperatureDiurnalAmplitude:         8,
		WeatherTemperatureJitterRange:       0.4,

		SimulationLockTTLMs: 120_000,

		Seed: 0,

		EnergyFromPrey: 30,

		FertilityEnabled:    false,
		FertilityNoiseScale: 0.01,
	}
}

// FromEnv starts from Default and applies CHAOSGARDEN_* overrides.
func FromEnv() (Config, error) {
	cfg := Default()

	floatVar(&cfg.GardenWidth, "CHAOSGARDEN_GARDEN_WIDTH")
	floatVar(&cfg.GardenHeight, "CHAOSGARDEN_GARDEN_HEIGHT")
	intVar(&cfg.TicksPerDay, "CHAOSGARDEN_TICKS_PER_DAY")
	floatVar(&cfg.BasePhotosynthesisRate, "CHAOSGARDEN_BASE_PHOTOSYNTHESIS_RATE")
	floatVar(&cfg.PlantReproductionThreshold, "CHAOSGARDEN_PLANT_REPRODUCTION_THRESHOLD")
	floatVar(&cfg.HerbivoreReproductionThreshold, "CHAOSGARDEN_HERBIVORE_REPRODUCTION_THRESHOLD")
	floatVar(&cfg.CarnivoreReproductionThreshold, "CHAOSGARDEN_CARNIVORE_REPRODUCTION_THRESHOLD")
	floatVar(&cfg.MutationProbability, "CHAOSGARDEN_MUTATION_PROBABILITY")
	floatVar(&cfg.MutationRange, "CHAOSGARDEN_MUTATION_RANGE")
	floatVar(&cfg.MovementEnergyCostPerPixel, "CHAOSGARDEN_MOVEMENT_ENERGY_COST_PER_PIXEL")
	floatVar(&cfg.BaseEnergyCostPerTick, "CHAOSGARDEN_BASE_ENERGY_COST_PER_TICK")
	floatVar(&cfg.WildFungusSpawnProbability, "CHAOSGARDEN_WILD_FUNGUS_SPAWN_PROBABILITY")
	intVar(&cfg.WeatherTransitionInterpolationTicks, "CHAOSGARDEN_WEATHER_TRANSITION_INTERPOLATION_TICKS")
	floatVar(&cfg.TemperatureDiurnalBaseline, "CHAOSGARDEN_TEMPERATURE_DIURNAL_BASELINE")
	floatVar(&cfg.TemperatureDiurnalAmplitude, "CHAOSGARDEN_TEMPERATURE_DIURNAL_AMPLITUDE")
	floatVar(&cfg.WeatherTemperatureJitterRange, "CHAOSGARDEN_WEATHER_TEMPERATURE_JITTER_RANGE")
	int64Var(&cfg.SimulationLockTTLMs, "CHAOSGARDEN_SIMULATION_LOCK_TTL_MS")
	int64Var(&cfg.Seed, "CHAOSGARDEN_SEED")
	floatVar(&cfg.EnergyFromPrey, "CHAOSGARDEN_ENERGY_FROM_PREY")
	floatVar(&cfg.FertilityNoiseScale, "CHAOSGARDEN_FERTILITY_NOISE_SCALE")
	if v := os.Getenv("CHAOSGARDEN_FERTILITY_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("parsing CHAOSGARDEN_FERTILITY_ENABLED: %w", err)
		}
		cfg.FertilityEnabled = b
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations that would make the engine's invariants
// impossible to maintain.
func (c Config) Validate() error {
	if c.GardenWidth <= 0 || c.GardenHeight <= 0 {
		return fmt.Errorf("simconfig: garden dimensions must be positive, got %vx%v", c.GardenWidth, c.GardenHeight)
	}
	if c.TicksPerDay <= 0 {
		return fmt.Errorf("simconfig: ticksPerDay must be positive, got %d", c.TicksPerDay)
	}
	if c.MutationProbability < 0 || c.MutationProbability > 1 {
		return fmt.Errorf("simconfig: mutationProbability must be in [0,1], got %v", c.MutationProbability)
	}
	if c.WildFungusSpawnProbability < 0 || c.WildFungusSpawnProbability > 1 {
		return fmt.Errorf("simconfig: wildFungusSpawnProbability must be in [0,1], got %v", c.WildFungusSpawnProbability)
	}
	if c.WeatherTransitionInterpolationTicks < 0 {
		return fmt.Errorf("simconfig: weatherTransitionInterpolationTicks must be >= 0, got %d", c.WeatherTransitionInterpolationTicks)
	}
	if c.SimulationLockTTLMs <= 0 {
		return fmt.Errorf("simconfig: simulationLockTtlMs must be positive, got %d", c.SimulationLockTTLMs)
	}
	return nil
}

func floatVar(dst *float64, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = f
	}
}

func intVar(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func int64Var(dst *int64, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		*dst = n
	}
}
