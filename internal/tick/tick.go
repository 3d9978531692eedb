// Package tick implements the tick orchestrator: the single mutator of
// garden state. It owns lock acquisition, the fixed type-pass ordering,
// population/event aggregation, and the commit.
package tick

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/chaosgarden/ecosim/internal/census"
	"github.com/chaosgarden/ecosim/internal/climate"
	"github.com/chaosgarden/ecosim/internal/events"
	"github.com/chaosgarden/ecosim/internal/fertility"
	"github.com/chaosgarden/ecosim/internal/geo"
	"github.com/chaosgarden/ecosim/internal/organism"
	"github.com/chaosgarden/ecosim/internal/rng"
	"github.com/chaosgarden/ecosim/internal/simconfig"
	"github.com/chaosgarden/ecosim/internal/store"
)

// Result is the observable outcome of one runSimulationTick invocation.
type Result struct {
	Executed    bool
	TickNumber  int64
	Duration    time.Duration
	NewEntities int
	Deaths      int
	Populations census.Summary
	SkipReason  string
}

// RunSimulationTick attempts to advance the simulation by exactly one
// tick. It acquires the single-writer lock, and if successful, advances
// environment and every entity kind in the fixed order, then commits.
func RunSimulationTick(ctx context.Context, st store.Store, logger *slog.Logger, cfg simconfig.Config, src rng.Source, fert *fertility.Field, isDevelopment bool) (Result, error) {
	start := time.Now()
	ownerID := geo.NewEntityID()
	ttl := time.Duration(cfg.SimulationLockTTLMs) * time.Millisecond

	lastCompleted, err := st.GetLastCompletedTick(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("tick: get last completed tick: %w", err)
	}
	requestedTick := lastCompleted + 1

	acquired, err := st.TryAcquireLock(ctx, ownerID, start, ttl)
	if err != nil {
		return Result{}, fmt.Errorf("tick: acquire lock: %w", err)
	}
	if !acquired {
		logger.Info("tick skipped: lock unavailable")
		skipped := Result{Executed: false, SkipReason: "lock_unavailable"}
		if prev, err := st.GetGardenStateByTick(ctx, lastCompleted); err == nil && prev != nil {
			skipped.Populations = prev.PopulationSummary
		}
		return skipped, nil
	}
	defer func() {
		if err := st.ReleaseLock(context.Background(), ownerID); err != nil {
			logger.Error("failed to release lock", "error", err)
		}
	}()

	previousState, err := st.GetGardenStateByTick(ctx, lastCompleted)
	if err != nil {
		return Result{}, fmt.Errorf("tick: load previous state: %w", err)
	}
	if previousState == nil && lastCompleted >= 0 {
		return Result{}, fmt.Errorf("%w: tick %d", ErrMissingBaseline, lastCompleted)
	}

	// Re-check after acquiring the lock: another writer may have already
	// committed this tick.
	recheck, err := st.GetLastCompletedTick(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("tick: recheck last completed tick: %w", err)
	}
	if recheck >= requestedTick {
		logger.Info("tick skipped: already processed", "tick", requestedTick)
		skipped := Result{Executed: false, SkipReason: "already_processed", TickNumber: requestedTick}
		if committed, err := st.GetGardenStateByTick(ctx, recheck); err == nil && committed != nil {
			skipped.Populations = committed.PopulationSummary
		}
		return skipped, nil
	}

	result, err := runOnce(ctx, st, logger, cfg, src, fert, requestedTick, previousState)
	if err != nil {
		return Result{}, err
	}
	result.Duration = time.Since(start)

	logger.Info("tick committed",
		"tick", result.TickNumber,
		"duration", result.Duration,
		"new_entities", result.NewEntities,
		"deaths", result.Deaths,
		"total_living", humanize.Comma(int64(result.Populations.TotalLiving())),
	)
	if isDevelopment {
		logger.Debug("tick population detail",
			"plants", result.Populations.Plant.Living,
			"herbivores", result.Populations.Herbivore.Living,
			"carnivores", result.Populations.Carnivore.Living,
			"fungi", result.Populations.Fungus.Living,
		)
	}
	return result, nil
}

func runOnce(ctx context.Context, st store.Store, logger *slog.Logger, cfg simconfig.Config, src rng.Source, fert *fertility.Field, requestedTick int64, previousState *store.GardenState) (Result, error) {
	gardenStateID := geo.NewEntityID()
	buf := events.NewBuffer(requestedTick, gardenStateID)
	now := time.Now().UTC()

	var prevEnv climate.Environment
	var prevPop census.Summary
	if previousState != nil {
		prevEnv = previousState.Environment
		prevPop = previousState.PopulationSummary
	}

	envCfg := climate.EnvironmentConfig{
		TicksPerDay:                         cfg.TicksPerDay,
		TemperatureDiurnalBaseline:           cfg.TemperatureDiurnalBaseline,
		TemperatureDiurnalAmplitude:          cfg.TemperatureDiurnalAmplitude,
		WeatherTemperatureJitterRange:        cfg.WeatherTemperatureJitterRange,
		WeatherTransitionInterpolationTicks:  cfg.WeatherTransitionInterpolationTicks,
	}
	newEnv := climate.AdvanceEnvironment(src, prevEnv, requestedTick, envCfg)
	emitEnvironmentChangeEvents(buf, prevEnv, newEnv)

	mods := climate.NeutralModifiers
	if newEnv.Weather != nil {
		mods = climate.EffectiveModifiers(newEnv.Weather, cfg.WeatherTransitionInterpolationTicks)
	}

	living, err := st.GetAllLivingEntities(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("tick: load living entities: %w", err)
	}
	corpses, err := st.GetAllDecomposableDeadEntities(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("tick: load decomposable entities: %w", err)
	}

	octx := organism.Context{
		Tick:                       requestedTick,
		Now:                        now,
		RNG:                        src,
		Events:                     buf,
		GardenStateID:              gardenStateID,
		GardenWidth:                cfg.GardenWidth,
		GardenHeight:               cfg.GardenHeight,
		Environment:                newEnv,
		Modifiers:                  mods,
		Fertility:                  fert,
		MutationProbability:        cfg.MutationProbability,
		MutationRange:              cfg.MutationRange,
		BaseEnergyCostPerTick:      cfg.BaseEnergyCostPerTick,
		MovementEnergyCostPerPixel: cfg.MovementEnergyCostPerPixel,
		EnergyFromPrey:             cfg.EnergyFromPrey,
		WildFungusSpawnProbability: cfg.WildFungusSpawnProbability,
	}

	organism.AgeAndExpose(living, octx)

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("tick: cancelled before behavior passes: %w", err)
	}

	if wild := organism.MaybeSpawnWildFungus(octx); wild != nil {
		living = append(living, wild)
	}

	plants := filterKind(living, organism.KindPlant)
	herbivores := filterKind(living, organism.KindHerbivore)
	carnivores := filterKind(living, organism.KindCarnivore)
	fungi := filterKind(living, organism.KindFungus)

	plantOffspring := organism.ProcessPlants(plants, octx, cfg.BasePhotosynthesisRate, cfg.PlantReproductionThreshold)

	// ProcessHerbivores and ProcessCarnivores mutate eaten/killed targets
	// directly through the shared entity pointers; the returned id slices
	// are not used here, and deaths are found below by their DeathTick.
	herbivoreOffspring, _ := organism.ProcessHerbivores(herbivores, plants, carnivores, octx, cfg.HerbivoreReproductionThreshold)
	carnivoreOffspring, _ := organism.ProcessCarnivores(carnivores, herbivores, octx, cfg.CarnivoreReproductionThreshold)
	decompose := organism.ProcessFungi(fungi, corpses, octx, fungusReproductionThreshold)

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("tick: cancelled during behavior passes: %w", err)
	}

	allEntities := make([]*organism.Entity, 0, len(living)+len(corpses)+
		len(plantOffspring)+len(herbivoreOffspring)+len(carnivoreOffspring)+len(decompose.Offspring))
	allEntities = append(allEntities, living...)
	allEntities = append(allEntities, corpses...)
	allEntities = append(allEntities, plantOffspring...)
	allEntities = append(allEntities, herbivoreOffspring...)
	allEntities = append(allEntities, carnivoreOffspring...)
	allEntities = append(allEntities, decompose.Offspring...)

	for _, e := range allEntities {
		if e.GardenStateID == "" {
			e.GardenStateID = gardenStateID
		}
	}

	newEntities := len(plantOffspring) + len(herbivoreOffspring) + len(carnivoreOffspring) + len(decompose.Offspring)

	var newlyDeadIDs []string
	deaths := 0
	for _, e := range allEntities {
		if !e.IsAlive && e.DeathTick != nil && *e.DeathTick == requestedTick {
			newlyDeadIDs = append(newlyDeadIDs, e.ID)
			deaths++
		}
	}

	if err := validateInvariants(allEntities, cfg, requestedTick); err != nil {
		return Result{}, err
	}

	newSummary := census.Compute(allEntities, prevPop, newlyDeadIDs)
	census.EmitPopulationEvents(buf, prevPop, newSummary)

	ambientCategory := events.PickAmbientCategory(src, contextualAmbientWeights(newEnv, newSummary, cfg.TicksPerDay))
	buf.Emit(events.Ambient, events.Low, events.RenderAmbient(src, ambientCategory, string(climate.TimeOfDayForTick(requestedTick, cfg.TicksPerDay))),
		nil, []string{"ambient", string(ambientCategory)}, nil)

	newState := store.GardenState{
		ID:                gardenStateID,
		Tick:               requestedTick,
		Timestamp:          now,
		Environment:        newEnv,
		PopulationSummary:  newSummary,
	}

	if err := commit(ctx, st, newState, allEntities, newlyDeadIDs, buf.Events(), requestedTick); err != nil {
		return Result{}, err
	}

	return Result{
		Executed:    true,
		TickNumber:  requestedTick,
		NewEntities: newEntities,
		Deaths:      deaths,
		Populations: newSummary,
	}, nil
}

// commit performs step 13 as a sequence of separate store writes, not one
// transaction: defensively clear any orphaned events for this tick first,
// then write state/entities/deaths/events, and advance last_completed_tick
// last. After a mid-commit failure last_completed_tick keeps its prior
// value, so the retry targets the same tick; rows written before the
// failure stay written until that retry overwrites them.
func commit(ctx context.Context, st store.Store, state store.GardenState, entities []*organism.Entity, deadIDs []string, evts []events.SimulationEvent, tick int64) error {
	if err := st.DeleteSimulationEventsByTick(ctx, tick); err != nil {
		return fmt.Errorf("tick: commit: delete stale events: %w", err)
	}
	if _, err := st.SaveGardenState(ctx, state); err != nil {
		return fmt.Errorf("tick: commit: save garden state: %w", err)
	}
	if err := st.SaveEntities(ctx, entities); err != nil {
		return fmt.Errorf("tick: commit: save entities: %w", err)
	}
	if len(deadIDs) > 0 {
		if err := st.MarkEntitiesDead(ctx, deadIDs, tick); err != nil {
			return fmt.Errorf("tick: commit: mark entities dead: %w", err)
		}
	}
	if err := st.SaveSimulationEvents(ctx, evts); err != nil {
		return fmt.Errorf("tick: commit: save events: %w", err)
	}
	if err := st.SetLastCompletedTick(ctx, tick); err != nil {
		return fmt.Errorf("tick: commit: set last completed tick: %w", err)
	}
	return nil
}

func filterKind(entities []*organism.Entity, k organism.Kind) []*organism.Entity {
	out := make([]*organism.Entity, 0, len(entities))
	for _, e := range entities {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// fungusReproductionThreshold is not exposed in the external configuration
// surface, which covers only plant/herbivore/carnivore thresholds; fungi
// reproduce at a fixed energy floor instead.
const fungusReproductionThreshold = 65.0

func validateInvariants(entities []*organism.Entity, cfg simconfig.Config, tick int64) error {
	for _, e := range entities {
		if e.Energy < 0 || e.Energy > 100 {
			return fmt.Errorf("%w: entity %s energy %v out of [0,100] at tick %d", ErrInvariantViolation, e.ID, e.Energy, tick)
		}
		if e.Health < 0 || e.Health > 100 {
			return fmt.Errorf("%w: entity %s health %v out of [0,100] at tick %d", ErrInvariantViolation, e.ID, e.Health, tick)
		}
		if e.Position.X < 0 || e.Position.X > cfg.GardenWidth || e.Position.Y < 0 || e.Position.Y > cfg.GardenHeight {
			return fmt.Errorf("%w: entity %s position %+v out of garden bounds at tick %d", ErrInvariantViolation, e.ID, e.Position, tick)
		}
		if e.IsAlive && (e.BornAtTick > tick) {
			return fmt.Errorf("%w: entity %s bornAtTick %d after current tick %d", ErrInvariantViolation, e.ID, e.BornAtTick, tick)
		}
	}
	return nil
}

func emitEnvironmentChangeEvents(buf *events.Buffer, prev, next climate.Environment) {
	crossedDown := func(prevV, nextV, threshold float64) bool { return prevV >= threshold && nextV < threshold }
	crossedUp := func(prevV, nextV, threshold float64) bool { return prevV < threshold && nextV >= threshold }

	if crossedDown(prev.Moisture, next.Moisture, 0.2) {
		buf.Emit(events.EnvironmentChange, events.Medium, "the garden slides into drought", nil, []string{"atmosphere", "environment"}, nil)
	}
	if crossedUp(prev.Moisture, next.Moisture, 0.8) {
		buf.Emit(events.EnvironmentChange, events.Medium, "heavy rain soaks the garden", nil, []string{"atmosphere", "environment"}, nil)
	}
	if crossedUp(prev.Temperature, next.Temperature, 35) {
		buf.Emit(events.EnvironmentChange, events.High, "a heat wave settles over the garden", nil, []string{"atmosphere", "environment"}, nil)
	}
	if crossedDown(prev.Temperature, next.Temperature, 5) {
		buf.Emit(events.EnvironmentChange, events.High, "a hard freeze grips the garden", nil, []string{"atmosphere", "environment"}, nil)
	}
}

func contextualAmbientWeights(env climate.Environment, pop census.Summary, ticksPerDay int) events.AmbientWeights {
	w := events.DefaultAmbientWeights()
	tod := climate.TimeOfDayForTick(env.Tick, ticksPerDay)
	if tod == climate.Dawn || tod == climate.Dusk {
		w[events.CategoryTimeOfDay] += 1.5
	}
	if env.Weather != nil && (env.Weather.CurrentState == climate.Storm || env.Weather.CurrentState == climate.Drought) {
		w[events.CategoryWeather] += 1.5
	}
	total := pop.TotalLiving()
	if total > 0 && total < 10 {
		w[events.CategoryTension] += 1.0
	}
	if pop.Carnivore.Living > 0 && pop.Herbivore.Living > 0 {
		ratio := float64(pop.Carnivore.Living) / float64(pop.Herbivore.Living)
		if ratio > 0.5 {
			w[events.CategoryTension] += 1.0
			w[events.CategoryInterspecies] += 1.0
		}
	}
	return w
}

