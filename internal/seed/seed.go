// Package seed builds the initial GardenState and entity population for a
// garden that has never run a tick.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/chaosgarden/ecosim/internal/census"
	"github.com/chaosgarden/ecosim/internal/climate"
	"github.com/chaosgarden/ecosim/internal/geo"
	"github.com/chaosgarden/ecosim/internal/organism"
	"github.com/chaosgarden/ecosim/internal/rng"
	"github.com/chaosgarden/ecosim/internal/simconfig"
	"github.com/chaosgarden/ecosim/internal/store"
)

// Counts controls how many of each kind to scatter across the garden at
// tick 0.
type Counts struct {
	Plants     int
	Herbivores int
	Carnivores int
	Fungi      int
}

// DefaultCounts is a reasonable starting population for the default garden
// dimensions.
func DefaultCounts() Counts {
	return Counts{Plants: 120, Herbivores: 30, Carnivores: 8, Fungi: 10}
}

// NewGarden builds a fresh GardenState and its entity population at tick 0,
// and persists both as the simulation's baseline. Callers must not invoke
// this on a garden that already has a completed tick.
func NewGarden(ctx context.Context, st store.Store, cfg simconfig.Config, counts Counts, src rng.Source, now time.Time) (store.GardenState, error) {
	gardenStateID := geo.NewEntityID()

	weather := climate.EnterState(src, climate.Clear, 0)
	env := climate.Environment{
		Tick:        0,
		Temperature: cfg.TemperatureDiurnalBaseline,
		Sunlight:    climate.SunlightForTick(0, cfg.TicksPerDay),
		Moisture:    0.5,
		Weather:     &weather,
	}

	var entities []*organism.Entity
	for i := 0; i < counts.Plants; i++ {
		pos := geo.RandomPositionInGarden(src, cfg.GardenWidth, cfg.GardenHeight)
		e := organism.NewPlant(src, pos, 0, "genesis", now, 60, 100, organism.DefaultPlantTraits())
		e.GardenStateID = gardenStateID
		entities = append(entities, e)
	}
	for i := 0; i < counts.Herbivores; i++ {
		pos := geo.RandomPositionInGarden(src, cfg.GardenWidth, cfg.GardenHeight)
		e := organism.NewHerbivore(src, pos, 0, "genesis", now, 70, 100, organism.DefaultHerbivoreTraits())
		e.GardenStateID = gardenStateID
		entities = append(entities, e)
	}
	for i := 0; i < counts.Carnivores; i++ {
		pos := geo.RandomPositionInGarden(src, cfg.GardenWidth, cfg.GardenHeight)
		e := organism.NewCarnivore(src, pos, 0, "genesis", now, 75, 100, organism.DefaultCarnivoreTraits())
		e.GardenStateID = gardenStateID
		entities = append(entities, e)
	}
	for i := 0; i < counts.Fungi; i++ {
		pos := geo.RandomPositionInGarden(src, cfg.GardenWidth, cfg.GardenHeight)
		e := organism.NewFungus(src, pos, 0, "genesis", now, 50, 100, organism.DefaultFungusTraits())
		e.GardenStateID = gardenStateID
		entities = append(entities, e)
	}

	summary := census.Compute(entities, census.Summary{}, nil)

	state := store.GardenState{
		ID:                gardenStateID,
		Tick:               0,
		Timestamp:          now,
		Environment:        env,
		PopulationSummary:  summary,
	}

	if _, err := st.SaveGardenState(ctx, state); err != nil {
		return store.GardenState{}, fmt.Errorf("seed: save garden state: %w", err)
	}
	if err := st.SaveEntities(ctx, entities); err != nil {
		return store.GardenState{}, fmt.Errorf("seed: save entities: %w", err)
	}
	if err := st.SetLastCompletedTick(ctx, 0); err != nil {
		return store.GardenState{}, fmt.Errorf("seed: set last completed tick: %w", err)
	}

	return state, nil
}
