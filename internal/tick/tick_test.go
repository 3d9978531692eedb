package tick

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaosgarden/ecosim/internal/fertility"
	"github.com/chaosgarden/ecosim/internal/organism"
	"github.com/chaosgarden/ecosim/internal/rng"
	"github.com/chaosgarden/ecosim/internal/seed"
	"github.com/chaosgarden/ecosim/internal/simconfig"
	"github.com/chaosgarden/ecosim/internal/store/sqlitestore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSeededGarden(t *testing.T, counts seed.Counts) (*sqlitestore.DB, simconfig.Config, rng.Source) {
	t.Helper()
	db, err := sqlitestore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := simconfig.Default()
	cfg.GardenWidth, cfg.GardenHeight = 200, 200
	src := rng.NewSeeded(7)

	_, err = seed.NewGarden(context.Background(), db, cfg, counts, src, time.Now().UTC())
	require.NoError(t, err)

	return db, cfg, src
}

func TestRunSimulationTickAdvancesFromGenesis(t *testing.T) {
	db, cfg, src := newSeededGarden(t, seed.Counts{Plants: 20, Herbivores: 5, Carnivores: 2, Fungi: 3})
	fert := fertility.New(cfg.Seed, cfg.FertilityNoiseScale, cfg.FertilityEnabled)

	result, err := RunSimulationTick(context.Background(), db, testLogger(), cfg, src, fert, false)
	require.NoError(t, err)
	assert.True(t, result.Executed)
	assert.Equal(t, int64(1), result.TickNumber)

	last, err := db.GetLastCompletedTick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), last)

	state, err := db.GetGardenStateByTick(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, int64(1), state.Environment.Tick)
}

// racingStore simulates another writer committing between RunSimulationTick's
// initial read of last_completed_tick and its lock acquisition.
type racingStore struct {
	*sqlitestore.DB
	beforeLock func()
}

func (r racingStore) TryAcquireLock(ctx context.Context, ownerID string, now time.Time, ttl time.Duration) (bool, error) {
	r.beforeLock()
	return r.DB.TryAcquireLock(ctx, ownerID, now, ttl)
}

func TestRunSimulationTickSkipsWhenAlreadyProcessed(t *testing.T) {
	db, cfg, src := newSeededGarden(t, seed.Counts{Plants: 10, Herbivores: 2, Carnivores: 1, Fungi: 1})
	fert := fertility.New(cfg.Seed, cfg.FertilityNoiseScale, cfg.FertilityEnabled)
	ctx := context.Background()

	_, err := RunSimulationTick(ctx, db, testLogger(), cfg, src, fert, false)
	require.NoError(t, err)

	racing := racingStore{DB: db, beforeLock: func() {
		require.NoError(t, db.SetLastCompletedTick(ctx, 2))
	}}
	result, err := RunSimulationTick(ctx, racing, testLogger(), cfg, src, fert, false)
	require.NoError(t, err)
	assert.False(t, result.Executed)
	assert.Equal(t, "already_processed", result.SkipReason)
}

func TestRunSimulationTickSkipsOnLockContention(t *testing.T) {
	db, cfg, _ := newSeededGarden(t, seed.Counts{Plants: 5})
	ctx := context.Background()

	acquired, err := db.TryAcquireLock(ctx, "rival", time.Now(), time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	src := rng.NewSeeded(1)
	fert := fertility.New(cfg.Seed, cfg.FertilityNoiseScale, cfg.FertilityEnabled)
	result, err := RunSimulationTick(ctx, db, testLogger(), cfg, src, fert, false)
	require.NoError(t, err)
	assert.False(t, result.Executed)
	assert.Equal(t, "lock_unavailable", result.SkipReason)
}

func TestRunSimulationTickErrorsOnMissingBaseline(t *testing.T) {
	db, err := sqlitestore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := simconfig.Default()
	require.NoError(t, db.SetLastCompletedTick(context.Background(), 5))

	src := rng.NewSeeded(1)
	fert := fertility.New(cfg.Seed, cfg.FertilityNoiseScale, cfg.FertilityEnabled)
	_, err = RunSimulationTick(context.Background(), db, testLogger(), cfg, src, fert, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingBaseline))
}

func TestRunSimulationTickWithPredatorsKeepsEnergyAndPositionInBounds(t *testing.T) {
	db, cfg, src := newSeededGarden(t, seed.Counts{Plants: 30, Herbivores: 8, Carnivores: 6, Fungi: 0})
	fert := fertility.New(cfg.Seed, cfg.FertilityNoiseScale, cfg.FertilityEnabled)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		result, err := RunSimulationTick(ctx, db, testLogger(), cfg, src, fert, false)
		require.NoError(t, err)
		if !result.Executed {
			break
		}
	}

	living, err := db.GetAllLivingEntities(ctx)
	require.NoError(t, err)
	for _, e := range living {
		assert.GreaterOrEqual(t, e.Energy, 0.0)
		assert.LessOrEqual(t, e.Energy, 100.0)
		assert.LessOrEqual(t, e.Position.X, cfg.GardenWidth)
		assert.LessOrEqual(t, e.Position.Y, cfg.GardenHeight)
	}
}

func TestRunSimulationTickDecomposesCorpses(t *testing.T) {
	db, cfg, src := newSeededGarden(t, seed.Counts{Plants: 5, Herbivores: 0, Carnivores: 0, Fungi: 4})
	fert := fertility.New(cfg.Seed, cfg.FertilityNoiseScale, cfg.FertilityEnabled)
	ctx := context.Background()

	living, err := db.GetAllLivingEntities(ctx)
	require.NoError(t, err)
	var corpse *organism.Entity
	for _, e := range living {
		if e.Kind == organism.KindPlant {
			corpse = e
			break
		}
	}
	require.NotNil(t, corpse)
	corpse.IsAlive = false
	deathTick := int64(0)
	corpse.DeathTick = &deathTick
	require.NoError(t, db.SaveEntities(ctx, []*organism.Entity{corpse}))
	require.NoError(t, db.MarkEntitiesDead(ctx, []string{corpse.ID}, 0))

	for i := 0; i < 40; i++ {
		result, err := RunSimulationTick(ctx, db, testLogger(), cfg, src, fert, false)
		require.NoError(t, err)
		if !result.Executed {
			break
		}
	}

	remaining, err := db.GetAllDecomposableDeadEntities(ctx)
	require.NoError(t, err)
	for _, e := range remaining {
		assert.NotEqual(t, corpse.ID, e.ID, "corpse should eventually fully decompose")
	}
}
