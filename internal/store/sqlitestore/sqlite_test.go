package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaosgarden/ecosim/internal/census"
	"github.com/chaosgarden/ecosim/internal/climate"
	"github.com/chaosgarden/ecosim/internal/events"
	"github.com/chaosgarden/ecosim/internal/geo"
	"github.com/chaosgarden/ecosim/internal/organism"
	"github.com/chaosgarden/ecosim/internal/rng"
	"github.com/chaosgarden/ecosim/internal/store"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "garden.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFreshDatabaseStartsAtMinusOne(t *testing.T) {
	db := openTestDB(t)
	tick, err := db.GetLastCompletedTick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(-1), tick)
}

func TestLockAcquireReleaseRoundtrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	acquired, err := db.TryAcquireLock(ctx, "owner-a", time.Now(), time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)

	blocked, err := db.TryAcquireLock(ctx, "owner-b", time.Now(), time.Minute)
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, db.ReleaseLock(ctx, "owner-a"))

	reacquired, err := db.TryAcquireLock(ctx, "owner-b", time.Now(), time.Minute)
	require.NoError(t, err)
	assert.True(t, reacquired)
}

func TestLockExpiresAfterTTL(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	acquired, err := db.TryAcquireLock(ctx, "owner-a", past, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, acquired)

	stolen, err := db.TryAcquireLock(ctx, "owner-b", time.Now(), time.Minute)
	require.NoError(t, err)
	assert.True(t, stolen)
}

func TestSaveAndLoadGardenStateRoundtrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	state := store.GardenState{
		ID:        geo.NewEntityID(),
		Tick:      5,
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Environment: climate.Environment{
			Tick: 5, Temperature: 22.5, Sunlight: 0.7, Moisture: 0.4,
		},
		PopulationSummary: census.Summary{Plant: census.TypeCounts{Living: 10}},
	}

	_, err := db.SaveGardenState(ctx, state)
	require.NoError(t, err)

	loaded, err := db.GetGardenStateByTick(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, state.Tick, loaded.Tick)
	assert.InDelta(t, state.Environment.Temperature, loaded.Environment.Temperature, 0.0001)
	assert.Equal(t, 10, loaded.PopulationSummary.Plant.Living)
}

func TestGetGardenStateByTickMissingReturnsNil(t *testing.T) {
	db := openTestDB(t)
	loaded, err := db.GetGardenStateByTick(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSaveEntitiesAndQueryByLifeStatus(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	alive := organism.NewPlant(rng.NewSeeded(1), geo.Point{X: 1, Y: 2}, 0, "genesis", time.Now().UTC(), 50, 100, organism.DefaultPlantTraits())
	tick := int64(3)
	corpse := organism.NewHerbivore(rng.NewSeeded(1), geo.Point{X: 3, Y: 4}, 0, "genesis", time.Now().UTC(), 20, 0, organism.DefaultHerbivoreTraits())
	corpse.IsAlive = false
	corpse.DeathTick = &tick

	require.NoError(t, db.SaveEntities(ctx, []*organism.Entity{alive, corpse}))

	living, err := db.GetAllLivingEntities(ctx)
	require.NoError(t, err)
	assert.Len(t, living, 1)
	assert.Equal(t, alive.ID, living[0].ID)
	assert.Equal(t, organism.KindPlant, living[0].Kind)
	assert.IsType(t, &organism.PlantTraits{}, living[0].Traits)

	decomposable, err := db.GetAllDecomposableDeadEntities(ctx)
	require.NoError(t, err)
	assert.Len(t, decomposable, 1)
	assert.Equal(t, corpse.ID, decomposable[0].ID)
}

func TestMarkEntitiesDead(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	e := organism.NewPlant(rng.NewSeeded(1), geo.Point{X: 1, Y: 1}, 0, "genesis", time.Now().UTC(), 50, 100, organism.DefaultPlantTraits())
	require.NoError(t, db.SaveEntities(ctx, []*organism.Entity{e}))
	require.NoError(t, db.MarkEntitiesDead(ctx, []string{e.ID}, 7))

	living, err := db.GetAllLivingEntities(ctx)
	require.NoError(t, err)
	assert.Empty(t, living)
}

func TestSimulationEventsDeleteAndSave(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	evts := []events.SimulationEvent{
		{GardenStateID: "gs-1", Tick: 1, Timestamp: time.Now().UTC(), EventType: events.Birth, Description: "born", Severity: events.Low, Tags: []string{"birth"}, EntitiesAffected: []string{"e1"}},
	}
	require.NoError(t, db.SaveSimulationEvents(ctx, evts))
	require.NoError(t, db.DeleteSimulationEventsByTick(ctx, 1))
	require.NoError(t, db.SaveSimulationEvents(ctx, evts))

	var gardenStateID string
	require.NoError(t, db.conn.GetContext(ctx, &gardenStateID, `SELECT garden_state_id FROM simulation_events WHERE tick = 1`))
	assert.Equal(t, "gs-1", gardenStateID)
}

func TestSetAndGetLastCompletedTick(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.SetLastCompletedTick(ctx, 41))
	tick, err := db.GetLastCompletedTick(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(41), tick)
}
