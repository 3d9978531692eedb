// Package store defines the persistence contract: the only I/O boundary
// the simulation core crosses. Concrete backends (see sqlitestore) satisfy
// this interface; the orchestrator never depends on a specific backend.
package store

import (
	"context"
	"time"

	"github.com/chaosgarden/ecosim/internal/census"
	"github.com/chaosgarden/ecosim/internal/climate"
	"github.com/chaosgarden/ecosim/internal/events"
	"github.com/chaosgarden/ecosim/internal/organism"
)

// GardenState is the persisted per-tick snapshot.
type GardenState struct {
	ID                string
	Tick              int64
	Timestamp         time.Time
	Environment       climate.Environment
	PopulationSummary census.Summary
}

// Store is the persistence contract the tick orchestrator exercises. Every
// method may suspend on I/O; callers pass a context so network-backed
// implementations can honor deadlines and cancellation.
type Store interface {
	GetLastCompletedTick(ctx context.Context) (int64, error)

	// TryAcquireLock is a conditional update: it returns true only if the
	// lock row was absent, expired, or already held by ownerID, and as a
	// result now holds ownerID with an expiry of now+ttl.
	TryAcquireLock(ctx context.Context, ownerID string, now time.Time, ttl time.Duration) (bool, error)
	// ReleaseLock is a no-op if another owner now holds the lock.
	ReleaseLock(ctx context.Context, ownerID string) error

	GetGardenStateByTick(ctx context.Context, tick int64) (*GardenState, error)
	GetLatestGardenState(ctx context.Context) (*GardenState, error)

	GetAllLivingEntities(ctx context.Context) ([]*organism.Entity, error)
	// GetAllDecomposableDeadEntities returns entities with IsAlive=false
	// and Energy>0.
	GetAllDecomposableDeadEntities(ctx context.Context) ([]*organism.Entity, error)

	SaveGardenState(ctx context.Context, state GardenState) (string, error)
	// SaveEntities upserts by id.
	SaveEntities(ctx context.Context, entities []*organism.Entity) error
	MarkEntitiesDead(ctx context.Context, ids []string, tick int64) error

	DeleteSimulationEventsByTick(ctx context.Context, tick int64) error
	SaveSimulationEvents(ctx context.Context, evts []events.SimulationEvent) error

	SetLastCompletedTick(ctx context.Context, tick int64) error
}
