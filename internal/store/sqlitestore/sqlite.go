// Package sqlitestore is the SQLite-backed implementation of the
// persistence contract (store.Store), adapted from the donor codebase's
// own sqlx + modernc.org/sqlite persistence layer.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/chaosgarden/ecosim/internal/census"
	"github.com/chaosgarden/ecosim/internal/climate"
	"github.com/chaosgarden/ecosim/internal/events"
	"github.com/chaosgarden/ecosim/internal/geo"
	"github.com/chaosgarden/ecosim/internal/organism"
	"github.com/chaosgarden/ecosim/internal/store"
)

// DB wraps a SQLite connection implementing store.Store.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlitestore: migrate: %w", err)
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS garden_state (
		id TEXT PRIMARY KEY,
		tick INTEGER NOT NULL UNIQUE,
		timestamp TEXT NOT NULL,
		environment_json TEXT NOT NULL,
		population_summary_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entities (
		id TEXT PRIMARY KEY,
		garden_state_id TEXT NOT NULL,
		born_at_tick INTEGER NOT NULL,
		death_tick INTEGER,
		is_alive INTEGER NOT NULL,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		species TEXT NOT NULL,
		position_x REAL NOT NULL,
		position_y REAL NOT NULL,
		energy REAL NOT NULL,
		health REAL NOT NULL,
		age INTEGER NOT NULL,
		traits_json TEXT NOT NULL,
		lineage TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS simulation_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		garden_state_id TEXT,
		tick INTEGER NOT NULL,
		timestamp TEXT NOT NULL,
		event_type TEXT NOT NULL,
		description TEXT NOT NULL,
		entities_affected_json TEXT NOT NULL,
		tags_json TEXT NOT NULL,
		severity TEXT NOT NULL,
		metadata_json TEXT
	);

	CREATE TABLE IF NOT EXISTS simulation_control (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		last_completed_tick INTEGER NOT NULL DEFAULT -1,
		lock_owner TEXT,
		lock_expires_at TEXT
	);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}
	_, err := db.conn.Exec(`INSERT OR IGNORE INTO simulation_control (id, last_completed_tick) VALUES (1, -1)`)
	return err
}

func (db *DB) GetLastCompletedTick(ctx context.Context) (int64, error) {
	var tick int64
	err := db.conn.GetContext(ctx, &tick, `SELECT last_completed_tick FROM simulation_control WHERE id = 1`)
	if err != nil {
		return 0, fmt.Errorf("sqlitestore: get last completed tick: %w", err)
	}
	return tick, nil
}

func (db *DB) TryAcquireLock(ctx context.Context, ownerID string, now time.Time, ttl time.Duration) (bool, error) {
	expires := now.Add(ttl).UTC()
	res, err := db.conn.ExecContext(ctx, `
		UPDATE simulation_control
		SET lock_owner = ?, lock_expires_at = ?
		WHERE id = 1 AND (lock_owner IS NULL OR lock_expires_at < ? OR lock_owner = ?)
	`, ownerID, expires.Format(time.RFC3339Nano), now.UTC().Format(time.RFC3339Nano), ownerID)
	if err != nil {
		return false, fmt.Errorf("sqlitestore: try acquire lock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlitestore: try acquire lock rows affected: %w", err)
	}
	return n > 0, nil
}

func (db *DB) ReleaseLock(ctx context.Context, ownerID string) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE simulation_control SET lock_owner = NULL, lock_expires_at = NULL
		WHERE id = 1 AND lock_owner = ?
	`, ownerID)
	if err != nil {
		return fmt.Errorf("sqlitestore: release lock: %w", err)
	}
	return nil
}

func (db *DB) GetGardenStateByTick(ctx context.Context, tick int64) (*store.GardenState, error) {
	return db.queryOneGardenState(ctx, `SELECT * FROM garden_state WHERE tick = ?`, tick)
}

func (db *DB) GetLatestGardenState(ctx context.Context) (*store.GardenState, error) {
	return db.queryOneGardenState(ctx, `SELECT * FROM garden_state ORDER BY tick DESC LIMIT 1`)
}

type gardenStateRow struct {
	ID                     string `db:"id"`
	Tick                   int64  `db:"tick"`
	Timestamp              string `db:"timestamp"`
	EnvironmentJSON        string `db:"environment_json"`
	PopulationSummaryJSON  string `db:"population_summary_json"`
}

func (db *DB) queryOneGardenState(ctx context.Context, query string, args ...any) (*store.GardenState, error) {
	var row gardenStateRow
	err := db.conn.GetContext(ctx, &row, query, args...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: query garden state: %w", err)
	}
	return rowToGardenState(row)
}

func rowToGardenState(row gardenStateRow) (*store.GardenState, error) {
	var env climate.Environment
	if err := json.Unmarshal([]byte(row.EnvironmentJSON), &env); err != nil {
		return nil, fmt.Errorf("sqlitestore: decode environment: %w", err)
	}
	var pop census.Summary
	if err := json.Unmarshal([]byte(row.PopulationSummaryJSON), &pop); err != nil {
		return nil, fmt.Errorf("sqlitestore: decode population summary: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, row.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: decode timestamp: %w", err)
	}
	return &store.GardenState{
		ID:                row.ID,
		Tick:              row.Tick,
		Timestamp:         ts,
		Environment:       env,
		PopulationSummary: pop,
	}, nil
}

func (db *DB) GetAllLivingEntities(ctx context.Context) ([]*organism.Entity, error) {
	return db.queryEntities(ctx, `SELECT * FROM entities WHERE is_alive = 1`)
}

func (db *DB) GetAllDecomposableDeadEntities(ctx context.Context) ([]*organism.Entity, error) {
	return db.queryEntities(ctx, `SELECT * FROM entities WHERE is_alive = 0 AND energy > 0`)
}

type entityRow struct {
	ID            string  `db:"id"`
	GardenStateID string  `db:"garden_state_id"`
	BornAtTick    int64   `db:"born_at_tick"`
	DeathTick     *int64  `db:"death_tick"`
	IsAlive       bool    `db:"is_alive"`
	Type          string  `db:"type"`
	Name          string  `db:"name"`
	Species       string  `db:"species"`
	PositionX     float64 `db:"position_x"`
	PositionY     float64 `db:"position_y"`
	Energy        float64 `db:"energy"`
	Health        float64 `db:"health"`
	Age           int64   `db:"age"`
	TraitsJSON    string  `db:"traits_json"`
	Lineage       string  `db:"lineage"`
	CreatedAt     string  `db:"created_at"`
	UpdatedAt     string  `db:"updated_at"`
}

func (db *DB) queryEntities(ctx context.Context, query string, args ...any) ([]*organism.Entity, error) {
	var rows []entityRow
	if err := db.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlitestore: query entities: %w", err)
	}
	out := make([]*organism.Entity, 0, len(rows))
	for _, r := range rows {
		e, err := rowToEntity(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func rowToEntity(r entityRow) (*organism.Entity, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: decode created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: decode updated_at: %w", err)
	}
	e := &organism.Entity{
		ID:            r.ID,
		GardenStateID: r.GardenStateID,
		BornAtTick:    r.BornAtTick,
		DeathTick:     r.DeathTick,
		IsAlive:       r.IsAlive,
		Kind:          organism.Kind(r.Type),
		Name:          r.Name,
		Species:       r.Species,
		Position:      geo.Point{X: r.PositionX, Y: r.PositionY},
		Energy:        r.Energy,
		Health:        r.Health,
		Age:           r.Age,
		Lineage:       r.Lineage,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
	if err := decodeTraits(e, r.TraitsJSON); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeTraits(e *organism.Entity, traitsJSON string) error {
	switch e.Kind {
	case organism.KindPlant:
		var t organism.PlantTraits
		if err := json.Unmarshal([]byte(traitsJSON), &t); err != nil {
			return fmt.Errorf("sqlitestore: decode plant traits: %w", err)
		}
		e.Traits = &t
	case organism.KindHerbivore:
		var t organism.HerbivoreTraits
		if err := json.Unmarshal([]byte(traitsJSON), &t); err != nil {
			return fmt.Errorf("sqlitestore: decode herbivore traits: %w", err)
		}
		e.Traits = &t
	case organism.KindCarnivore:
		var t organism.CarnivoreTraits
		if err := json.Unmarshal([]byte(traitsJSON), &t); err != nil {
			return fmt.Errorf("sqlitestore: decode carnivore traits: %w", err)
		}
		e.Traits = &t
	case organism.KindFungus:
		var t organism.FungusTraits
		if err := json.Unmarshal([]byte(traitsJSON), &t); err != nil {
			return fmt.Errorf("sqlitestore: decode fungus traits: %w", err)
		}
		e.Traits = &t
	default:
		return fmt.Errorf("sqlitestore: unknown entity type %q", e.Kind)
	}
	return nil
}

func (db *DB) SaveGardenState(ctx context.Context, state store.GardenState) (string, error) {
	envJSON, err := json.Marshal(state.Environment)
	if err != nil {
		return "", fmt.Errorf("sqlitestore: encode environment: %w", err)
	}
	popJSON, err := json.Marshal(state.PopulationSummary)
	if err != nil {
		return "", fmt.Errorf("sqlitestore: encode population summary: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO garden_state (id, tick, timestamp, environment_json, population_summary_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(tick) DO UPDATE SET
			id = excluded.id,
			timestamp = excluded.timestamp,
			environment_json = excluded.environment_json,
			population_summary_json = excluded.population_summary_json
	`, state.ID, state.Tick, state.Timestamp.UTC().Format(time.RFC3339Nano), string(envJSON), string(popJSON))
	if err != nil {
		return "", fmt.Errorf("sqlitestore: save garden state: %w", err)
	}
	return state.ID, nil
}

func (db *DB) SaveEntities(ctx context.Context, entities []*organism.Entity) error {
	if len(entities) == 0 {
		return nil
	}
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitestore: save entities begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO entities (
			id, garden_state_id, born_at_tick, death_tick, is_alive, type, name, species,
			position_x, position_y, energy, health, age, traits_json, lineage, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			garden_state_id=excluded.garden_state_id, death_tick=excluded.death_tick,
			is_alive=excluded.is_alive, position_x=excluded.position_x, position_y=excluded.position_y,
			energy=excluded.energy, health=excluded.health, age=excluded.age,
			traits_json=excluded.traits_json, updated_at=excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("sqlitestore: prepare save entities: %w", err)
	}
	defer stmt.Close()

	for _, e := range entities {
		traitsJSON, err := json.Marshal(e.Traits)
		if err != nil {
			return fmt.Errorf("sqlitestore: encode traits for %s: %w", e.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			e.ID, e.GardenStateID, e.BornAtTick, e.DeathTick, e.IsAlive, string(e.Kind), e.Name, e.Species,
			e.Position.X, e.Position.Y, e.Energy, e.Health, e.Age, string(traitsJSON), e.Lineage,
			e.CreatedAt.UTC().Format(time.RFC3339Nano), e.UpdatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("sqlitestore: save entity %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

func (db *DB) MarkEntitiesDead(ctx context.Context, ids []string, tick int64) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitestore: mark entities dead begin tx: %w", err)
	}
	defer tx.Rollback()
	stmt, err := tx.PreparexContext(ctx, `UPDATE entities SET is_alive = 0, death_tick = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("sqlitestore: prepare mark entities dead: %w", err)
	}
	defer stmt.Close()
	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, tick, id); err != nil {
			return fmt.Errorf("sqlitestore: mark entity %s dead: %w", id, err)
		}
	}
	return tx.Commit()
}

func (db *DB) DeleteSimulationEventsByTick(ctx context.Context, tick int64) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM simulation_events WHERE tick = ?`, tick)
	if err != nil {
		return fmt.Errorf("sqlitestore: delete simulation events: %w", err)
	}
	return nil
}

func (db *DB) SaveSimulationEvents(ctx context.Context, evts []events.SimulationEvent) error {
	if len(evts) == 0 {
		return nil
	}
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitestore: save simulation events begin tx: %w", err)
	}
	defer tx.Rollback()
	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO simulation_events (
			garden_state_id, tick, timestamp, event_type, description,
			entities_affected_json, tags_json, severity, metadata_json
		) VALUES (?,?,?,?,?,?,?,?,?)
	`)
	if err != nil {
		return fmt.Errorf("sqlitestore: prepare save simulation events: %w", err)
	}
	defer stmt.Close()
	for _, ev := range evts {
		affected, err := json.Marshal(ev.EntitiesAffected)
		if err != nil {
			return fmt.Errorf("sqlitestore: encode entities affected: %w", err)
		}
		tags, err := json.Marshal(ev.Tags)
		if err != nil {
			return fmt.Errorf("sqlitestore: encode tags: %w", err)
		}
		var metadata []byte
		if ev.Metadata != nil {
			metadata, err = json.Marshal(ev.Metadata)
			if err != nil {
				return fmt.Errorf("sqlitestore: encode metadata: %w", err)
			}
		}
		_, err = stmt.ExecContext(ctx,
			ev.GardenStateID, ev.Tick, ev.Timestamp.UTC().Format(time.RFC3339Nano), string(ev.EventType), ev.Description,
			string(affected), string(tags), string(ev.Severity), nullableString(metadata),
		)
		if err != nil {
			return fmt.Errorf("sqlitestore: save simulation event: %w", err)
		}
	}
	return tx.Commit()
}

func nullableString(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

func (db *DB) SetLastCompletedTick(ctx context.Context, tick int64) error {
	_, err := db.conn.ExecContext(ctx, `UPDATE simulation_control SET last_completed_tick = ? WHERE id = 1`, tick)
	if err != nil {
		return fmt.Errorf("sqlitestore: set last completed tick: %w", err)
	}
	return nil
}

var _ store.Store = (*DB)(nil)
