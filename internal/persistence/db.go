// Package persistence provides SQLite storage for generated systems.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/planetgen/internal/body"
	"github.com/talgya/planetgen/internal/system"
)

// SchemaVersion is recorded in store_meta on migrate.
const SchemaVersion = "1"

// ErrNotFound is returned when a system ID is not stored.
var ErrNotFound = errors.New("system not found")

// DB wraps a SQLite connection for system storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS systems (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		seed INTEGER NOT NULL,
		spacing_d0 REAL NOT NULL,
		spacing_k REAL NOT NULL,
		body_count INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bodies (
		system_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		parent_name TEXT NOT NULL DEFAULT '',
		pos_r REAL NOT NULL,
		pos_t REAL NOT NULL,
		pos_p REAL NOT NULL,
		mass REAL NOT NULL,
		radius REAL NOT NULL,
		data_json TEXT NOT NULL,
		PRIMARY KEY (system_id, name)
	);

	CREATE TABLE IF NOT EXISTS store_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bodies_system ON bodies(system_id, idx);
	CREATE INDEX IF NOT EXISTS idx_systems_created ON systems(created_at);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}
	return db.SaveMeta("schema_version", SchemaVersion)
}

// SaveMeta stores a key-value pair in store metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO store_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM store_meta WHERE key = ?", key)
	return value, err
}

// Summary is one row of the systems table.
type Summary struct {
	ID        string  `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Seed      int64   `db:"seed" json:"seed"`
	SpacingD0 float64 `db:"spacing_d0" json:"spacing_d0"`
	SpacingK  float64 `db:"spacing_k" json:"spacing_k"`
	BodyCount int     `db:"body_count" json:"body_count"`
	CreatedAt int64   `db:"created_at" json:"created_at"`
}

// Created returns the creation time.
func (s Summary) Created() time.Time {
	return time.Unix(s.CreatedAt, 0)
}

// UUID parses the stored id. Rows are only written from valid ids.
func (s Summary) UUID() uuid.UUID {
	return uuid.MustParse(s.ID)
}

type bodyRow struct {
	Idx        int     `db:"idx"`
	Name       string  `db:"name"`
	Kind       string  `db:"kind"`
	ParentName string  `db:"parent_name"`
	PosR       float64 `db:"pos_r"`
	PosT       float64 `db:"pos_t"`
	PosP       float64 `db:"pos_p"`
	Mass       float64 `db:"mass"`
	Radius     float64 `db:"radius"`
	DataJSON   string  `db:"data_json"`
}

// bodyData carries the kind-specific record.
type bodyData struct {
	Star   *body.StarData   `json:"star,omitempty"`
	Planet *body.PlanetData `json:"planet,omitempty"`
}

// SaveSystem writes a system and its bodies, replacing any earlier copy.
func (db *DB) SaveSystem(sys *system.System) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id := sys.ID.String()
	if _, err := tx.Exec("DELETE FROM bodies WHERE system_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO systems
		(id, name, seed, spacing_d0, spacing_k, body_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, sys.Name, sys.Seed, sys.Spacing.D0, sys.Spacing.K, sys.Len(), time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("insert system %s: %w", id, err)
	}

	stmt, err := tx.Preparex(`INSERT INTO bodies
		(system_id, idx, name, kind, parent_name, pos_r, pos_t, pos_p, mass, radius, data_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	parents := sys.ParentNames()
	for _, b := range sys.Bodies() {
		data, err := json.Marshal(bodyData{Star: b.Star, Planet: b.Planet})
		if err != nil {
			return fmt.Errorf("encode body %s: %w", b.Name, err)
		}
		_, err = stmt.Exec(
			id, int(b.ID), b.Name, b.Kind.String(), parents[b.Name],
			b.Position.R, b.Position.T, b.Position.P,
			b.Mass, b.Radius, string(data),
		)
		if err != nil {
			return fmt.Errorf("insert body %s: %w", b.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("system saved", "system", sys.Name, "id", id, "bodies", sys.Len())
	return nil
}

// LoadSystem reads a stored system and re-ingests it, validating the
// parent/satellite graph.
func (db *DB) LoadSystem(id uuid.UUID) (*system.System, error) {
	var sum Summary
	err := db.conn.Get(&sum, "SELECT * FROM systems WHERE id = ?", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var rows []bodyRow
	if err := db.conn.Select(&rows, `SELECT idx, name, kind, parent_name, pos_r, pos_t, pos_p, mass, radius, data_json
		FROM bodies WHERE system_id = ? ORDER BY idx`, id.String()); err != nil {
		return nil, err
	}

	bodies := make([]*body.Body, 0, len(rows))
	parents := make(map[string]string, len(rows))
	for _, r := range rows {
		kind, err := body.ParseKind(r.Kind)
		if err != nil {
			return nil, fmt.Errorf("body %s: %w", r.Name, err)
		}
		var data bodyData
		if err := json.Unmarshal([]byte(r.DataJSON), &data); err != nil {
			return nil, fmt.Errorf("decode body %s: %w", r.Name, err)
		}
		bodies = append(bodies, &body.Body{
			ID:       body.NoBody,
			Name:     r.Name,
			Kind:     kind,
			Position: body.Polar(r.PosR, r.PosT, r.PosP),
			Mass:     r.Mass,
			Radius:   r.Radius,
			Parent:   body.NoBody,
			Star:     data.Star,
			Planet:   data.Planet,
		})
		if r.ParentName != "" {
			parents[r.Name] = r.ParentName
		}
	}

	sys, err := system.FromBodies(sum.Name, bodies, parents)
	if err != nil {
		return nil, fmt.Errorf("load system %s: %w", id, err)
	}
	sys.ID = id
	sys.Seed = sum.Seed
	sys.Spacing = system.SpacingLaw{D0: sum.SpacingD0, K: sum.SpacingK}
	return sys, nil
}

// ListSystems returns the most recently stored systems first.
func (db *DB) ListSystems(limit int) ([]Summary, error) {
	var out []Summary
	err := db.conn.Select(&out,
		"SELECT * FROM systems ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	return out, err
}

// DeleteSystem removes a system and its bodies.
func (db *DB) DeleteSystem(id uuid.UUID) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM systems WHERE id = ?", id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if _, err := tx.Exec("DELETE FROM bodies WHERE system_id = ?", id.String()); err != nil {
		return err
	}
	return tx.Commit()
}
