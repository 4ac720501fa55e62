// Package store provides persistent, indexed storage of airspaces and
// their boundary components on top of a SQLite database, following the
// three-table logical schema of spec.md §4.3.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS airspaces (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	code_id           TEXT NOT NULL,
	code_type         TEXT NOT NULL,
	name              TEXT,
	airspace_class    TEXT,
	min_altitude_ft   REAL,
	max_altitude_ft   REAL,
	min_altitude_unit TEXT,
	max_altitude_unit TEXT,
	operating_hours   TEXT,
	remarks           TEXT,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_airspaces_code_id ON airspaces(code_id);
CREATE INDEX IF NOT EXISTS idx_airspaces_name ON airspaces(name);

CREATE TABLE IF NOT EXISTS borders (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	airspace_id INTEGER NOT NULL REFERENCES airspaces(id),
	ordinal     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_borders_airspace_id ON borders(airspace_id);

CREATE TABLE IF NOT EXISTS vertices (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	border_id INTEGER NOT NULL REFERENCES borders(id),
	ordinal   INTEGER NOT NULL,
	lat       REAL NOT NULL,
	lon       REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_vertices_border_ordinal ON vertices(border_id, ordinal);
`

// Airspace is the store's persisted view of an airspace record, with
// the stable id and bookkeeping timestamps the aixm package's Airspace
// doesn't carry yet.
type Airspace struct {
	ID              int64
	CodeID          string
	CodeType        string
	Name            string
	Class           string
	MinAltitudeFt   float64
	MaxAltitudeFt   float64
	MinAltitudeUnit string
	MaxAltitudeUnit string
	OperatingHours  string
	Remarks         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BorderGeometry is one border's ordinal plus its ordered vertices, as
// handed to the geometry loader.
type BorderGeometry struct {
	Ordinal  int
	Vertices []VertexGeometry
}

// VertexGeometry is one border vertex in WGS-84 decimal degrees.
type VertexGeometry struct {
	Ordinal int
	Lat     float64
	Lon     float64
}

// Statistics summarizes the store's contents for get_statistics
// (spec.md §4.3).
type Statistics struct {
	TotalAirspaces      int
	CountByType         map[string]int
	GeometryCoveragePct float64
}

// Store is the airspace store: persistent, indexed storage for query
// and KML generation, backed by a pure-Go SQLite driver (no cgo),
// grounded on plane-watch-acars-parser/internal/storage/sqlite.go.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying *sql.DB for callers (e.g. the spatial
// index builder) that need direct read-only access.
func (s *Store) DB() *sql.DB { return s.db }

func scanAirspace(row interface {
	Scan(dest ...any) error
}) (Airspace, error) {
	var a Airspace
	var createdAt, updatedAt string
	if err := row.Scan(&a.ID, &a.CodeID, &a.CodeType, &a.Name, &a.Class,
		&a.MinAltitudeFt, &a.MaxAltitudeFt, &a.MinAltitudeUnit, &a.MaxAltitudeUnit,
		&a.OperatingHours, &a.Remarks, &createdAt, &updatedAt); err != nil {
		return Airspace{}, err
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	a.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return a, nil
}

const airspaceColumns = `id, code_id, code_type, name, airspace_class,
	min_altitude_ft, max_altitude_ft, min_altitude_unit, max_altitude_unit,
	operating_hours, remarks, created_at, updated_at`

// GetByID returns the airspace with the given stable id.
func (s *Store) GetByID(ctx context.Context, id int64) (Airspace, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+airspaceColumns+" FROM airspaces WHERE id = ?", id)
	return scanAirspace(row)
}

// GetByCode returns the airspace with the given code_id.
func (s *Store) GetByCode(ctx context.Context, codeID string) (Airspace, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+airspaceColumns+" FROM airspaces WHERE code_id = ?", codeID)
	return scanAirspace(row)
}
