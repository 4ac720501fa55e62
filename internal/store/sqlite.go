package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ffdumont/navprofile/internal/aixm"
	_ "modernc.org/sqlite"
)

// writeMu enforces the "one writer, many concurrent readers" resource
// model of spec.md §5: BulkInsert holds it for the duration of the
// transaction, readers never need to.
var writeMu sync.Mutex

// BulkInsert writes a batch of extracted records transactionally. On
// conflict by code_id, the later record replaces the earlier one
// entirely, including its borders and vertices (spec.md §4.3).
func (s *Store) BulkInsert(ctx context.Context, records []aixm.Record) error {
	writeMu.Lock()
	defer writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk insert: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)

	for _, rec := range records {
		a := rec.Airspace
		var id int64
		row := tx.QueryRowContext(ctx, `
			INSERT INTO airspaces (code_id, code_type, name, airspace_class,
				min_altitude_ft, max_altitude_ft, min_altitude_unit, max_altitude_unit,
				operating_hours, remarks, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(code_id) DO UPDATE SET
				code_type = excluded.code_type,
				name = excluded.name,
				airspace_class = excluded.airspace_class,
				min_altitude_ft = excluded.min_altitude_ft,
				max_altitude_ft = excluded.max_altitude_ft,
				min_altitude_unit = excluded.min_altitude_unit,
				max_altitude_unit = excluded.max_altitude_unit,
				operating_hours = excluded.operating_hours,
				remarks = excluded.remarks,
				updated_at = excluded.updated_at
			RETURNING id`,
			a.CodeID, a.CodeType, a.Name, a.Class,
			a.MinAltitudeFt, a.MaxAltitudeFt, a.MinAltitudeUnit, a.MaxAltitudeUnit,
			a.OperatingHours, a.Remarks, now, now)
		if err := row.Scan(&id); err != nil {
			return fmt.Errorf("upsert airspace %s: %w", a.CodeID, err)
		}

		if err := replaceBorders(ctx, tx, id, rec.Borders); err != nil {
			return fmt.Errorf("replace borders for %s: %w", a.CodeID, err)
		}
	}

	return tx.Commit()
}

// replaceBorders drops an airspace's existing borders/vertices and
// inserts the new set, so a re-extracted record fully replaces the
// prior one's geometry rather than merging with it.
func replaceBorders(ctx context.Context, tx *sql.Tx, airspaceID int64, borders []aixm.Border) error {
	oldBorderIDs, err := queryInt64Column(ctx, tx, "SELECT id FROM borders WHERE airspace_id = ?", airspaceID)
	if err != nil {
		return err
	}
	if len(oldBorderIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(oldBorderIDs)), ",")
		args := make([]any, len(oldBorderIDs))
		for i, id := range oldBorderIDs {
			args[i] = id
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM vertices WHERE border_id IN ("+placeholders+")", args...); err != nil {
			return fmt.Errorf("delete old vertices: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM borders WHERE airspace_id = ?", airspaceID); err != nil {
		return fmt.Errorf("delete old borders: %w", err)
	}

	for _, b := range borders {
		res, err := tx.ExecContext(ctx, "INSERT INTO borders (airspace_id, ordinal) VALUES (?, ?)", airspaceID, b.Ordinal)
		if err != nil {
			return fmt.Errorf("insert border: %w", err)
		}
		borderID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("border id: %w", err)
		}
		for _, v := range b.Vertices {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO vertices (border_id, ordinal, lat, lon) VALUES (?, ?, ?, ?)",
				borderID, v.Ordinal, v.Lat, v.Lon); err != nil {
				return fmt.Errorf("insert vertex: %w", err)
			}
		}
	}
	return nil
}

func queryInt64Column(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SearchByKeyword substring-matches keyword against name or code_id,
// ordered by (code_type, code_id), grounded on the dynamic WHERE-clause
// building in plane-watch-acars-parser/internal/storage/sqlite.go's
// Query.
func (s *Store) SearchByKeyword(ctx context.Context, keyword string, caseSensitive bool, limit int) ([]Airspace, error) {
	if limit <= 0 {
		limit = 100
	}
	var query string
	var args []any
	if caseSensitive {
		query = `SELECT ` + airspaceColumns + ` FROM airspaces
			WHERE instr(name, ?) > 0 OR instr(code_id, ?) > 0
			ORDER BY code_type, code_id LIMIT ?`
		args = []any{keyword, keyword, limit}
	} else {
		query = `SELECT ` + airspaceColumns + ` FROM airspaces
			WHERE lower(name) LIKE ? OR lower(code_id) LIKE ?
			ORDER BY code_type, code_id LIMIT ?`
		pattern := "%" + strings.ToLower(keyword) + "%"
		args = []any{pattern, pattern, limit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search by keyword: %w", err)
	}
	defer rows.Close()

	var out []Airspace
	for rows.Next() {
		a, err := scanAirspace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// IterAllWithGeometry calls fn once per airspace that has at least one
// border, in id order, stopping (and returning fn's error) the first
// time fn fails. Used to build the spatial index (spec.md §4.3).
func (s *Store) IterAllWithGeometry(ctx context.Context, fn func(Airspace) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+airspaceColumns+` FROM airspaces a
		WHERE EXISTS (SELECT 1 FROM borders b WHERE b.airspace_id = a.id)
		ORDER BY a.id`)
	if err != nil {
		return fmt.Errorf("iterate airspaces with geometry: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAirspace(rows)
		if err != nil {
			return fmt.Errorf("scan airspace: %w", err)
		}
		if err := fn(a); err != nil {
			return err
		}
	}
	return rows.Err()
}

// GetGeometry returns an airspace's borders and vertices, ordered for
// direct ring assembly by the geometry loader.
func (s *Store) GetGeometry(ctx context.Context, airspaceID int64) ([]BorderGeometry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.ordinal, v.ordinal, v.lat, v.lon
		FROM borders b
		JOIN vertices v ON v.border_id = b.id
		WHERE b.airspace_id = ?
		ORDER BY b.ordinal, v.ordinal`, airspaceID)
	if err != nil {
		return nil, fmt.Errorf("get geometry: %w", err)
	}
	defer rows.Close()

	byOrdinal := make(map[int]*BorderGeometry)
	var order []int
	for rows.Next() {
		var borderOrdinal, vertexOrdinal int
		var lat, lon float64
		if err := rows.Scan(&borderOrdinal, &vertexOrdinal, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan geometry row: %w", err)
		}
		b, ok := byOrdinal[borderOrdinal]
		if !ok {
			b = &BorderGeometry{Ordinal: borderOrdinal}
			byOrdinal[borderOrdinal] = b
			order = append(order, borderOrdinal)
		}
		b.Vertices = append(b.Vertices, VertexGeometry{Ordinal: vertexOrdinal, Lat: lat, Lon: lon})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]BorderGeometry, 0, len(order))
	for _, ord := range order {
		out = append(out, *byOrdinal[ord])
	}
	return out, nil
}

// GetStatistics reports counts by type and the fraction of airspaces
// that have at least one border (spec.md §4.3).
func (s *Store) GetStatistics(ctx context.Context) (Statistics, error) {
	stats := Statistics{CountByType: make(map[string]int)}

	rows, err := s.db.QueryContext(ctx, "SELECT code_type, COUNT(*) FROM airspaces GROUP BY code_type")
	if err != nil {
		return stats, fmt.Errorf("count by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var codeType string
		var count int
		if err := rows.Scan(&codeType, &count); err != nil {
			return stats, err
		}
		stats.CountByType[codeType] = count
		stats.TotalAirspaces += count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	if stats.TotalAirspaces == 0 {
		return stats, nil
	}
	var withGeometry int
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT airspace_id) FROM borders`)
	if err := row.Scan(&withGeometry); err != nil {
		return stats, fmt.Errorf("count with geometry: %w", err)
	}
	stats.GeometryCoveragePct = 100 * float64(withGeometry) / float64(stats.TotalAirspaces)
	return stats, nil
}
