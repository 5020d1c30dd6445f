package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kilianp07/gridsim/core/topology"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder stores rows in a SQLite database, one row per component
// per tick. Rows of a run are tagged with a run id so that several runs can
// share a database.
type SQLiteRecorder struct {
	db    *sql.DB
	runID string
}

// NewSQLiteRecorder opens or creates the database at path and ensures schema.
func NewSQLiteRecorder(path, runID string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS grid_snapshots (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT,
        tick INTEGER,
        category TEXT,
        component TEXT,
        ts INTEGER,
        fields TEXT
    );`
	index := `CREATE INDEX IF NOT EXISTS grid_snapshots_run_tick ON grid_snapshots(run_id, tick);`
	_, err = db.Exec(schema)
	if err == nil {
		_, err = db.Exec(index)
	}
	if err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteRecorder{db: db, runID: runID}, nil
}

// Init is a no-op; the schema is created on open.
func (s *SQLiteRecorder) Init(context.Context, topology.Snapshot) error { return nil }

// Record writes every component of snap in one transaction.
func (s *SQLiteRecorder) Record(ctx context.Context, tick int, snap topology.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO grid_snapshots (run_id, tick, category, component, ts, fields) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, row := range rows(tick, snap) {
		b, err := json.Marshal(row.Fields)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx, s.runID, row.Tick, row.Category, row.Component, row.Time.UnixNano(), string(b)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Query returns the rows of this recorder's run matching q, ordered by tick.
func (s *SQLiteRecorder) Query(ctx context.Context, q RowQuery) ([]Row, error) {
	args := []any{s.runID}
	query := `SELECT tick, category, component, fields FROM grid_snapshots WHERE run_id = ?`
	if q.Category != "" {
		query += ` AND category = ?`
		args = append(args, q.Category)
	}
	if q.Component != "" {
		query += ` AND component = ?`
		args = append(args, q.Component)
	}
	query += ` AND tick >= ?`
	args = append(args, q.MinTick)
	if q.MaxTick >= 0 {
		query += ` AND tick <= ?`
		args = append(args, q.MaxTick)
	}
	query += ` ORDER BY tick, id`
	rs, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rs.Close() }()
	var res []Row
	for rs.Next() {
		var r Row
		var data string
		if err := rs.Scan(&r.Tick, &r.Category, &r.Component, &data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &r.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}
		res = append(res, r)
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteRecorder) Close() error { return s.db.Close() }
