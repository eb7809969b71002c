package recordlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS pathology_records (
	id TEXT PRIMARY KEY,
	database_id TEXT NOT NULL,
	patient_id TEXT NOT NULL,
	title TEXT NOT NULL,
	status TEXT NOT NULL,
	date TEXT NOT NULL,
	notification_ref TEXT NOT NULL DEFAULT '',
	severity TEXT NOT NULL DEFAULT '',
	report_id TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_pathology_records_patient ON pathology_records (patient_id)`,
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore keeps records in a local SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database file is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Insert(ctx context.Context, rec *Record) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO pathology_records (`+recordCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.DatabaseID, rec.PatientID, rec.Title, rec.Status, rec.Date,
		rec.NotificationRef, rec.Severity, rec.ReportID,
		rec.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, f *Filter, sorts []Sort) ([]Record, error) {
	query, args := selectQuery(f, sorts, func(int) string { return "?" })
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var created string
		if err := rows.Scan(&rec.ID, &rec.DatabaseID, &rec.PatientID, &rec.Title, &rec.Status,
			&rec.Date, &rec.NotificationRef, &rec.Severity, &rec.ReportID, &created); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if t, err := time.Parse(timeLayout, created); err == nil {
			rec.CreatedAt = t
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
