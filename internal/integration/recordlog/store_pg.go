package recordlog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PGStore keeps records in the pathology_records table created by the
// migrations directory.
type PGStore struct{ db queryable }

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{db: pool}
}

func (s *PGStore) Insert(ctx context.Context, rec *Record) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO pathology_records (`+recordCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rec.ID, rec.DatabaseID, rec.PatientID, rec.Title, rec.Status, rec.Date,
		rec.NotificationRef, rec.Severity, rec.ReportID, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (s *PGStore) Query(ctx context.Context, f *Filter, sorts []Sort) ([]Record, error) {
	query, args := selectQuery(f, sorts, func(n int) string { return "$" + strconv.Itoa(n) })
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.DatabaseID, &rec.PatientID, &rec.Title, &rec.Status,
			&rec.Date, &rec.NotificationRef, &rec.Severity, &rec.ReportID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
