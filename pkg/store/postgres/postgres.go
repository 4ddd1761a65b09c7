// Package postgres stores metric reports in PostgreSQL using pgx.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matzehuels/layoutmetrics/pkg/metrics"
	"github.com/matzehuels/layoutmetrics/pkg/store"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS layout_reports (
    id           TEXT PRIMARY KEY,
    diagram_name TEXT NOT NULL DEFAULT '',
    diagram_hash TEXT NOT NULL,
    report       JSONB NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_layout_reports_created ON layout_reports(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_layout_reports_hash    ON layout_reports(diagram_hash);
`

// Store implements store.Store using a pgx connection pool.
type Store struct {
	db *pgxpool.Pool
}

// New wraps an existing pool.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Connect opens a pool for url and creates the schema.
func Connect(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	s := New(pool)
	if err := s.CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// CreateSchema creates the layout_reports table if it doesn't exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: create schema: %w", err)
	}
	return nil
}

// Save inserts a record.
func (s *Store) Save(ctx context.Context, rec *store.Record) error {
	raw, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("postgres: encode report: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO layout_reports (id, diagram_name, diagram_hash, report, created_at) VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.DiagramName, rec.DiagramHash, raw, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert report: %w", err)
	}
	return nil
}

// Get fetches a record by ID.
func (s *Store) Get(ctx context.Context, id string) (*store.Record, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, diagram_name, diagram_hash, report, created_at FROM layout_reports WHERE id = $1`, id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get report: %w", err)
	}
	return rec, nil
}

// List returns up to limit records, newest first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]store.Record, error) {
	query := `SELECT id, diagram_name, diagram_hash, report, created_at FROM layout_reports ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list reports: %w", err)
	}
	defer rows.Close()

	recs := []store.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan report: %w", err)
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list reports: %w", err)
	}
	return recs, nil
}

// Close closes the pool.
func (s *Store) Close(context.Context) error {
	s.db.Close()
	return nil
}

func scanRecord(row pgx.Row) (*store.Record, error) {
	var (
		rec store.Record
		raw []byte
	)
	if err := row.Scan(&rec.ID, &rec.DiagramName, &rec.DiagramHash, &raw, &rec.CreatedAt); err != nil {
		return nil, err
	}
	var r metrics.Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	rec.Report = r
	return &rec, nil
}

var _ store.Store = (*Store)(nil)
