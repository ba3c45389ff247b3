package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the metadata layer over the document tree: which files were
// uploaded, which pivots were generated from them, workbook version history
// and the merchant roster. The files themselves stay on disk.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS funder_uploads (
		id UUID PRIMARY KEY,
		portfolio TEXT NOT NULL,
		funder TEXT NOT NULL,
		report_date TEXT NOT NULL,
		upload_type TEXT NOT NULL,
		file_name TEXT NOT NULL,
		file_path TEXT NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (portfolio, funder, report_date, upload_type, file_name)
	)`,
	`CREATE TABLE IF NOT EXISTS funder_pivot_tables (
		id UUID PRIMARY KEY,
		upload_id UUID REFERENCES funder_uploads(id) ON DELETE SET NULL,
		portfolio TEXT NOT NULL,
		funder TEXT NOT NULL,
		report_date TEXT NOT NULL,
		upload_type TEXT NOT NULL,
		file_path TEXT NOT NULL,
		total_gross DOUBLE PRECISION NOT NULL,
		total_fee DOUBLE PRECISION NOT NULL,
		total_net DOUBLE PRECISION NOT NULL,
		row_count INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (portfolio, funder, report_date, upload_type)
	)`,
	`CREATE TABLE IF NOT EXISTS file_versions (
		id UUID PRIMARY KEY,
		portfolio TEXT NOT NULL,
		file_name TEXT NOT NULL,
		file_path TEXT NOT NULL,
		version INTEGER NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS merchants (
		id UUID PRIMARY KEY,
		portfolio TEXT NOT NULL,
		funder TEXT NOT NULL,
		advance_id TEXT NOT NULL,
		merchant_name TEXT NOT NULL,
		funding_date TEXT,
		amount DOUBLE PRECISION,
		UNIQUE (portfolio, funder, advance_id)
	)`,
}

// EnsureSchema creates the metadata tables if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}
