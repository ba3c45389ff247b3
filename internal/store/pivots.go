package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Pivot upload types. Daily pivots aggregate a pool of files, so they are
// tagged distinctly from a plain weekly pivot.
const (
	PivotDailyAggregated = "daily_aggregated"
	PivotWeekly          = "weekly"
	PivotCombined        = "combined"
)

type PivotRecord struct {
	ID         string    `json:"id"`
	UploadID   string    `json:"upload_id,omitempty"`
	Portfolio  string    `json:"portfolio"`
	Funder     string    `json:"funder"`
	ReportDate string    `json:"report_date"`
	UploadType string    `json:"upload_type"`
	FilePath   string    `json:"file_path"`
	TotalGross float64   `json:"total_gross"`
	TotalFee   float64   `json:"total_fee"`
	TotalNet   float64   `json:"total_net"`
	RowCount   int       `json:"row_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// UpsertPivot records a generated pivot, replacing any previous pivot of the
// same portfolio, funder, date and type.
func (s *Store) UpsertPivot(ctx context.Context, p PivotRecord) (string, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	var uploadID any
	if p.UploadID != "" {
		uploadID = p.UploadID
	}
	var id string
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO funder_pivot_tables
			(id, upload_id, portfolio, funder, report_date, upload_type, file_path,
			 total_gross, total_fee, total_net, row_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (portfolio, funder, report_date, upload_type)
		DO UPDATE SET upload_id = EXCLUDED.upload_id, file_path = EXCLUDED.file_path,
			total_gross = EXCLUDED.total_gross, total_fee = EXCLUDED.total_fee,
			total_net = EXCLUDED.total_net, row_count = EXCLUDED.row_count,
			created_at = now()
		RETURNING id`,
		p.ID, uploadID, p.Portfolio, p.Funder, p.ReportDate, p.UploadType, p.FilePath,
		p.TotalGross, p.TotalFee, p.TotalNet, p.RowCount,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("recording pivot: %w", err)
	}
	return id, nil
}

func (s *Store) GetPivot(ctx context.Context, portfolio, funder, reportDate, uploadType string) (PivotRecord, error) {
	var p PivotRecord
	var uploadID *string
	err := s.Pool.QueryRow(ctx, `
		SELECT id, upload_id, portfolio, funder, report_date, upload_type, file_path,
			total_gross, total_fee, total_net, row_count, created_at
		FROM funder_pivot_tables
		WHERE portfolio = $1 AND funder = $2 AND report_date = $3 AND upload_type = $4`,
		portfolio, funder, reportDate, uploadType,
	).Scan(&p.ID, &uploadID, &p.Portfolio, &p.Funder, &p.ReportDate, &p.UploadType, &p.FilePath,
		&p.TotalGross, &p.TotalFee, &p.TotalNet, &p.RowCount, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PivotRecord{}, ErrNotFound
	}
	if err != nil {
		return PivotRecord{}, fmt.Errorf("loading pivot: %w", err)
	}
	if uploadID != nil {
		p.UploadID = *uploadID
	}
	return p, nil
}

func (s *Store) ListPivots(ctx context.Context, portfolio, funder string) ([]PivotRecord, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, upload_id, portfolio, funder, report_date, upload_type, file_path,
			total_gross, total_fee, total_net, row_count, created_at
		FROM funder_pivot_tables
		WHERE portfolio = $1 AND ($2 = '' OR funder = $2)
		ORDER BY created_at DESC`, portfolio, funder)
	if err != nil {
		return nil, fmt.Errorf("listing pivots: %w", err)
	}
	defer rows.Close()

	var pivots []PivotRecord
	for rows.Next() {
		var p PivotRecord
		var uploadID *string
		if err := rows.Scan(&p.ID, &uploadID, &p.Portfolio, &p.Funder, &p.ReportDate, &p.UploadType, &p.FilePath,
			&p.TotalGross, &p.TotalFee, &p.TotalNet, &p.RowCount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning pivot: %w", err)
		}
		if uploadID != nil {
			p.UploadID = *uploadID
		}
		pivots = append(pivots, p)
	}
	return pivots, rows.Err()
}

// DeletePivot removes one pivot record; missing rows are not an error, since
// pivot teardown follows file deletion that may already have cascaded.
func (s *Store) DeletePivot(ctx context.Context, portfolio, funder, reportDate, uploadType string) error {
	_, err := s.Pool.Exec(ctx, `
		DELETE FROM funder_pivot_tables
		WHERE portfolio = $1 AND funder = $2 AND report_date = $3 AND upload_type = $4`,
		portfolio, funder, reportDate, uploadType)
	if err != nil {
		return fmt.Errorf("deleting pivot: %w", err)
	}
	return nil
}
