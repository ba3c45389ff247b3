package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Upload types recorded against funder_uploads rows.
const (
	UploadWeekly = "weekly"
	UploadDaily  = "daily"
)

var ErrNotFound = errors.New("not found")

type FunderUpload struct {
	ID         string    `json:"id"`
	Portfolio  string    `json:"portfolio"`
	Funder     string    `json:"funder"`
	ReportDate string    `json:"report_date"`
	UploadType string    `json:"upload_type"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"file_path"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// UpsertFunderUpload records an upload, replacing the path of a re-uploaded
// file, and returns the row id.
func (s *Store) UpsertFunderUpload(ctx context.Context, u FunderUpload) (string, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	var id string
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO funder_uploads (id, portfolio, funder, report_date, upload_type, file_name, file_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (portfolio, funder, report_date, upload_type, file_name)
		DO UPDATE SET file_path = EXCLUDED.file_path, uploaded_at = now()
		RETURNING id`,
		u.ID, u.Portfolio, u.Funder, u.ReportDate, u.UploadType, u.FileName, u.FilePath,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("recording upload: %w", err)
	}
	return id, nil
}

func (s *Store) GetFunderUpload(ctx context.Context, id string) (FunderUpload, error) {
	var u FunderUpload
	err := s.Pool.QueryRow(ctx, `
		SELECT id, portfolio, funder, report_date, upload_type, file_name, file_path, uploaded_at
		FROM funder_uploads WHERE id = $1`, id,
	).Scan(&u.ID, &u.Portfolio, &u.Funder, &u.ReportDate, &u.UploadType, &u.FileName, &u.FilePath, &u.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return FunderUpload{}, ErrNotFound
	}
	if err != nil {
		return FunderUpload{}, fmt.Errorf("loading upload: %w", err)
	}
	return u, nil
}

// ListFunderUploads returns uploads for a portfolio, newest first. funder
// narrows the list when non-empty.
func (s *Store) ListFunderUploads(ctx context.Context, portfolio, funder string) ([]FunderUpload, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, portfolio, funder, report_date, upload_type, file_name, file_path, uploaded_at
		FROM funder_uploads
		WHERE portfolio = $1 AND ($2 = '' OR funder = $2)
		ORDER BY uploaded_at DESC`, portfolio, funder)
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}
	defer rows.Close()

	var uploads []FunderUpload
	for rows.Next() {
		var u FunderUpload
		if err := rows.Scan(&u.ID, &u.Portfolio, &u.Funder, &u.ReportDate, &u.UploadType, &u.FileName, &u.FilePath, &u.UploadedAt); err != nil {
			return nil, fmt.Errorf("scanning upload: %w", err)
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

func (s *Store) DeleteFunderUpload(ctx context.Context, id string) error {
	ct, err := s.Pool.Exec(ctx, `DELETE FROM funder_uploads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting upload: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
