package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type FileVersion struct {
	ID        string    `json:"id"`
	Portfolio string    `json:"portfolio"`
	FileName  string    `json:"file_name"`
	FilePath  string    `json:"file_path"`
	Version   int       `json:"version"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// InsertFileVersion records a new workbook version and makes it the single
// active one for its portfolio and file name.
func (s *Store) InsertFileVersion(ctx context.Context, v FileVersion) (string, error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("recording version: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE file_versions SET is_active = false
		WHERE portfolio = $1 AND file_name = $2`, v.Portfolio, v.FileName); err != nil {
		return "", fmt.Errorf("recording version: %w", err)
	}

	var version int
	if err := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(version), 0) + 1 FROM file_versions
		WHERE portfolio = $1 AND file_name = $2`, v.Portfolio, v.FileName).Scan(&version); err != nil {
		return "", fmt.Errorf("recording version: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO file_versions (id, portfolio, file_name, file_path, version, is_active)
		VALUES ($1, $2, $3, $4, $5, true)`,
		v.ID, v.Portfolio, v.FileName, v.FilePath, version); err != nil {
		return "", fmt.Errorf("recording version: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("recording version: %w", err)
	}
	return v.ID, nil
}

func (s *Store) ListFileVersions(ctx context.Context, portfolio, fileName string) ([]FileVersion, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, portfolio, file_name, file_path, version, is_active, created_at
		FROM file_versions
		WHERE portfolio = $1 AND file_name = $2
		ORDER BY version DESC`, portfolio, fileName)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	defer rows.Close()

	var versions []FileVersion
	for rows.Next() {
		var v FileVersion
		if err := rows.Scan(&v.ID, &v.Portfolio, &v.FileName, &v.FilePath, &v.Version, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// SetActiveVersion restores an older version as the active one.
func (s *Store) SetActiveVersion(ctx context.Context, id string) (FileVersion, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return FileVersion{}, fmt.Errorf("restoring version: %w", err)
	}
	defer tx.Rollback(ctx)

	var v FileVersion
	err = tx.QueryRow(ctx, `
		SELECT id, portfolio, file_name, file_path, version, created_at
		FROM file_versions WHERE id = $1`, id,
	).Scan(&v.ID, &v.Portfolio, &v.FileName, &v.FilePath, &v.Version, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return FileVersion{}, ErrNotFound
	}
	if err != nil {
		return FileVersion{}, fmt.Errorf("restoring version: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE file_versions SET is_active = false
		WHERE portfolio = $1 AND file_name = $2`, v.Portfolio, v.FileName); err != nil {
		return FileVersion{}, fmt.Errorf("restoring version: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE file_versions SET is_active = true WHERE id = $1`, id); err != nil {
		return FileVersion{}, fmt.Errorf("restoring version: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return FileVersion{}, fmt.Errorf("restoring version: %w", err)
	}
	v.IsActive = true
	return v, nil
}

func (s *Store) ActiveVersion(ctx context.Context, portfolio, fileName string) (FileVersion, error) {
	var v FileVersion
	err := s.Pool.QueryRow(ctx, `
		SELECT id, portfolio, file_name, file_path, version, is_active, created_at
		FROM file_versions
		WHERE portfolio = $1 AND file_name = $2 AND is_active`, portfolio, fileName,
	).Scan(&v.ID, &v.Portfolio, &v.FileName, &v.FilePath, &v.Version, &v.IsActive, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return FileVersion{}, ErrNotFound
	}
	if err != nil {
		return FileVersion{}, fmt.Errorf("loading active version: %w", err)
	}
	return v, nil
}

func (s *Store) DeleteFileVersion(ctx context.Context, id string) error {
	ct, err := s.Pool.Exec(ctx, `DELETE FROM file_versions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting version: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
