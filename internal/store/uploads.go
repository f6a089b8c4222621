package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/austenknu/TalentTriage/internal/types"
)

const uploadColumns = `id, job_id, file_key, original_filename, mime_type,
	file_size, status, error_message, created_at, updated_at`

// CreateUpload inserts a new upload record at intake.
func (s *Store) CreateUpload(ctx context.Context, u *types.Upload) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO uploads (id, job_id, file_key, original_filename, mime_type, file_size, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.JobID, u.FileKey, u.OriginalFilename, u.MimeType, u.FileSize, u.Status,
	)
	if err != nil {
		return writeErr("create upload", err)
	}
	return nil
}

// GetUpload retrieves an upload by ID. Returns (nil, nil) when not found.
func (s *Store) GetUpload(ctx context.Context, id uuid.UUID) (*types.Upload, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+uploadColumns+` FROM uploads WHERE id = $1`, id)
	return scanUpload(row)
}

// ListUploadsByJob retrieves all uploads for a job, oldest first.
func (s *Store) ListUploadsByJob(ctx context.Context, jobID uuid.UUID) ([]types.Upload, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+uploadColumns+` FROM uploads WHERE job_id = $1 ORDER BY created_at`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var uploads []types.Upload
	for rows.Next() {
		var u types.Upload
		if err := rows.Scan(&u.ID, &u.JobID, &u.FileKey, &u.OriginalFilename, &u.MimeType,
			&u.FileSize, &u.Status, &u.ErrorMessage, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

// SetUploadStatus advances the upload status. Forward monotonicity is enforced
// by the stage advancer's precondition checks, not here.
func (s *Store) SetUploadStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE uploads SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return writeErr("set upload status", err)
	}
	return nil
}

// MarkUploadError moves the upload into the absorbing error state with a
// human-readable message, so failures are observable without log access.
func (s *Store) MarkUploadError(ctx context.Context, id uuid.UUID, message string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE uploads SET status = $1, error_message = $2, updated_at = NOW() WHERE id = $3`,
		types.StatusError, message, id,
	)
	if err != nil {
		return writeErr("mark upload error", err)
	}
	return nil
}

func scanUpload(row pgx.Row) (*types.Upload, error) {
	var u types.Upload
	err := row.Scan(&u.ID, &u.JobID, &u.FileKey, &u.OriginalFilename, &u.MimeType,
		&u.FileSize, &u.Status, &u.ErrorMessage, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}
	return &u, nil
}
