package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Claim queries
//
// Each query selects one eligible item for a pipeline stage via a filtered
// LIMIT 1 scan. No row is marked claimed; duplicate claims between competing
// workers are tolerated by the advancer's idempotent writes. Ordering follows
// insertion order but is not guaranteed.
// -----------------------------------------------------------------------------

// NextStoredUpload returns the ID of one upload awaiting parsing, or nil when
// none is eligible.
func (s *Store) NextStoredUpload(ctx context.Context) (*uuid.UUID, error) {
	return s.scanOneID(ctx,
		`SELECT id FROM uploads WHERE status = 'stored' ORDER BY created_at LIMIT 1`)
}

// NextUnembeddedResume returns the candidate ID of one parsed résumé without
// an embedding, or nil when none is eligible. Résumés whose upload sits in
// the absorbing error state are not eligible.
func (s *Store) NextUnembeddedResume(ctx context.Context) (*uuid.UUID, error) {
	return s.scanOneID(ctx,
		`SELECT pr.candidate_id
		 FROM parsed_resume pr
		 JOIN uploads u ON u.id = pr.upload_id
		 WHERE pr.embedding IS NULL AND u.status != 'error'
		 ORDER BY pr.created_at
		 LIMIT 1`)
}

// NextUnembeddedJob returns the ID of one job description without an
// embedding, or nil when none is eligible.
func (s *Store) NextUnembeddedJob(ctx context.Context) (*uuid.UUID, error) {
	return s.scanOneID(ctx,
		`SELECT id FROM job WHERE embedding IS NULL ORDER BY created_at LIMIT 1`)
}

// NextUnscored returns the (candidate, job) pair of one embedded résumé that
// has no score yet. Both embeddings must be present; a pair whose job is
// still awaiting its embedding is not eligible and is picked up on a later
// sweep. Both IDs are nil when none is eligible.
func (s *Store) NextUnscored(ctx context.Context) (*uuid.UUID, *uuid.UUID, error) {
	var candidateID, jobID uuid.UUID
	err := s.pool.QueryRow(ctx,
		`SELECT pr.candidate_id, pr.job_id
		 FROM parsed_resume pr
		 JOIN uploads u ON u.id = pr.upload_id
		 JOIN job j ON j.id = pr.job_id AND j.embedding IS NOT NULL
		 LEFT JOIN candidate_score cs
		   ON pr.candidate_id = cs.candidate_id AND pr.job_id = cs.job_id
		 WHERE pr.embedding IS NOT NULL AND cs.candidate_id IS NULL
		   AND u.status != 'error'
		 ORDER BY pr.created_at
		 LIMIT 1`,
	).Scan(&candidateID, &jobID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to find unscored candidate: %w", err)
	}
	return &candidateID, &jobID, nil
}

func (s *Store) scanOneID(ctx context.Context, query string) (*uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, query).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim next item: %w", err)
	}
	return &id, nil
}
