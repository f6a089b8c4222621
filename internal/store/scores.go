package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/austenknu/TalentTriage/internal/types"
)

// UpsertScore inserts or overwrites the score for a (candidate, job) pair.
// The pair is the primary key, so re-scoring is idempotent.
func (s *Store) UpsertScore(ctx context.Context, sc *types.CandidateScore) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO candidate_score
		   (candidate_id, job_id, semantic_score, skills_score, experience_score,
		    education_score, composite_score, category)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (candidate_id, job_id) DO UPDATE SET
		   semantic_score = EXCLUDED.semantic_score,
		   skills_score = EXCLUDED.skills_score,
		   experience_score = EXCLUDED.experience_score,
		   education_score = EXCLUDED.education_score,
		   composite_score = EXCLUDED.composite_score,
		   category = EXCLUDED.category,
		   updated_at = NOW()`,
		sc.CandidateID, sc.JobID, sc.SemanticScore, sc.SkillsScore, sc.ExperienceScore,
		sc.EducationScore, sc.CompositeScore, sc.Category,
	)
	if err != nil {
		return writeErr("upsert score", err)
	}
	return nil
}

// GetScore retrieves the score for a (candidate, job) pair. Returns (nil, nil)
// when the pair has not been scored.
func (s *Store) GetScore(ctx context.Context, candidateID, jobID uuid.UUID) (*types.CandidateScore, error) {
	var sc types.CandidateScore
	err := s.pool.QueryRow(ctx,
		`SELECT candidate_id, job_id, semantic_score, skills_score, experience_score,
		        education_score, composite_score, category, created_at, updated_at
		 FROM candidate_score WHERE candidate_id = $1 AND job_id = $2`,
		candidateID, jobID,
	).Scan(&sc.CandidateID, &sc.JobID, &sc.SemanticScore, &sc.SkillsScore, &sc.ExperienceScore,
		&sc.EducationScore, &sc.CompositeScore, &sc.Category, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get score: %w", err)
	}
	return &sc, nil
}

// ListScoresByJob retrieves all scores for a job, best composite first.
func (s *Store) ListScoresByJob(ctx context.Context, jobID uuid.UUID) ([]types.CandidateScore, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT candidate_id, job_id, semantic_score, skills_score, experience_score,
		        education_score, composite_score, category, created_at, updated_at
		 FROM candidate_score WHERE job_id = $1 ORDER BY composite_score DESC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	var scores []types.CandidateScore
	for rows.Next() {
		var sc types.CandidateScore
		if err := rows.Scan(&sc.CandidateID, &sc.JobID, &sc.SemanticScore, &sc.SkillsScore,
			&sc.ExperienceScore, &sc.EducationScore, &sc.CompositeScore, &sc.Category,
			&sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

// ListRankedCandidates retrieves a job's scores joined with identifying
// résumé fields, best composite first.
func (s *Store) ListRankedCandidates(ctx context.Context, jobID uuid.UUID) ([]types.RankedCandidate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT cs.candidate_id, cs.job_id, cs.semantic_score, cs.skills_score,
		        cs.experience_score, cs.education_score, cs.composite_score, cs.category,
		        cs.created_at, cs.updated_at, pr.name, pr.email, pr.upload_id
		 FROM candidate_score cs
		 JOIN parsed_resume pr ON pr.candidate_id = cs.candidate_id
		 WHERE cs.job_id = $1
		 ORDER BY cs.composite_score DESC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranked candidates: %w", err)
	}
	defer rows.Close()

	var ranked []types.RankedCandidate
	for rows.Next() {
		var rc types.RankedCandidate
		if err := rows.Scan(&rc.CandidateID, &rc.JobID, &rc.SemanticScore, &rc.SkillsScore,
			&rc.ExperienceScore, &rc.EducationScore, &rc.CompositeScore, &rc.Category,
			&rc.CreatedAt, &rc.UpdatedAt, &rc.Name, &rc.Email, &rc.UploadID); err != nil {
			return nil, fmt.Errorf("failed to scan ranked candidate: %w", err)
		}
		ranked = append(ranked, rc)
	}
	return ranked, rows.Err()
}
