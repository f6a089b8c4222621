package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/austenknu/TalentTriage/internal/types"
)

// CreateJob inserts a new job description.
func (s *Store) CreateJob(ctx context.Context, j *types.JobDescription) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO job (id, title, description, required_skills, preferred_skills,
		                  min_years_experience, preferred_education)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		j.ID, j.Title, j.Description, j.RequiredSkills, j.PreferredSkills,
		j.MinYearsExperience, j.PreferredEducation,
	)
	if err != nil {
		return writeErr("create job", err)
	}
	return nil
}

// GetJob retrieves a job description by ID. Returns (nil, nil) when not found.
func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*types.JobDescription, error) {
	var j types.JobDescription
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, description, required_skills, preferred_skills,
		        min_years_experience, preferred_education, embedding, created_at
		 FROM job WHERE id = $1`,
		id,
	).Scan(&j.ID, &j.Title, &j.Description, &j.RequiredSkills, &j.PreferredSkills,
		&j.MinYearsExperience, &j.PreferredEducation, &j.Embedding, &j.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &j, nil
}

// SetJobEmbedding stores the job embedding if and only if none is set, the
// same immutability rule as résumé embeddings.
func (s *Store) SetJobEmbedding(ctx context.Context, id uuid.UUID, vec pgvector.Vector) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE job SET embedding = $1 WHERE id = $2 AND embedding IS NULL`,
		vec, id,
	)
	if err != nil {
		return writeErr("set job embedding", err)
	}
	return nil
}
