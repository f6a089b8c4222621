package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/austenknu/TalentTriage/internal/types"
)

// UpsertParsedResume inserts or replaces the parsed résumé for a candidate.
// The embedding column is deliberately left out of the conflict update so an
// already-set embedding survives a re-parse.
func (s *Store) UpsertParsedResume(ctx context.Context, r *types.ParsedResume) error {
	workExp, err := json.Marshal(r.WorkExperience)
	if err != nil {
		return fmt.Errorf("failed to marshal work experience: %w", err)
	}
	education, err := json.Marshal(r.Education)
	if err != nil {
		return fmt.Errorf("failed to marshal education: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO parsed_resume
		   (candidate_id, job_id, upload_id, raw_text, name, email, phone,
		    skills, work_experience, education, total_years_exp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (candidate_id) DO UPDATE SET
		   raw_text = EXCLUDED.raw_text,
		   name = EXCLUDED.name,
		   email = EXCLUDED.email,
		   phone = EXCLUDED.phone,
		   skills = EXCLUDED.skills,
		   work_experience = EXCLUDED.work_experience,
		   education = EXCLUDED.education,
		   total_years_exp = EXCLUDED.total_years_exp,
		   updated_at = NOW()`,
		r.CandidateID, r.JobID, r.UploadID, r.RawText, r.Name, r.Email, r.Phone,
		r.Skills, workExp, education, r.TotalYearsExp,
	)
	if err != nil {
		return writeErr("upsert parsed resume", err)
	}
	return nil
}

// GetParsedResume retrieves a parsed résumé by candidate ID. Returns
// (nil, nil) when not found.
func (s *Store) GetParsedResume(ctx context.Context, candidateID uuid.UUID) (*types.ParsedResume, error) {
	var r types.ParsedResume
	var workExp, education []byte

	err := s.pool.QueryRow(ctx,
		`SELECT candidate_id, job_id, upload_id, raw_text, name, email, phone,
		        skills, work_experience, education, total_years_exp, embedding,
		        created_at, updated_at
		 FROM parsed_resume WHERE candidate_id = $1`,
		candidateID,
	).Scan(&r.CandidateID, &r.JobID, &r.UploadID, &r.RawText, &r.Name, &r.Email, &r.Phone,
		&r.Skills, &workExp, &education, &r.TotalYearsExp, &r.Embedding,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get parsed resume: %w", err)
	}

	if err := json.Unmarshal(workExp, &r.WorkExperience); err != nil {
		return nil, fmt.Errorf("failed to unmarshal work experience: %w", err)
	}
	if err := json.Unmarshal(education, &r.Education); err != nil {
		return nil, fmt.Errorf("failed to unmarshal education: %w", err)
	}

	return &r, nil
}

// GetResumeByUpload retrieves the parsed résumé produced from a given upload.
// Returns (nil, nil) when the upload has not been parsed yet. Used to reuse
// the candidate ID when an upload is re-parsed.
func (s *Store) GetResumeByUpload(ctx context.Context, uploadID uuid.UUID) (*types.ParsedResume, error) {
	var candidateID uuid.UUID
	err := s.pool.QueryRow(ctx,
		`SELECT candidate_id FROM parsed_resume WHERE upload_id = $1`,
		uploadID,
	).Scan(&candidateID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up resume by upload: %w", err)
	}
	return s.GetParsedResume(ctx, candidateID)
}

// SetResumeEmbedding stores the embedding vector if and only if none is set.
// A second writer racing the first finds the column non-null and writes
// nothing, which keeps the embedding immutable after first set.
func (s *Store) SetResumeEmbedding(ctx context.Context, candidateID uuid.UUID, vec pgvector.Vector) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE parsed_resume SET embedding = $1, updated_at = NOW()
		 WHERE candidate_id = $2 AND embedding IS NULL`,
		vec, candidateID,
	)
	if err != nil {
		return writeErr("set resume embedding", err)
	}
	return nil
}

// ResumeDistance runs the store's vector distance query between a stored
// résumé embedding and the supplied query vector. The caller must ensure the
// résumé embedding is present.
func (s *Store) ResumeDistance(ctx context.Context, candidateID uuid.UUID, query pgvector.Vector) (float64, error) {
	var distance *float64
	err := s.pool.QueryRow(ctx,
		`SELECT embedding <-> $1 FROM parsed_resume WHERE candidate_id = $2`,
		query, candidateID,
	).Scan(&distance)
	if err != nil {
		return 0, fmt.Errorf("failed to compute vector distance: %w", err)
	}
	if distance == nil {
		return 0, fmt.Errorf("resume %s has no embedding", candidateID)
	}
	return *distance, nil
}
