// Package types provides type definitions for the entities that move through
// the triage pipeline.
package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Upload status values. Transitions are monotonic forward; StatusError is
// absorbing and reachable from any non-terminal status.
const (
	StatusStored   = "stored"
	StatusParsed   = "parsed"
	StatusEmbedded = "embedded"
	StatusScored   = "scored"
	StatusError    = "error"
)

// Candidate category values produced by the scoring engine.
const (
	CategoryTop      = "top"
	CategoryModerate = "moderate"
	CategoryReject   = "reject"
)

// Upload represents an uploaded résumé file awaiting pipeline processing.
// The status field is owned by the stage advancer; everything else is set at
// intake and never mutated.
type Upload struct {
	ID               uuid.UUID `json:"id"`
	JobID            uuid.UUID `json:"job_id"`
	FileKey          string    `json:"file_key"`
	OriginalFilename string    `json:"original_filename"`
	MimeType         string    `json:"mime_type"`
	FileSize         int64     `json:"file_size"`
	Status           string    `json:"status"`
	ErrorMessage     *string   `json:"error_message,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// WorkExperience is a single position extracted from a résumé.
type WorkExperience struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

// Education is a single education entry extracted from a résumé.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution,omitempty"`
	Year        *int   `json:"year,omitempty"`
}

// ParsedResume holds the extracted text and structured fields for a candidate.
// CandidateID is 1:1 with the originating Upload. The embedding, once set, is
// immutable; re-embedding is a no-op.
type ParsedResume struct {
	CandidateID    uuid.UUID        `json:"candidate_id"`
	JobID          uuid.UUID        `json:"job_id"`
	UploadID       uuid.UUID        `json:"upload_id"`
	RawText        string           `json:"raw_text"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone"`
	Skills         []string         `json:"skills"`
	WorkExperience []WorkExperience `json:"work_experience"`
	Education      []Education      `json:"education"`
	TotalYearsExp  float64          `json:"total_years_exp"`
	Embedding      *pgvector.Vector `json:"-"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// HasEmbedding reports whether the résumé has already been embedded.
func (r *ParsedResume) HasEmbedding() bool {
	return r.Embedding != nil
}

// JobDescription is the job an upload is triaged against. Same
// embedding-immutability rule as ParsedResume.
type JobDescription struct {
	ID                 uuid.UUID        `json:"id"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	RequiredSkills     []string         `json:"required_skills"`
	PreferredSkills    []string         `json:"preferred_skills"`
	MinYearsExperience float64          `json:"min_years_experience"`
	PreferredEducation []string         `json:"preferred_education"`
	Embedding          *pgvector.Vector `json:"-"`
	CreatedAt          time.Time        `json:"created_at"`
}

// HasEmbedding reports whether the job description has already been embedded.
func (j *JobDescription) HasEmbedding() bool {
	return j.Embedding != nil
}

// RankedCandidate is the read model for a job's score listing: the score row
// joined with identifying résumé fields.
type RankedCandidate struct {
	CandidateScore
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	UploadID uuid.UUID `json:"upload_id"`
}

// CandidateScore is the scoring result for a (candidate, job) pair. The pair is
// unique; re-scoring overwrites rather than duplicates. All scores are in [0,1]
// and rounded to four decimal places before persistence.
type CandidateScore struct {
	CandidateID     uuid.UUID `json:"candidate_id"`
	JobID           uuid.UUID `json:"job_id"`
	SemanticScore   float64   `json:"semantic_score"`
	SkillsScore     float64   `json:"skills_score"`
	ExperienceScore float64   `json:"experience_score"`
	EducationScore  float64   `json:"education_score"`
	CompositeScore  float64   `json:"composite_score"`
	Category        string    `json:"category"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
