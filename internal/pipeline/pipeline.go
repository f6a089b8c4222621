// Package pipeline advances uploads through the triage stages: parse,
// embed, score. Stage advancement is idempotent; running a stage against
// work that is already done is a cheap no-op, which lets the queue deliver
// at-least-once and the sweeper re-enqueue freely.
package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/austenknu/TalentTriage/internal/types"
)

// Store is the persistence surface the pipeline consumes.
type Store interface {
	GetUpload(ctx context.Context, id uuid.UUID) (*types.Upload, error)
	SetUploadStatus(ctx context.Context, id uuid.UUID, status string) error
	MarkUploadError(ctx context.Context, id uuid.UUID, message string) error

	UpsertParsedResume(ctx context.Context, r *types.ParsedResume) error
	GetParsedResume(ctx context.Context, candidateID uuid.UUID) (*types.ParsedResume, error)
	GetResumeByUpload(ctx context.Context, uploadID uuid.UUID) (*types.ParsedResume, error)
	SetResumeEmbedding(ctx context.Context, candidateID uuid.UUID, vec pgvector.Vector) error
	ResumeDistance(ctx context.Context, candidateID uuid.UUID, query pgvector.Vector) (float64, error)

	GetJob(ctx context.Context, id uuid.UUID) (*types.JobDescription, error)
	SetJobEmbedding(ctx context.Context, id uuid.UUID, vec pgvector.Vector) error

	GetScore(ctx context.Context, candidateID, jobID uuid.UUID) (*types.CandidateScore, error)
	UpsertScore(ctx context.Context, sc *types.CandidateScore) error

	NextStoredUpload(ctx context.Context) (*uuid.UUID, error)
	NextUnembeddedResume(ctx context.Context) (*uuid.UUID, error)
	NextUnembeddedJob(ctx context.Context) (*uuid.UUID, error)
	NextUnscored(ctx context.Context) (*uuid.UUID, *uuid.UUID, error)
}

// TextExtractor turns uploaded file bytes into plain text.
type TextExtractor interface {
	Extract(data []byte, mimeType string) (string, error)
}
