// Package store provides PostgreSQL persistence for pipeline entities. It is
// the only component that talks to the database; row-level atomicity and
// durability are the database's job, everything above it is the pipeline's.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and registers the pgvector types.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the schema if it does not exist. embeddingDim fixes the
// vector column width; changing it requires a manual migration.
func (s *Store) Migrate(ctx context.Context, embeddingDim int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS uploads (
			id UUID PRIMARY KEY,
			job_id UUID NOT NULL,
			file_key TEXT NOT NULL,
			original_filename TEXT NOT NULL DEFAULT '',
			mime_type TEXT NOT NULL DEFAULT '',
			file_size BIGINT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'stored',
			error_message TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS job (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL,
			required_skills TEXT[] NOT NULL DEFAULT '{}',
			preferred_skills TEXT[] NOT NULL DEFAULT '{}',
			min_years_experience DOUBLE PRECISION NOT NULL DEFAULT 0,
			preferred_education TEXT[] NOT NULL DEFAULT '{}',
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, embeddingDim),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS parsed_resume (
			candidate_id UUID PRIMARY KEY,
			job_id UUID NOT NULL,
			upload_id UUID NOT NULL REFERENCES uploads(id),
			raw_text TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			skills TEXT[] NOT NULL DEFAULT '{}',
			work_experience JSONB NOT NULL DEFAULT '[]',
			education JSONB NOT NULL DEFAULT '[]',
			total_years_exp DOUBLE PRECISION NOT NULL DEFAULT 0,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, embeddingDim),
		`CREATE TABLE IF NOT EXISTS candidate_score (
			candidate_id UUID NOT NULL,
			job_id UUID NOT NULL,
			semantic_score DOUBLE PRECISION NOT NULL,
			skills_score DOUBLE PRECISION NOT NULL,
			experience_score DOUBLE PRECISION NOT NULL,
			education_score DOUBLE PRECISION NOT NULL,
			composite_score DOUBLE PRECISION NOT NULL,
			category TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (candidate_id, job_id)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_parsed_resume_upload ON parsed_resume (upload_id)`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_status ON uploads (status)`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_job ON uploads (job_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
