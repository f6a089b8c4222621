package main

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/austenknu/TalentTriage/internal/blob"
	"github.com/austenknu/TalentTriage/internal/config"
	"github.com/austenknu/TalentTriage/internal/embed"
	"github.com/austenknu/TalentTriage/internal/extract"
	"github.com/austenknu/TalentTriage/internal/fields"
	"github.com/austenknu/TalentTriage/internal/logger"
	"github.com/austenknu/TalentTriage/internal/pipeline"
	"github.com/austenknu/TalentTriage/internal/queue"
	"github.com/austenknu/TalentTriage/internal/scoring"
	"github.com/austenknu/TalentTriage/internal/store"
)

// app bundles the shared process dependencies each command wires up.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
	queue *queue.Queue
	blobs *blob.FSStore
}

// newApp loads configuration and connects to the database, the broker, and
// blob storage. The schema is migrated on every startup; migration is
// idempotent.
func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	st, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx, cfg.EmbeddingDim); err != nil {
		st.Close()
		return nil, err
	}

	q, err := queue.Connect(cfg.AMQPURL, log)
	if err != nil {
		st.Close()
		return nil, err
	}

	blobs, err := blob.NewFSStore(cfg.BlobDir)
	if err != nil {
		q.Close()
		st.Close()
		return nil, err
	}

	return &app{cfg: cfg, log: log, store: st, queue: q, blobs: blobs}, nil
}

func (a *app) Close() {
	a.queue.Close()
	a.store.Close()
	_ = a.log.Sync()
}

// advancer wires the stage advancer with its OpenAI collaborators.
func (a *app) advancer() *pipeline.Advancer {
	client := openai.NewClient(a.cfg.OpenAIAPIKey)

	return pipeline.NewAdvancer(
		a.store,
		a.blobs,
		extract.New(a.log),
		fields.NewOpenAIExtractor(client, a.cfg.ExtractionModel),
		fields.NewPatternExtractor(),
		embed.NewOpenAIEmbedder(client, a.cfg.EmbeddingModel, a.cfg.EmbeddingDim, a.cfg.MaxEmbedChars, a.log),
		scoring.Thresholds{Top: a.cfg.TopThreshold, Moderate: a.cfg.ModerateThreshold},
		a.log,
	)
}
