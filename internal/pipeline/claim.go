package pipeline

import (
	"context"

	"github.com/google/uuid"
)

// Stage identifies a pipeline stage.
type Stage string

const (
	StageParse       Stage = "parse"
	StageEmbedResume Stage = "embed_resume"
	StageEmbedJob    Stage = "embed_job"
	StageScore       Stage = "score"
)

// WorkItem is one claimed unit of pipeline work. Which ID fields are set
// depends on the stage: parse carries UploadID, the embed stages carry
// CandidateID or JobID, score carries both CandidateID and JobID.
type WorkItem struct {
	Stage       Stage
	UploadID    uuid.UUID
	CandidateID uuid.UUID
	JobID       uuid.UUID
}

// Claimer finds uploads, résumés and jobs whose current state qualifies them
// for the next stage. Claiming is a read; two claimers may return the same
// item and rely on idempotent stage advancement to make the race harmless.
type Claimer struct {
	store Store
}

func NewClaimer(st Store) *Claimer {
	return &Claimer{store: st}
}

// ClaimNext returns the next unit of work, earliest stage first, or
// (nil, nil) when nothing qualifies. Parse work is preferred so new uploads
// enter the pipeline before older ones finish it.
func (c *Claimer) ClaimNext(ctx context.Context) (*WorkItem, error) {
	if id, err := c.store.NextStoredUpload(ctx); err != nil {
		return nil, err
	} else if id != nil {
		return &WorkItem{Stage: StageParse, UploadID: *id}, nil
	}

	if id, err := c.store.NextUnembeddedJob(ctx); err != nil {
		return nil, err
	} else if id != nil {
		return &WorkItem{Stage: StageEmbedJob, JobID: *id}, nil
	}

	if id, err := c.store.NextUnembeddedResume(ctx); err != nil {
		return nil, err
	} else if id != nil {
		return &WorkItem{Stage: StageEmbedResume, CandidateID: *id}, nil
	}

	candidateID, jobID, err := c.store.NextUnscored(ctx)
	if err != nil {
		return nil, err
	}
	if candidateID != nil && jobID != nil {
		return &WorkItem{Stage: StageScore, CandidateID: *candidateID, JobID: *jobID}, nil
	}

	return nil, nil
}

// ClaimPerStage returns at most one qualifying item per stage. Unlike
// ClaimNext it does not prioritize; it is meant for the sweeper, which wants
// every stage moving each pass without draining any single one.
func (c *Claimer) ClaimPerStage(ctx context.Context) ([]WorkItem, error) {
	var items []WorkItem

	id, err := c.store.NextStoredUpload(ctx)
	if err != nil {
		return nil, err
	}
	if id != nil {
		items = append(items, WorkItem{Stage: StageParse, UploadID: *id})
	}

	if id, err = c.store.NextUnembeddedJob(ctx); err != nil {
		return nil, err
	} else if id != nil {
		items = append(items, WorkItem{Stage: StageEmbedJob, JobID: *id})
	}

	if id, err = c.store.NextUnembeddedResume(ctx); err != nil {
		return nil, err
	} else if id != nil {
		items = append(items, WorkItem{Stage: StageEmbedResume, CandidateID: *id})
	}

	candidateID, jobID, err := c.store.NextUnscored(ctx)
	if err != nil {
		return nil, err
	}
	if candidateID != nil && jobID != nil {
		items = append(items, WorkItem{Stage: StageScore, CandidateID: *candidateID, JobID: *jobID})
	}

	return items, nil
}
