package queue

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/austenknu/TalentTriage/internal/pipeline"
)

// Queue names. All are durable; messages survive broker restarts.
const (
	ParseQueue = "triage.parse"
	EmbedQueue = "triage.embed"
	ScoreQueue = "triage.score"
)

// Task names carried in the envelope.
const (
	TaskParse       = "parse_resume"
	TaskEmbedResume = "embed_resume"
	TaskEmbedJob    = "embed_job"
	TaskScore       = "score_candidate"
)

// Task is the JSON message envelope. Attempt counts deliveries of this unit
// of work; the consumer re-publishes with Attempt+1 on transient failure.
type Task struct {
	Task        string    `json:"task"`
	UploadID    uuid.UUID `json:"upload_id,omitempty"`
	CandidateID uuid.UUID `json:"candidate_id,omitempty"`
	JobID       uuid.UUID `json:"job_id,omitempty"`
	Attempt     int       `json:"attempt"`
}

// queueFor maps a task name onto the queue that carries it.
func queueFor(task string) (string, error) {
	switch task {
	case TaskParse:
		return ParseQueue, nil
	case TaskEmbedResume, TaskEmbedJob:
		return EmbedQueue, nil
	case TaskScore:
		return ScoreQueue, nil
	default:
		return "", fmt.Errorf("unknown task %q", task)
	}
}

// taskForWork converts a claimed work item into its queue envelope.
func taskForWork(item pipeline.WorkItem) (Task, error) {
	switch item.Stage {
	case pipeline.StageParse:
		return Task{Task: TaskParse, UploadID: item.UploadID}, nil
	case pipeline.StageEmbedResume:
		return Task{Task: TaskEmbedResume, CandidateID: item.CandidateID}, nil
	case pipeline.StageEmbedJob:
		return Task{Task: TaskEmbedJob, JobID: item.JobID}, nil
	case pipeline.StageScore:
		return Task{Task: TaskScore, CandidateID: item.CandidateID, JobID: item.JobID}, nil
	default:
		return Task{}, fmt.Errorf("unknown stage %q", item.Stage)
	}
}
