package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/austenknu/TalentTriage/internal/pipeline"
	"github.com/austenknu/TalentTriage/internal/queue"
	"github.com/austenknu/TalentTriage/internal/types"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the pipeline workers",
	Long:  "Consume parse, embed, and score tasks from the broker and advance uploads through the pipeline.",
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

// worker consumes stage tasks and chains follow-up work. A completed parse
// enqueues the embed; a completed embed enqueues the score once the job side
// is embedded too. Anything the chain misses is caught by the sweeper.
type worker struct {
	app *app
	adv *pipeline.Advancer
}

func runWorker(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	w := &worker{app: a, adv: a.advancer()}
	cfg := a.cfg

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.queue.Consume(gctx, queue.ParseQueue, w.handleParse, cfg.ParseTimeout, cfg.MaxRetries)
	})
	g.Go(func() error {
		return a.queue.Consume(gctx, queue.EmbedQueue, w.handleEmbed, cfg.EmbedTimeout, cfg.MaxRetries)
	})
	g.Go(func() error {
		return a.queue.Consume(gctx, queue.ScoreQueue, w.handleScore, cfg.ScoreTimeout, cfg.MaxRetries)
	})

	a.log.Info("workers started")
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func (w *worker) handleParse(ctx context.Context, task queue.Task) error {
	r, err := w.adv.AdvanceParse(ctx, task.UploadID)
	if err != nil {
		return err
	}
	if r == nil || r.HasEmbedding() {
		return nil
	}
	return w.app.queue.Publish(ctx, queue.Task{
		Task:        queue.TaskEmbedResume,
		CandidateID: r.CandidateID,
	})
}

func (w *worker) handleEmbed(ctx context.Context, task queue.Task) error {
	switch task.Task {
	case queue.TaskEmbedJob:
		_, err := w.adv.AdvanceEmbedJob(ctx, task.JobID)
		return err
	case queue.TaskEmbedResume:
		r, err := w.adv.AdvanceEmbedResume(ctx, task.CandidateID)
		if err != nil {
			return err
		}
		return w.chainScore(ctx, r)
	default:
		return fmt.Errorf("unexpected task %q on embed queue", task.Task)
	}
}

// chainScore enqueues scoring when the job side is already embedded. When it
// is not, the sweeper enqueues the score after the job embedding lands.
func (w *worker) chainScore(ctx context.Context, r *types.ParsedResume) error {
	j, err := w.app.store.GetJob(ctx, r.JobID)
	if err != nil || j == nil || !j.HasEmbedding() {
		return nil
	}
	return w.app.queue.Publish(ctx, queue.Task{
		Task:        queue.TaskScore,
		CandidateID: r.CandidateID,
		JobID:       r.JobID,
	})
}

func (w *worker) handleScore(ctx context.Context, task queue.Task) error {
	_, err := w.adv.AdvanceScore(ctx, task.CandidateID, task.JobID)
	return err
}
