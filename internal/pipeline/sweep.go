package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Enqueuer hands claimed work to the task queue.
type Enqueuer interface {
	EnqueueWork(ctx context.Context, item WorkItem) error
}

// Sweeper periodically claims qualifying work and enqueues it. It is the
// safety net behind direct enqueue-on-completion: anything dropped by a
// crashed worker or a lost message is picked up on the next sweep.
type Sweeper struct {
	claimer  *Claimer
	enqueuer Enqueuer
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(claimer *Claimer, enqueuer Enqueuer, interval time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{claimer: claimer, enqueuer: enqueuer, interval: interval, log: log}
}

// Run sweeps until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.SweepOnce(ctx); err != nil {
			s.log.Error("sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SweepOnce claims at most one item per stage and enqueues each. Enqueueing
// an item that a worker is already processing is harmless; the stage no-ops
// on completed work.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	items, err := s.claimer.ClaimPerStage(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := s.enqueuer.EnqueueWork(ctx, item); err != nil {
			return err
		}
	}
	if len(items) > 0 {
		s.log.Info("sweep enqueued work", zap.Int("items", len(items)))
	}
	return nil
}
