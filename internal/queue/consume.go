package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/austenknu/TalentTriage/internal/pipeline"
)

// Handler processes one task. The context carries the stage timeout.
type Handler func(ctx context.Context, task Task) error

// verdict is the consumer's decision after a handler run.
type verdict int

const (
	ackDone verdict = iota
	retryTask
	dropTask
)

// decide classifies a handler result. Permanent failures and exhausted
// retries are dropped; transient failures below the retry ceiling go around
// again. attempt is zero-based.
func decide(err error, attempt, maxRetries int) verdict {
	if err == nil {
		return ackDone
	}
	if pipeline.IsPermanent(err) {
		return dropTask
	}
	if attempt+1 >= maxRetries {
		return dropTask
	}
	return retryTask
}

// Consume processes tasks from one queue until the context is cancelled.
// Messages are acked in every outcome; a transient failure is re-published
// with an incremented attempt count rather than nacked, so the broker never
// redelivers a poison message in a tight loop.
func (q *Queue) Consume(ctx context.Context, queueName string, handler Handler, timeout time.Duration, maxRetries int) error {
	if err := q.ch.Qos(1, 0, false); err != nil {
		return err
	}
	deliveries, err := q.ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			q.handleDelivery(ctx, d, handler, timeout, maxRetries)
		}
	}
}

func (q *Queue) handleDelivery(ctx context.Context, d amqp.Delivery, handler Handler, timeout time.Duration, maxRetries int) {
	var task Task
	if err := json.Unmarshal(d.Body, &task); err != nil {
		q.log.Error("dropping malformed task message", zap.Error(err))
		d.Ack(false)
		return
	}

	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	err := handler(taskCtx, task)
	cancel()

	switch decide(err, task.Attempt, maxRetries) {
	case ackDone:
	case dropTask:
		q.log.Error("dropping failed task",
			zap.String("task", task.Task),
			zap.Int("attempt", task.Attempt),
			zap.Error(err))
	case retryTask:
		retry := task
		retry.Attempt++
		q.log.Warn("retrying task",
			zap.String("task", task.Task),
			zap.Int("attempt", retry.Attempt),
			zap.Error(err))
		if pubErr := q.Publish(ctx, retry); pubErr != nil {
			q.log.Error("failed to re-publish task for retry", zap.Error(pubErr))
			d.Nack(false, true)
			return
		}
	}
	d.Ack(false)
}
