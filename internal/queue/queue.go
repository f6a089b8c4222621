// Package queue moves pipeline work between the intake service and workers
// over RabbitMQ. Delivery is at-least-once with manual acks; the pipeline's
// idempotent stages absorb duplicates.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/austenknu/TalentTriage/internal/pipeline"
)

// Queue wraps an AMQP connection and channel with the triage queues declared.
type Queue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger
}

var _ pipeline.Enqueuer = (*Queue)(nil)

// Connect dials the broker and declares the durable triage queues.
func Connect(url string, log *zap.Logger) (*Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	for _, name := range []string{ParseQueue, EmbedQueue, ScoreQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to declare queue %s: %w", name, err)
		}
	}

	return &Queue{conn: conn, ch: ch, log: log}, nil
}

// Close shuts down the channel and connection.
func (q *Queue) Close() error {
	if q.ch != nil {
		q.ch.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

// Publish sends a task to its queue as a persistent JSON message.
func (q *Queue) Publish(ctx context.Context, task Task) error {
	name, err := queueFor(task.Task)
	if err != nil {
		return err
	}
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	err = q.ch.PublishWithContext(ctx, "", name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", name, err)
	}
	return nil
}

// EnqueueWork publishes a claimed work item as its task message.
func (q *Queue) EnqueueWork(ctx context.Context, item pipeline.WorkItem) error {
	task, err := taskForWork(item)
	if err != nil {
		return err
	}
	return q.Publish(ctx, task)
}
