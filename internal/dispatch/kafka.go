package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// Dispatcher publishes a StagedTask to the executor subsystem.
type Dispatcher interface {
	Dispatch(ctx context.Context, task StagedTask) error
	Close() error
}

// KafkaDispatcher publishes StagedTask records to a Kafka topic for the
// executor subsystem to consume. The message key is the task id, so a
// partitioned topic preserves per-task ordering even though the core
// itself has no concept of message ordering across tasks.
type KafkaDispatcher struct {
	writer *kafka.Writer
}

// NewKafkaDispatcher builds a KafkaDispatcher from cfg.
func NewKafkaDispatcher(cfg *Config) (*KafkaDispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireAll,
	}

	return &KafkaDispatcher{writer: writer}, nil
}

// Dispatch serializes task and publishes it, keyed by task id.
func (d *KafkaDispatcher) Dispatch(ctx context.Context, task StagedTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("dispatch: marshal staged task %s: %w", task.TaskID, err)
	}

	msg := kafka.Message{
		Key:   []byte(task.TaskID.String()),
		Value: payload,
	}

	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("dispatch: publish staged task %s: %w", task.TaskID, err)
	}

	slog.Info("staged task dispatched",
		slog.String("task_id", task.TaskID.String()),
		slog.String("topic", d.writer.Topic))

	return nil
}

// Close flushes and closes the underlying Kafka writer.
func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
