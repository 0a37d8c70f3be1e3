package consumer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Runner drains one kafka topic into a handler until the context ends.
type Runner struct {
	reader  *kafka.Reader
	handler *AccountStateHandler
	logger  *slog.Logger
}

func NewRunner(brokers []string, groupID string, handler *AccountStateHandler, logger *slog.Logger) *Runner {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          AccountStateTopic,
		GroupID:        groupID,
		SessionTimeout: 30 * time.Second,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
		MaxBytes:       10e6, // 10MB
	})
	return &Runner{reader: reader, handler: handler, logger: logger}
}

func (r *Runner) Run(ctx context.Context) error {
	defer r.reader.Close()

	for {
		msg, err := r.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			r.logger.ErrorContext(ctx, "failed to read account state message", "error", err)
			return err
		}

		if err := r.handler.Handle(ctx, msg); err != nil {
			// The event is committed either way; the venue resends full
			// snapshots, so the next state heals the account.
			r.logger.ErrorContext(ctx, "failed to process account state message",
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset,
				"error", err)
		}
	}
}
