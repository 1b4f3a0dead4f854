package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

// TaskReprocessDocument is scheduled each time a document re-OCR is requested.
const TaskReprocessDocument = "document:reprocess"

// AsynqClient sends queue messages through a Redis-backed asynq broker.
type AsynqClient struct {
	client *asynq.Client
}

// NewAsynqClient constructs an asynq-backed queue client.
func NewAsynqClient(opt asynq.RedisClientOpt) *AsynqClient {
	return &AsynqClient{client: asynq.NewClient(opt)}
}

// Send enqueues a reprocess task for the message's document.
func (c *AsynqClient) Send(ctx context.Context, msg Message) error {
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode queue message: %w", err)
	}
	task := asynq.NewTask(TaskReprocessDocument, payload)
	if _, err := c.client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("enqueue reprocess task: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connections.
func (c *AsynqClient) Close() error {
	return c.client.Close()
}

var _ Client = (*AsynqClient)(nil)
