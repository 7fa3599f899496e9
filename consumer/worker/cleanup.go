package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tnqbao/gau-photobooth/infra"
	"github.com/tnqbao/gau-photobooth/infra/produce"
	"github.com/tnqbao/gau-photobooth/repository"
)

// CleanupConsumer drains deferred object deletes: binaries whose metadata
// row is already gone but whose synchronous delete failed. The metadata
// deletion stays authoritative; this worker only finishes the job.
type CleanupConsumer struct {
	channel    *amqp.Channel
	infra      *infra.Infra
	repository *repository.Repository
}

func NewCleanupConsumer(channel *amqp.Channel, infra *infra.Infra, repo *repository.Repository) *CleanupConsumer {
	return &CleanupConsumer{
		channel:    channel,
		infra:      infra,
		repository: repo,
	}
}

func (c *CleanupConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.ObjectCleanupQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register object cleanup consumer: %w", err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Cleanup Consumer] Started listening for cleanup jobs on queue: %s", produce.ObjectCleanupQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.infra.Logger.InfoWithContextf(ctx, "[Cleanup Consumer] Shutting down...")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.infra.Logger.WarningWithContextf(ctx, "[Cleanup Consumer] Channel closed")
					return
				}
				c.handleCleanup(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *CleanupConsumer) handleCleanup(ctx context.Context, msg amqp.Delivery) {
	var payload produce.ObjectCleanupMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Cleanup Consumer] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	if payload.ImageName == "" {
		c.infra.Logger.WarningWithContextf(ctx, "[Cleanup Consumer] Message without image_name, dropping")
		_ = msg.Nack(false, false)
		return
	}

	// A row pointing at this key means it was re-referenced since the job
	// was enqueued; deleting the binary now would break a live photo.
	exists, err := c.repository.PhotoRepo.ExistsByImageName(payload.ImageName)
	if err == nil && exists {
		c.infra.Logger.WarningWithContextf(ctx, "[Cleanup Consumer] Object %q has a metadata row again, dropping cleanup", payload.ImageName)
		_ = msg.Ack(false)
		return
	}

	maxRetries := 3
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = c.infra.Minio.RemoveObject(ctx, payload.ImageName)
		if err == nil {
			c.infra.Logger.InfoWithContextf(ctx, "[Cleanup Consumer] Successfully removed object: %s", payload.ImageName)
			_ = msg.Ack(false)
			return
		}

		c.infra.Logger.ErrorWithContextf(ctx, err, "[Cleanup Consumer] Attempt %d/%d failed for %q: %v", attempt, maxRetries, payload.ImageName, err)

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}

	// After max retries, reject and requeue
	c.infra.Logger.ErrorWithContextf(ctx, err, "[Cleanup Consumer] Failed after %d attempts, requeueing message", maxRetries)
	_ = msg.Nack(false, true)
}
