package produce

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ObjectCleanupQueue      = "photo.cleanup"
	ObjectCleanupExchange   = "photo.exchange"
	ObjectCleanupRoutingKey = "photo.cleanup"
)

// ObjectCleanupMessage asks the consumer to remove a binary whose
// synchronous delete failed after its metadata row was already gone.
type ObjectCleanupMessage struct {
	ImageName string `json:"image_name"`
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"`
}

// CleanupService publishes deferred object-deletion jobs.
type CleanupService struct {
	channel *amqp.Channel
}

func InitCleanupService(channel *amqp.Channel) *CleanupService {
	service := &CleanupService{
		channel: channel,
	}

	err := channel.ExchangeDeclare(
		ObjectCleanupExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare Photo exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		ObjectCleanupQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare Object Cleanup queue: " + err.Error())
	}

	err = channel.QueueBind(
		ObjectCleanupQueue,
		ObjectCleanupRoutingKey,
		ObjectCleanupExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind Object Cleanup queue: " + err.Error())
	}

	return service
}

// PublishObjectCleanup enqueues a deferred delete for the given object key.
func (s *CleanupService) PublishObjectCleanup(ctx context.Context, imageName string, reason string) error {
	msg := ObjectCleanupMessage{
		ImageName: imageName,
		Reason:    reason,
		Timestamp: time.Now().Unix(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(
		ctx,
		ObjectCleanupExchange,
		ObjectCleanupRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}
