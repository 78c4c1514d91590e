package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"video-publisher/internal/entity"
)

var ErrConsumerClosed = errors.New("rabbitmq delivery channel closed")

// Handler processes one task message. A non-nil error dead-letters the message
// unless the consumer is shutting down.
type Handler func(ctx context.Context, msg entity.TaskMessage) error

// StartConsumer waits for the broker to become ready, then consumes the main queue
// on a dedicated channel with prefetch=1 until ctx is cancelled.
//
// Each delivery is acked when handler returns nil and nacked without requeue
// otherwise, so the broker routes it to the dead-letter queue. A handler that
// fails after ctx is cancelled has its delivery requeued instead.
func (b *Broker) StartConsumer(ctx context.Context, consumerTag string, handler Handler) error {
	if err := b.waitReady(ctx, b.consumerWait, b.consumerPoll); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	ch, err := b.Acquire()
	if err != nil {
		return fmt.Errorf("acquire channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(MainQueue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	log := b.logger.With(zap.String("consumer", consumerTag))
	log.Info("started consuming", zap.String("queue", MainQueue))

	for {
		select {
		case <-ctx.Done():
			log.Info("stopping consumer")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return ErrConsumerClosed
			}
			b.handleDelivery(ctx, log, d, handler)
		}
	}
}

func (b *Broker) handleDelivery(ctx context.Context, log *zap.Logger, d amqp.Delivery, handler Handler) {
	err := runHandler(ctx, d.Body, handler)
	if err != nil && ctx.Err() != nil {
		// shutdown interrupted the handler; hand the message back for redelivery
		log.Warn("requeueing interrupted message",
			zap.String("message_id", d.MessageId),
			zap.Error(err),
		)
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Error("nack failed", zap.String("message_id", d.MessageId), zap.Error(nackErr))
		}
		return
	}
	if err != nil {
		log.Error("error processing message",
			zap.String("message_id", d.MessageId),
			zap.Error(err),
		)
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("nack failed", zap.String("message_id", d.MessageId), zap.Error(nackErr))
		}
		return
	}

	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("ack failed", zap.String("message_id", d.MessageId), zap.Error(ackErr))
	}
}

// runHandler decodes the body and calls handler; a panic is reported as an error.
func runHandler(ctx context.Context, body []byte, handler Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	var msg entity.TaskMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}

	return handler(ctx, msg)
}
