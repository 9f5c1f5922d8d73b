package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

// Handler processes one message body.
type Handler func(ctx context.Context, body []byte) error

// Consume delivers the messages of every queue in handlers one at a time
// until ctx is done. Failed messages are routed through
// HandleProcessingError; messages rejected with ErrInvalidJob go straight
// to the dead-letter queue.
func Consume(ctx context.Context, conn *amqp091.Connection, handlers map[string]Handler) error {
	consumerCh, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}
	defer consumerCh.Close()

	if err := consumerCh.Qos(1, 0, true); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	type queuedMessage struct {
		msg       amqp091.Delivery
		queueName string
	}
	messageChan := make(chan queuedMessage)

	for queueName := range handlers {
		msgs, err := consumerCh.Consume(
			queueName,
			queueName+"_consumer",
			false, // autoAck
			false, // exclusive
			false, // noLocal
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return fmt.Errorf("failed to start consuming %s: %w", queueName, err)
		}

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-msgs:
					if !ok {
						logger.Info("[Queue] Message channel closed", "queue", queueName)
						return
					}
					select {
					case messageChan <- queuedMessage{msg: msg, queueName: queueName}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	logger.Info("[Queue] Listening for messages")
	for {
		select {
		case <-ctx.Done():
			logger.Info("[Queue] Stopping message processor")
			return nil
		case qm := <-messageChan:
			startTime := time.Now()
			logger.Info("[Queue] Received message", "queue", qm.queueName)

			processingErr := handlers[qm.queueName](ctx, qm.msg.Body)
			switch {
			case processingErr == nil:
				if err := qm.msg.Ack(false); err != nil {
					logger.Error("[Queue] Failed to ack message", "err", err)
				}
				logger.Info("[Queue] Message processed successfully", "queue", qm.queueName, "duration", time.Since(startTime).Round(time.Millisecond))
			case errors.Is(processingErr, ErrInvalidJob):
				logger.Error("[Queue] Rejecting invalid message", "queue", qm.queueName, "err", processingErr)
				qm.msg.Headers = withRetries(qm.msg.Headers, MaxRetries)
				HandleProcessingError(consumerCh, qm.msg, qm.queueName)
			default:
				logger.Error("[Queue] Error processing message", "queue", qm.queueName, "err", processingErr)
				HandleProcessingError(consumerCh, qm.msg, qm.queueName)
			}
		}
	}
}

func withRetries(headers amqp091.Table, n int) amqp091.Table {
	out := amqp091.Table{}
	for k, v := range headers {
		out[k] = v
	}
	out["x-retries"] = int32(n)
	return out
}
