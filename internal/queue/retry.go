package queue

import (
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

// MaxRetries is the number of retries before a message goes to the DLQ.
const MaxRetries = 10

type rawPublisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Retries reads the x-retries header. The broker may hand the counter back
// with a different integer width than it was sent with.
func Retries(headers amqp091.Table) int {
	switch v := headers["x-retries"].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	case int16:
		return int(v)
	case int8:
		return int(v)
	case uint8:
		return int(v)
	default:
		return 0
	}
}

// HandleProcessingError moves a failed message to the retry queue with an
// increased x-retries header or, after MaxRetries, to the dead-letter
// queue. The original delivery is acked once the copy is published.
func HandleProcessingError(ch rawPublisher, msg amqp091.Delivery, queueName string) {
	retries := Retries(msg.Headers)

	if retries >= MaxRetries {
		dlqName := queueName + "_dlq"
		logger.Info("[Queue] Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp091.Publishing{
				ContentType: msg.ContentType,
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("[Queue] Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			_ = msg.Nack(false, true)
			return
		}
		_ = msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["x-retries"] = int32(retries + 1)

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp091.Publishing{
			ContentType:  msg.ContentType,
			Body:         msg.Body,
			Headers:      headers,
			DeliveryMode: amqp091.Persistent,
		},
	)
	if pubErr != nil {
		logger.Error("[Queue] Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}
