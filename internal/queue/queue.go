package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

// BuildQueue receives graph build jobs.
const BuildQueue = "build_queue"

// URL assembles the broker url from the RABBITMQ_* variables.
func URL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		util.GetEnv("RABBITMQ_USER"),
		util.GetEnv("RABBITMQ_PASSWORD"),
		util.GetEnvString("RABBITMQ_HOST", "localhost"),
		util.GetEnvString("RABBITMQ_PORT", "5672"),
	)
}

// Dial connects to the broker.
func Dial() (*amqp091.Connection, error) {
	conn, err := amqp091.Dial(URL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// Init connects to the broker and exits the program on failure.
func Init() *amqp091.Connection {
	conn, err := Dial()
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}
	return conn
}

// SetupQueues declares every queue together with its _dlq and its _retry
// queue. Messages in the retry queue return to the main queue after 10s.
func SetupQueues(ch *amqp091.Channel, queueNames []string) error {
	for _, name := range queueNames {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return fmt.Errorf("failed to declare %s: %w", name, err)
		}

		dlqName := name + "_dlq"
		_, err = ch.QueueDeclare(
			dlqName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to declare %s: %w", dlqName, err)
		}

		retryName := name + "_retry"
		_, err = ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             int32(10000),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			return fmt.Errorf("failed to declare %s: %w", retryName, err)
		}
	}

	return nil
}

// Publisher sends a message body to a named queue.
type Publisher interface {
	Publish(ctx context.Context, queueName string, data []byte) error
}

// ChannelPublisher publishes persistent messages on one channel.
type ChannelPublisher struct {
	ch *amqp091.Channel
	mu sync.Mutex
}

func NewChannelPublisher(ch *amqp091.Channel) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

// Publish sends data to queueName through the default exchange.
func (p *ChannelPublisher) Publish(ctx context.Context, queueName string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         data,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}
	return p.ch.PublishWithContext(ctx, "", queueName, false, false, publishing)
}
