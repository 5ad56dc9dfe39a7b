package messagequeue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// RabbitMQService implements the MessageQueue interface using RabbitMQ.
type RabbitMQService struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger

	mu       sync.Mutex // amqp channels are not safe for concurrent publishing
	declared map[string]bool
}

// RabbitMQConfig contains options for creating a new RabbitMQService.
type RabbitMQConfig struct {
	URL string
}

// NewRabbitMQService dials the broker and opens one channel.
func NewRabbitMQService(cfg RabbitMQConfig, logger *zap.Logger) (*RabbitMQService, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	logger.Info("Successfully connected to RabbitMQ and opened a channel")
	return &RabbitMQService{conn: conn, channel: ch, logger: logger, declared: make(map[string]bool)}, nil
}

// The suffixes name the fanout exchange and parking queue that receive
// messages rejected from a work queue.
const (
	DeadLetterExchangeSuffix = ".dlx"
	DeadLetterQueueSuffix    = ".dead"
)

// queueArgs routes rejected deliveries of queueName to its dead-letter
// exchange. A queue declared earlier without these arguments must be deleted
// once, or the broker refuses the declaration with PRECONDITION_FAILED.
func queueArgs(queueName string) amqp.Table {
	return amqp.Table{"x-dead-letter-exchange": queueName + DeadLetterExchangeSuffix}
}

// declare makes queueName a durable queue whose rejected messages are parked
// in queueName+".dead". Callers hold mu.
func (s *RabbitMQService) declare(queueName string) error {
	if s.declared[queueName] {
		return nil
	}
	dlx := queueName + DeadLetterExchangeSuffix
	dead := queueName + DeadLetterQueueSuffix
	if err := s.channel.ExchangeDeclare(dlx, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", dlx, err)
	}
	if _, err := s.channel.QueueDeclare(dead, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", dead, err)
	}
	if err := s.channel.QueueBind(dead, "", dlx, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s to %s: %w", dead, dlx, err)
	}
	_, err := s.channel.QueueDeclare(
		queueName,            // name
		true,                 // durable
		false,                // delete when unused
		false,                // exclusive
		false,                // no-wait
		queueArgs(queueName), // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}
	s.declared[queueName] = true
	return nil
}

// Publish sends a persistent JSON message to a RabbitMQ queue.
func (s *RabbitMQService) Publish(ctx context.Context, queueName string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.declare(queueName); err != nil {
		return err
	}

	err := s.channel.Publish(
		"",        // exchange
		queueName, // routing key (queue name)
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		return fmt.Errorf("failed to publish a message to queue %s: %w", queueName, err)
	}
	s.logger.Debug("Published message", zap.String("queue", queueName), zap.Int("bytes", len(body)))
	return nil
}

// Consume acknowledges each delivery manually after handler returns. A
// handler error rejects the delivery without requeue, which moves it to the
// queue's dead-letter queue.
func (s *RabbitMQService) Consume(ctx context.Context, queueName string, handler func(ctx context.Context, body []byte) error) error {
	s.mu.Lock()
	err := s.declare(queueName)
	if err == nil {
		err = s.channel.Qos(10, 0, false)
	}
	var msgs <-chan amqp.Delivery
	if err == nil {
		msgs, err = s.channel.Consume(
			queueName, // queue
			"",        // consumer
			false,     // auto-ack
			false,     // exclusive
			false,     // no-local
			false,     // no-wait
			nil,       // args
		)
	}
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to register a consumer for queue %s: %w", queueName, err)
	}

	s.logger.Info("Waiting for messages", zap.String("queue", queueName))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			if err := handler(ctx, d.Body); err != nil {
				s.logger.Warn("Message handler failed, dead-lettering",
					zap.String("queue", queueName),
					zap.String("dead_letter_queue", queueName+DeadLetterQueueSuffix),
					zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Close closes the RabbitMQ channel and connection.
func (s *RabbitMQService) Close() error {
	var lastErr error
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			s.logger.Warn("Error closing RabbitMQ channel", zap.Error(err))
			lastErr = err
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.logger.Warn("Error closing RabbitMQ connection", zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}
