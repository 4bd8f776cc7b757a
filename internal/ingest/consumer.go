package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mkrogh/homewatch/pkg/metrics"
	"github.com/mkrogh/homewatch/pkg/mq"
)

// Consumer drains environment reports from a RabbitMQ queue and feeds
// them through the ingestion service. Devices that cannot reach the
// HTTP API directly publish their reports here instead.
type Consumer struct {
	logger   *slog.Logger
	service  *Service
	mqClient mq.ClientInterface
	done     chan struct{}
}

// ConsumerConfig holds the configuration for the Consumer.
type ConsumerConfig struct {
	Logger      *slog.Logger
	Service     *Service
	RabbitMQURL string
	QueueName   string

	// MQMetrics, when set, is attached to the MQ client.
	MQMetrics *metrics.MQMetrics

	// Client overrides the MQ client. Tests only; when nil a real
	// client is created from RabbitMQURL and QueueName.
	Client mq.ClientInterface
}

// NewConsumer creates a new Consumer instance.
func NewConsumer(cfg *ConsumerConfig) (*Consumer, error) {
	if cfg == nil {
		return nil, errors.New("consumer config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.Service == nil {
		return nil, errors.New("ingest service cannot be nil")
	}

	client := cfg.Client
	if client == nil {
		if cfg.RabbitMQURL == "" {
			return nil, errors.New("rabbitmq URL cannot be empty")
		}
		if cfg.QueueName == "" {
			return nil, errors.New("queue name cannot be empty")
		}
		client = mq.New(cfg.QueueName, cfg.RabbitMQURL, cfg.Logger)
	}

	if cfg.MQMetrics != nil {
		if mc, ok := client.(interface{ SetMetrics(*metrics.MQMetrics) }); ok {
			mc.SetMetrics(cfg.MQMetrics)
		}
	}

	return &Consumer{
		logger:   cfg.Logger,
		service:  cfg.Service,
		mqClient: client,
		done:     make(chan struct{}),
	}, nil
}

// Start begins consuming reports from RabbitMQ.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("starting report consumer")

	// Give the client time to establish its first connection.
	time.Sleep(2 * time.Second)

	deliveries, err := c.mqClient.Consume()
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("report consumer started, waiting for messages")

	go c.processMessages(ctx, deliveries)

	return nil
}

// processMessages drains the deliveries channel until shutdown.
func (c *Consumer) processMessages(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("context canceled, stopping message processing")
			close(c.done)
			return

		case delivery, ok := <-deliveries:
			if !ok {
				c.logger.Warn("deliveries channel closed")
				close(c.done)
				return
			}

			c.handleDelivery(ctx, delivery)
		}
	}
}

// handleDelivery processes a single report delivery. Malformed and
// invalid payloads are acked so they are not redelivered; storage
// failures are nacked for requeue.
func (c *Consumer) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	var report EnvironmentReport
	if err := json.Unmarshal(delivery.Body, &report); err != nil {
		c.logger.Error("failed to unmarshal environment report", "error", err)
		c.ack(delivery)
		return
	}

	if err := c.service.RecordEnvironment(ctx, report); err != nil {
		if IsValidation(err) {
			c.logger.Warn("rejected environment report", "error", err)
			c.ack(delivery)
			return
		}

		c.logger.Error("failed to store environment report", "error", err)
		if nackErr := delivery.Nack(false, true); nackErr != nil {
			c.logger.Error("failed to nack message", "error", nackErr)
		}
		return
	}

	c.ack(delivery)
}

func (c *Consumer) ack(delivery amqp.Delivery) {
	if err := delivery.Ack(false); err != nil {
		c.logger.Error("failed to ack message", "error", err)
	}
}

// Stop shuts down the consumer and closes the MQ client.
func (c *Consumer) Stop() error {
	c.logger.Info("stopping report consumer")

	select {
	case <-c.done:
	case <-time.After(5 * time.Second):
		c.logger.Warn("timed out waiting for message processing to stop")
	}

	if err := c.mqClient.Close(); err != nil {
		return fmt.Errorf("failed to close MQ client: %w", err)
	}

	return nil
}
