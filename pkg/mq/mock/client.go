// Package mock provides a hand-written test double for the mq package.
package mock

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mkrogh/homewatch/pkg/metrics"
)

// Client is an in-memory stand-in for mq.Client. Pushed payloads are
// recorded and deliveries are fed through the Deliveries channel.
type Client struct {
	mu         sync.Mutex
	pushed     [][]byte
	metrics    *metrics.MQMetrics
	Deliveries chan amqp.Delivery

	// PushErr, when set, is returned by Push and UnsafePush.
	PushErr error
	// ConsumeErr, when set, is returned by Consume.
	ConsumeErr error
}

// NewClient creates a mock client with a buffered delivery channel.
func NewClient() *Client {
	return &Client{
		Deliveries: make(chan amqp.Delivery, 16),
	}
}

// Push records the payload.
func (c *Client) Push(_ context.Context, data []byte) error {
	if c.PushErr != nil {
		return c.PushErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushed = append(c.pushed, append([]byte(nil), data...))
	return nil
}

// UnsafePush records the payload.
func (c *Client) UnsafePush(ctx context.Context, data []byte) error {
	return c.Push(ctx, data)
}

// Consume returns the delivery channel.
func (c *Client) Consume() (<-chan amqp.Delivery, error) {
	if c.ConsumeErr != nil {
		return nil, c.ConsumeErr
	}
	return c.Deliveries, nil
}

// Close closes the delivery channel.
func (c *Client) Close() error {
	close(c.Deliveries)
	return nil
}

// SetMetrics records the metrics collector, mirroring mq.Client.
func (c *Client) SetMetrics(m *metrics.MQMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
}

// Metrics returns the recorded metrics collector, if any.
func (c *Client) Metrics() *metrics.MQMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

// Pushed returns a copy of all recorded payloads.
func (c *Client) Pushed() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.pushed))
	copy(out, c.pushed)
	return out
}
