package simulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mkrogh/homewatch/pkg/mq"
)

// timestampLayout matches what the real firmware sends.
const timestampLayout = "2006-01-02 15:04:05"

// environmentPayload is the wire form of a simulated climate reading.
type environmentPayload struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Timestamp   string  `json:"timestamp"`
}

// motionPayload is the wire form of a simulated PIR event.
type motionPayload struct {
	PIR       bool   `json:"pir"`
	Timestamp string `json:"timestamp"`
}

// Simulator publishes generated sensor traffic, either onto the
// RabbitMQ queue or straight at the HTTP ingestion API.
type Simulator struct {
	logger     *slog.Logger
	device     *Device
	generator  *Generator
	mqClient   mq.ClientInterface
	httpClient *http.Client
	baseURL    string
	interval   time.Duration
}

// Config holds the configuration for the Simulator. Exactly one of
// MQClient and BaseURL must be set.
type Config struct {
	Logger   *slog.Logger
	MQClient mq.ClientInterface
	BaseURL  string
	Interval time.Duration
}

// New creates a Simulator with a freshly faked device identity.
func New(cfg *Config) (*Simulator, error) {
	if cfg == nil {
		return nil, errors.New("simulator config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if (cfg.MQClient == nil) == (cfg.BaseURL == "") {
		return nil, errors.New("exactly one of MQ client and base URL must be set")
	}

	if cfg.Interval <= 0 {
		return nil, errors.New("interval must be positive")
	}

	device, err := NewDevice()
	if err != nil {
		return nil, fmt.Errorf("failed to fake device identity: %w", err)
	}

	return &Simulator{
		logger:     cfg.Logger,
		device:     device,
		generator:  NewGenerator(),
		mqClient:   cfg.MQClient,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    cfg.BaseURL,
		interval:   cfg.Interval,
	}, nil
}

// Run publishes readings on the configured interval until the context
// is canceled. Publish failures are logged and the loop keeps going.
func (s *Simulator) Run(ctx context.Context) error {
	s.logger.Info("starting simulator",
		"device_id", s.device.DeviceID,
		"firmware", s.device.Firmware,
		"interval", s.interval,
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("simulator stopped")
			return nil
		case now := <-ticker.C:
			if err := s.Tick(ctx, now); err != nil {
				s.logger.Error("failed to publish reading", "error", err)
			}
		}
	}
}

// Tick publishes one round of sensor traffic for the given instant.
func (s *Simulator) Tick(ctx context.Context, now time.Time) error {
	timestamp := now.Format(timestampLayout)
	temperature := s.generator.Temperature(now)
	humidity := s.generator.Humidity(now, temperature)

	env := environmentPayload{
		Temperature: temperature,
		Humidity:    humidity,
		Timestamp:   timestamp,
	}

	if err := s.publish(ctx, "/api/temp_fugt", env); err != nil {
		return fmt.Errorf("environment reading: %w", err)
	}

	s.logger.Debug("published reading",
		"temperature", temperature,
		"humidity", humidity,
		"timestamp", timestamp,
	)

	if s.generator.Motion(now) {
		motion := motionPayload{PIR: true, Timestamp: timestamp}
		if err := s.publish(ctx, "/api/pir", motion); err != nil {
			return fmt.Errorf("motion event: %w", err)
		}
		s.logger.Debug("published motion event", "timestamp", timestamp)
	}

	return nil
}

// publish sends a payload over whichever transport is configured. The
// queue carries environment readings only, so motion goes HTTP-only.
func (s *Simulator) publish(ctx context.Context, path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if s.mqClient != nil {
		if path != "/api/temp_fugt" {
			return nil
		}
		if err := s.mqClient.Push(ctx, data); err != nil {
			return fmt.Errorf("failed to push to queue: %w", err)
		}
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post reading: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("server rejected reading: %s", resp.Status)
	}

	return nil
}
