// Package ingest accepts sensor reports from devices, validates them,
// and persists them. The HTTP API and the AMQP consumer both feed
// through this service.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mkrogh/homewatch/internal/sensor"
	"github.com/mkrogh/homewatch/internal/store"
	"github.com/mkrogh/homewatch/pkg/metrics"
)

// Service validates and persists incoming sensor reports.
type Service struct {
	logger   *slog.Logger
	readings *store.ReadingStore
	motion   *store.MotionStore
	door     *store.DoorStore
	metrics  *metrics.ServerMetrics // Optional metrics
}

// ServiceConfig holds the configuration for the Service.
type ServiceConfig struct {
	Logger   *slog.Logger
	Readings *store.ReadingStore
	Motion   *store.MotionStore
	Door     *store.DoorStore
	Metrics  *metrics.ServerMetrics
}

// NewService creates a new Service instance.
func NewService(cfg *ServiceConfig) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("service config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.Readings == nil {
		return nil, errors.New("reading store cannot be nil")
	}

	if cfg.Motion == nil {
		return nil, errors.New("motion store cannot be nil")
	}

	if cfg.Door == nil {
		return nil, errors.New("door store cannot be nil")
	}

	return &Service{
		logger:   cfg.Logger,
		readings: cfg.Readings,
		motion:   cfg.Motion,
		door:     cfg.Door,
		metrics:  cfg.Metrics,
	}, nil
}

// RecordEnvironment validates and persists a temperature/humidity
// report. Nothing is stored when validation fails.
func (s *Service) RecordEnvironment(ctx context.Context, report EnvironmentReport) error {
	tempRaw := report.temperatureField()
	humRaw := report.humidityField()

	if tempRaw == nil || humRaw == nil || report.Timestamp == "" {
		s.reject("environment")
		return validationErr("missing required fields (temperature, humidity, timestamp)")
	}

	timestamp := strings.TrimSpace(report.Timestamp)
	if timestamp == "" {
		s.reject("environment")
		return validationErr("invalid timestamp format")
	}

	temp, hum, err := sensor.Validate(tempRaw, humRaw)
	if err != nil {
		s.reject("environment")
		var verr *sensor.ValidationError
		if errors.As(err, &verr) {
			return &Error{Kind: KindValidation, err: err, msg: verr.Message}
		}
		return &Error{Kind: KindValidation, err: err, msg: err.Error()}
	}

	if err := s.readings.Insert(ctx, temp, hum, timestamp); err != nil {
		return storageErr(err)
	}

	s.ingested("environment")
	s.logger.Info("sensor data stored",
		"temperature", temp,
		"humidity", hum,
		"timestamp", timestamp,
	)
	return nil
}

// RecordMotion validates and persists a PIR report.
func (s *Service) RecordMotion(ctx context.Context, report MotionReport) error {
	if report.PIR == nil || report.Timestamp == "" {
		s.reject("motion")
		return validationErr("missing required fields (pir, timestamp)")
	}

	detected, ok := toBoolish(report.PIR)
	if !ok {
		s.reject("motion")
		return validationErr("pir must be a boolean, number, or truthy string")
	}

	if err := s.motion.Insert(ctx, detected, report.Timestamp); err != nil {
		return storageErr(err)
	}

	s.ingested("motion")
	s.logger.Info("motion event stored", "detected", detected, "timestamp", report.Timestamp)
	return nil
}

// RecordDoorState validates and appends an observed door state to the
// event log. The wire contract is strict: is_open must be a native JSON
// boolean.
func (s *Service) RecordDoorState(ctx context.Context, report DoorStateReport) error {
	if report.IsOpen == nil || report.Timestamp == "" {
		s.reject("door_state")
		return validationErr("missing required fields (is_open, timestamp)")
	}

	isOpen, ok := report.IsOpen.(bool)
	if !ok {
		s.reject("door_state")
		return validationErr("is_open must be a boolean")
	}

	if err := s.door.LogState(ctx, isOpen, report.Timestamp); err != nil {
		return storageErr(err)
	}

	s.ingested("door_state")
	s.logger.Info("door state logged", "is_open", isOpen, "timestamp", report.Timestamp)
	return nil
}

func (s *Service) ingested(kind string) {
	if s.metrics != nil {
		s.metrics.ReportsIngested.WithLabelValues(kind).Inc()
	}
}

func (s *Service) reject(kind string) {
	if s.metrics != nil {
		s.metrics.ReportsRejected.WithLabelValues(kind).Inc()
	}
}

// toBoolish accepts the value shapes PIR firmware is known to send:
// native booleans, numbers (non-zero means motion), and a small set of
// string forms.
func toBoolish(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case float64:
		return val != 0, true
	case int:
		return val != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes", "on":
			return true, true
		case "false", "0", "no", "off":
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}
