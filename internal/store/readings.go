package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// ReadingStore persists and lists temperature/humidity readings.
type ReadingStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewReadingStore creates a ReadingStore.
func NewReadingStore(db *gorm.DB, logger *slog.Logger) (*ReadingStore, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &ReadingStore{db: db, logger: logger}, nil
}

// Insert appends a reading. Readings are immutable once stored.
func (s *ReadingStore) Insert(ctx context.Context, temperature, humidity float64, timestamp string) error {
	reading := SensorReading{
		Temperature: temperature,
		Humidity:    humidity,
		Timestamp:   timestamp,
	}

	if err := s.db.WithContext(ctx).Create(&reading).Error; err != nil {
		return fmt.Errorf("failed to store sensor reading: %w", err)
	}

	s.logger.Debug("sensor reading stored",
		"temperature", temperature,
		"humidity", humidity,
		"timestamp", timestamp,
	)
	return nil
}

// List returns all readings, newest first.
func (s *ReadingStore) List(ctx context.Context) ([]SensorReading, error) {
	var readings []SensorReading
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&readings).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch sensor readings: %w", err)
	}
	return readings, nil
}

// Count returns the number of stored readings.
func (s *ReadingStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&SensorReading{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sensor readings: %w", err)
	}
	return count, nil
}
