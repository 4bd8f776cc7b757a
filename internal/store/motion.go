package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// MotionStore persists and lists PIR motion events.
type MotionStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewMotionStore creates a MotionStore.
func NewMotionStore(db *gorm.DB, logger *slog.Logger) (*MotionStore, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &MotionStore{db: db, logger: logger}, nil
}

// Insert appends a motion event.
func (s *MotionStore) Insert(ctx context.Context, detected bool, timestamp string) error {
	event := MotionEvent{
		Detected:  detected,
		Timestamp: timestamp,
	}

	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("failed to store motion event: %w", err)
	}

	s.logger.Debug("motion event stored", "detected", detected, "timestamp", timestamp)
	return nil
}

// List returns all motion events, newest first.
func (s *MotionStore) List(ctx context.Context) ([]MotionEvent, error) {
	var events []MotionEvent
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch motion events: %w", err)
	}
	return events, nil
}
