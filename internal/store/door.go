package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

const (
	// CommandTimeout is the freshness window: a command older than this
	// is never delivered to a poller.
	CommandTimeout = 10 * time.Second

	// RetireOffset is subtracted from a delivered command's issue time so
	// it permanently falls outside the freshness window. It must exceed
	// CommandTimeout by a wide margin.
	RetireOffset = time.Hour
)

// Command is a desired door state delivered to the device poller.
type Command string

const (
	CommandOpen  Command = "open"
	CommandClose Command = "close"
)

// DoorStatus is the last observed physical door state.
type DoorStatus string

const (
	DoorOpen    DoorStatus = "Open"
	DoorClosed  DoorStatus = "Closed"
	DoorUnknown DoorStatus = "Unknown"
)

// DoorStore manages the pending-command slot and the observed-state log
// for the door solenoid. At most one command is ever pending: issuing a
// new command supersedes the previous one, and a poll delivers the
// pending command to at most one caller.
type DoorStore struct {
	db     *gorm.DB
	logger *slog.Logger
	nowFn  func() time.Time
}

// NewDoorStore creates a DoorStore.
func NewDoorStore(db *gorm.DB, logger *slog.Logger) (*DoorStore, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &DoorStore{
		db:     db,
		logger: logger,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// SetNow overrides the clock. Tests only.
func (s *DoorStore) SetNow(now func() time.Time) {
	s.nowFn = now
}

// Issue records a new desired door state and retires any still-pending
// command, keeping the pending slot single-occupancy.
func (s *DoorStore) Issue(ctx context.Context, open bool) error {
	now := s.nowFn()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&DoorCommand{}).
			Where("retired_at IS NULL").
			Update("retired_at", now).Error; err != nil {
			return err
		}

		return tx.Create(&DoorCommand{
			Open:     open,
			IssuedAt: now,
		}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to store door command: %w", err)
	}

	s.logger.Info("door command issued", "open", open)
	return nil
}

// Poll returns the pending command if it lies inside the freshness
// window and retires it, or nil when nothing is deliverable. The
// retiring UPDATE is guarded on the retired marker still being unset,
// so concurrent pollers deliver each command to at most one caller; a
// poller that loses the race re-selects.
func (s *DoorStore) Poll(ctx context.Context) (*Command, error) {
	for {
		now := s.nowFn()
		windowStart := now.Add(-CommandTimeout)

		var cmd DoorCommand
		err := s.db.WithContext(ctx).
			Where("retired_at IS NULL AND issued_at > ?", windowStart).
			Order("issued_at DESC").
			Order("id DESC").
			First(&cmd).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to select door command: %w", err)
		}

		res := s.db.WithContext(ctx).
			Model(&DoorCommand{}).
			Where("id = ? AND retired_at IS NULL", cmd.ID).
			Updates(map[string]any{
				"retired_at": now,
				"delivered":  true,
				"issued_at":  cmd.IssuedAt.Add(-RetireOffset),
			})
		if res.Error != nil {
			return nil, fmt.Errorf("failed to retire door command: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// A concurrent poller or a newer issue got there first.
			continue
		}

		command := CommandClose
		if cmd.Open {
			command = CommandOpen
		}

		s.logger.Info("door command delivered", "command", command, "command_id", cmd.ID)
		return &command, nil
	}
}

// LogState appends an observed physical door state to the event log.
// Log entries never participate in command delivery.
func (s *DoorStore) LogState(ctx context.Context, isOpen bool, timestamp string) error {
	event := DoorEvent{
		IsOpen:    isOpen,
		Timestamp: timestamp,
	}

	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("failed to store door event: %w", err)
	}

	s.logger.Debug("door state logged", "is_open", isOpen, "timestamp", timestamp)
	return nil
}

// LatestStatus returns the most recently logged door state, or
// DoorUnknown when nothing has been logged yet.
func (s *DoorStore) LatestStatus(ctx context.Context) (DoorStatus, error) {
	var event DoorEvent
	err := s.db.WithContext(ctx).Order("id DESC").First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DoorUnknown, nil
	}
	if err != nil {
		return DoorUnknown, fmt.Errorf("failed to fetch door status: %w", err)
	}

	if event.IsOpen {
		return DoorOpen, nil
	}
	return DoorClosed, nil
}

// Events returns the observed door states, newest first.
func (s *DoorStore) Events(ctx context.Context) ([]DoorEvent, error) {
	var events []DoorEvent
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch door events: %w", err)
	}
	return events, nil
}
