// Package store provides the persistence layer: gorm models, database
// bootstrap, and the repositories the handlers operate through.
//
// Sensor tables keep their legacy names so existing device firmware
// keeps working against the same schema.
package store

import (
	"time"
)

// User is a dashboard account. Password holds a bcrypt hash.
type User struct {
	Username string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"`
	ID       uint   `gorm:"primaryKey"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// SensorReading is one temperature/humidity report. Append-only.
type SensorReading struct {
	Timestamp   string    `gorm:"not null;index:idx_temp_fugt_timestamp"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	Temperature float64   `gorm:"column:temperatur;not null"`
	Humidity    float64   `gorm:"column:fugtighed;not null"`
	ID          uint      `gorm:"primaryKey"`
}

// TableName specifies the table name for SensorReading model.
func (SensorReading) TableName() string {
	return "temp_fugt"
}

// MotionEvent is one PIR report. Append-only.
type MotionEvent struct {
	Timestamp string    `gorm:"not null;index:idx_bevaegelse_timestamp"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	Detected  bool      `gorm:"column:beveagelse;not null"`
	ID        uint      `gorm:"primaryKey"`
}

// TableName specifies the table name for MotionEvent model.
func (MotionEvent) TableName() string {
	return "bevaegelse"
}

// DoorCommand is an operator-issued desired door state awaiting pickup
// by the device poller. RetiredAt stays NULL while the command is
// pending; issuing a newer command or delivering this one sets it, and
// a retired command is never delivered. Delivered records whether
// retirement happened through a poll (as opposed to supersession).
type DoorCommand struct {
	IssuedAt  time.Time  `gorm:"not null;index:idx_door_commands_issued_at"`
	RetiredAt *time.Time `gorm:"index:idx_door_commands_retired_at"`
	Open      bool       `gorm:"not null"`
	Delivered bool       `gorm:"not null;default:false"`
	ID        uint       `gorm:"primaryKey"`
}

// TableName specifies the table name for DoorCommand model.
func (DoorCommand) TableName() string {
	return "door_commands"
}

// DoorEvent is one observed physical door state reported back by the
// device. Append-only; the current status derives from the newest row.
type DoorEvent struct {
	Timestamp string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	IsOpen    bool      `gorm:"not null"`
	ID        uint      `gorm:"primaryKey"`
}

// TableName specifies the table name for DoorEvent model.
func (DoorEvent) TableName() string {
	return "door_events"
}
