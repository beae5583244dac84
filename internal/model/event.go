package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Тип события аудита.
type EventType string

const (
	EventTypeBookingCreated   EventType = "booking_created"
	EventTypeBookingCancelled EventType = "booking_cancelled"
	EventTypeBookingExpired   EventType = "booking_expired"
	EventTypeSpaceDeleted     EventType = "space_deleted"
)

// events: события аудита. Ссылки без внешних ключей: запись должна
// пережить удаление брони и пространства, о котором она рассказывает.
type Event struct {
	ID uuid.UUID `gorm:"type:char(36);primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`

	UserID    *uuid.UUID `gorm:"type:char(36);index"`
	BookingID *uuid.UUID `gorm:"type:char(36);index"`
	SpaceID   *uuid.UUID `gorm:"type:char(36);index"`

	Details datatypes.JSON
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
