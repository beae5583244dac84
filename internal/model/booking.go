package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// bookings
type Booking struct {
	ID          uuid.UUID     `gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID     `gorm:"type:char(36);not null;index"`
	SpaceID     uuid.UUID     `gorm:"type:char(36);not null;index:idx_bookings_space_status"`
	StartTime   time.Time     `gorm:"not null"`
	EndTime     time.Time     `gorm:"not null;index"`
	Status      BookingStatus `gorm:"type:varchar(16);not null;index:idx_bookings_space_status"`
	CancelledAt *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`

	// Удаление пространства чистит брони явно в той же транзакции,
	// каскада на уровне БД нет.
	User  *User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Space *Space `gorm:"foreignKey:SpaceID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BookingView: бронь вместе с описанием пространства, для списка «мои брони».
type BookingView struct {
	BookingID   uuid.UUID
	SpaceID     uuid.UUID
	SpaceName   string
	Location    string
	ImageURL    string
	StartTime   time.Time
	EndTime     time.Time
	Status      BookingStatus
	CancelledAt *time.Time
	CreatedAt   time.Time
}
