// Package events публикует доменные события бронирований после коммита.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/space-booking/internal/model"
)

// Ключи маршрутизации на topic exchange.
const (
	KeyBookingCreated   = "booking.created"
	KeyBookingCancelled = "booking.cancelled"
	KeyBookingExpired   = "booking.expired"
)

type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
	Close() error
}

// BookingEvent: тело сообщения о брони.
type BookingEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     uuid.UUID `json:"user_id"`
	SpaceID    uuid.UUID `json:"space_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewBookingEvent(b *model.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		BookingID:  b.ID,
		UserID:     b.UserID,
		SpaceID:    b.SpaceID,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Status:     string(b.Status),
		OccurredAt: at.UTC(),
	}
}
