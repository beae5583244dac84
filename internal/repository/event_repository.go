package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/space-booking/internal/model"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

// EventRepository читает журнал аудита. Пишут в него транзакции
// бронирований и каталога, вместе с изменением, которое фиксируют.
type EventRepository interface {
	ListRecent(ctx context.Context, limit int) ([]model.Event, error)
	ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]model.Event, error)
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) ListRecent(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	if limit > MaxAuditLimit {
		limit = MaxAuditLimit
	}

	var events []model.Event
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).
		Error
	return events, err
}

func (r *GormEventRepository) ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("space_id = ?", spaceID).
		Order("created_at ASC").
		Find(&events).
		Error
	return events, err
}

func newEvent(
	t model.EventType,
	userID, bookingID, spaceID *uuid.UUID,
	details map[string]any,
) (*model.Event, error) {
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("marshal %s details: %w", t, err)
	}
	return &model.Event{
		EventType: t,
		UserID:    userID,
		BookingID: bookingID,
		SpaceID:   spaceID,
		Details:   datatypes.JSON(raw),
	}, nil
}

func bookingEvent(t model.EventType, b *model.Booking, details map[string]any) (*model.Event, error) {
	userID, bookingID, spaceID := b.UserID, b.ID, b.SpaceID
	if details == nil {
		details = map[string]any{}
	}
	details["start_time"] = b.StartTime
	details["end_time"] = b.EndTime
	return newEvent(t, &userID, &bookingID, &spaceID, details)
}
