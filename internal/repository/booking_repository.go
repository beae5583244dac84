package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/space-booking/internal/calendar"
	"github.com/Leganyst/space-booking/internal/model"
)

type BookingRepository interface {
	// Создать бронь, если окно свободно и пространство доступно.
	// Ошибки: ErrSpaceNotFound, ErrOverlap, ErrSpaceUnavailable.
	CreateWithNoOverlap(ctx context.Context, b *model.Booking) error
	// Отменить действующую бронь пользователя на пространство.
	CancelActive(ctx context.Context, userID, spaceID uuid.UUID, at time.Time) (*model.Booking, error)
	// Брони пользователя с описанием пространства, новые первыми.
	ListViewsByUser(ctx context.Context, userID uuid.UUID) ([]model.BookingView, error)
	// Занятые пространства, у которых окно закончилось до now.
	ExpiredSpaceIDs(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	// Снять просроченные брони одного пространства; возвращает удалённые.
	ExpireSpace(ctx context.Context, spaceID uuid.UUID, now time.Time) ([]model.Booking, error)
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// CreateWithNoOverlap выполняется в транзакции под блокировкой строки
// пространства, поэтому параллельные брони одного пространства идут по очереди.
func (r *GormBookingRepository) CreateWithNoOverlap(ctx context.Context, b *model.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var space model.Space
		if err := lockSpace(tx, b.SpaceID, &space); err != nil {
			return err
		}

		// Сравниваем со всеми действующими бронями, не только с последней.
		active, err := activeBookings(tx, b.SpaceID)
		if err != nil {
			return err
		}
		existing := make([]calendar.TimeRange, 0, len(active))
		for _, a := range active {
			existing = append(existing, calendar.TimeRange{Start: a.StartTime, End: a.EndTime})
		}
		window := calendar.TimeRange{Start: b.StartTime, End: b.EndTime}
		if overlap, _ := calendar.HasOverlap(window, existing, false); overlap {
			return ErrOverlap
		}

		if space.Status != model.SpaceStatusAvailable {
			return ErrSpaceUnavailable
		}

		b.Status = model.BookingStatusBooked
		if err := tx.Create(b).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Space{}).Where("id = ?", space.ID).Updates(map[string]any{
			"status":     model.SpaceStatusReserved,
			"start_time": b.StartTime,
			"end_time":   b.EndTime,
		}).Error; err != nil {
			return err
		}

		ev, err := bookingEvent(model.EventTypeBookingCreated, b, nil)
		if err != nil {
			return err
		}
		return tx.Create(ev).Error
	})
}

func (r *GormBookingRepository) CancelActive(
	ctx context.Context,
	userID, spaceID uuid.UUID,
	at time.Time,
) (*model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Порядок блокировок как в CreateWithNoOverlap: сначала пространство.
		var space model.Space
		if err := lockSpace(tx, spaceID, &space); err != nil {
			return notFoundAs(err, ErrSpaceNotFound, ErrBookingNotFound)
		}

		err := tx.Where("user_id = ? AND space_id = ? AND status = ?", userID, spaceID, model.BookingStatusBooked).
			Order("start_time ASC").
			First(&b).
			Error
		if err != nil {
			return notFound(err, ErrBookingNotFound)
		}

		b.Status = model.BookingStatusCancelled
		b.CancelledAt = &at
		if err := tx.Model(&model.Booking{}).Where("id = ?", b.ID).Updates(map[string]any{
			"status":       b.Status,
			"cancelled_at": at,
		}).Error; err != nil {
			return err
		}

		if err := refreshSpace(tx, spaceID); err != nil {
			return err
		}

		ev, err := bookingEvent(model.EventTypeBookingCancelled, &b, map[string]any{"cancelled_at": at})
		if err != nil {
			return err
		}
		return tx.Create(ev).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) ListViewsByUser(ctx context.Context, userID uuid.UUID) ([]model.BookingView, error) {
	var views []model.BookingView
	err := r.db.WithContext(ctx).
		Table("bookings AS b").
		Select(`b.id AS booking_id, b.space_id, s.name AS space_name, s.location, s.image_url,
			b.start_time, b.end_time, b.status, b.cancelled_at, b.created_at`).
		Joins("JOIN spaces AS s ON s.id = b.space_id").
		Where("b.user_id = ?", userID).
		Order("b.created_at DESC").
		Scan(&views).
		Error
	return views, err
}

func (r *GormBookingRepository) ExpiredSpaceIDs(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.Space{}).
		Where("status = ? AND end_time < ?", model.SpaceStatusReserved, now).
		Order("end_time ASC").
		Pluck("id", &ids).
		Error
	return ids, err
}

func (r *GormBookingRepository) ExpireSpace(
	ctx context.Context,
	spaceID uuid.UUID,
	now time.Time,
) ([]model.Booking, error) {
	var expired []model.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var space model.Space
		if err := lockSpace(tx, spaceID, &space); err != nil {
			if err == ErrSpaceNotFound {
				// удалили между выборкой и блокировкой
				return nil
			}
			return err
		}
		// Условие перепроверяем под блокировкой: бронь могли отменить.
		if space.Status != model.SpaceStatusReserved || space.EndTime == nil || !space.EndTime.Before(now) {
			return nil
		}

		if err := tx.Where("space_id = ? AND status = ? AND end_time < ?",
			spaceID, model.BookingStatusBooked, now).
			Find(&expired).Error; err != nil {
			return err
		}

		if len(expired) > 0 {
			ids := make([]uuid.UUID, 0, len(expired))
			for _, b := range expired {
				ids = append(ids, b.ID)
			}
			if err := tx.Where("id IN ?", ids).Delete(&model.Booking{}).Error; err != nil {
				return err
			}
			for i := range expired {
				ev, err := bookingEvent(model.EventTypeBookingExpired, &expired[i], map[string]any{"expired_at": now})
				if err != nil {
					return err
				}
				if err := tx.Create(ev).Error; err != nil {
					return err
				}
			}
		}

		return refreshSpace(tx, spaceID)
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}

func activeBookings(tx *gorm.DB, spaceID uuid.UUID) ([]model.Booking, error) {
	var out []model.Booking
	err := tx.Where("space_id = ? AND status = ?", spaceID, model.BookingStatusBooked).
		Order("start_time ASC").
		Find(&out).
		Error
	return out, err
}

// refreshSpace приводит статус и окно пространства к оставшимся броням:
// нет действующих: available без окна, иначе reserved с окном ближайшей.
func refreshSpace(tx *gorm.DB, spaceID uuid.UUID) error {
	active, err := activeBookings(tx, spaceID)
	if err != nil {
		return err
	}

	cols := map[string]any{
		"status":     model.SpaceStatusAvailable,
		"start_time": nil,
		"end_time":   nil,
	}
	if len(active) > 0 {
		next := active[0]
		cols = map[string]any{
			"status":     model.SpaceStatusReserved,
			"start_time": next.StartTime,
			"end_time":   next.EndTime,
		}
	}
	return tx.Model(&model.Space{}).Where("id = ?", spaceID).Updates(cols).Error
}

// notFoundAs переводит одну «не найдено» в другую.
func notFoundAs(err, from, to error) error {
	if err == from {
		return to
	}
	return err
}
