package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Leganyst/space-booking/internal/apperror"
	"github.com/Leganyst/space-booking/internal/calendar"
	"github.com/Leganyst/space-booking/internal/clock"
	"github.com/Leganyst/space-booking/internal/events"
	"github.com/Leganyst/space-booking/internal/model"
	"github.com/Leganyst/space-booking/internal/obs"
	"github.com/Leganyst/space-booking/internal/repository"
)

// BookingService ведёт журнал бронирований: приём броней с проверкой
// пересечений, отмена, список броней пользователя и снятие просроченных.
// Это единственное место, где меняется статус пространства.
type BookingService struct {
	bookingRepo repository.BookingRepository
	publisher   events.Publisher
	clock       clock.Clock
	loc         *time.Location
	log         *slog.Logger
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	publisher events.Publisher,
	clk clock.Clock,
	loc *time.Location,
	log *slog.Logger,
) *BookingService {
	if clk == nil {
		clk = clock.Real()
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	if publisher == nil {
		publisher = events.NewLogPublisher(log)
	}
	return &BookingService{
		bookingRepo: bookingRepo,
		publisher:   publisher,
		clock:       clk,
		loc:         loc,
		log:         log,
	}
}

// Book бронирует пространство на окно [start, end).
func (s *BookingService) Book(
	ctx context.Context,
	userID uuid.UUID,
	spaceID, start, end string,
) (_ *model.Booking, err error) {
	ctx, span := obs.Tracer().Start(ctx, "BookingService.Book")
	defer func() { endSpan(span, err) }()

	spaceID, start, end = strings.TrimSpace(spaceID), strings.TrimSpace(start), strings.TrimSpace(end)
	if spaceID == "" || start == "" || end == "" {
		return nil, apperror.BadRequest("space_id, start_time and end_time are required")
	}
	sid, err := parseID(spaceID, "space_id")
	if err != nil {
		return nil, err
	}
	window, err := calendar.ParseTimeRange(start, end, s.loc)
	if err != nil {
		return nil, timeRangeErr(err)
	}
	span.SetAttributes(
		attribute.String("space.id", sid.String()),
		attribute.String("booking.start", window.Start.Format(time.RFC3339)),
		attribute.String("booking.end", window.End.Format(time.RFC3339)),
	)

	b := &model.Booking{
		UserID:    userID,
		SpaceID:   sid,
		StartTime: window.Start,
		EndTime:   window.End,
	}
	if err := s.bookingRepo.CreateWithNoOverlap(ctx, b); err != nil {
		return nil, mapRepoErr(err)
	}

	s.publish(ctx, events.KeyBookingCreated, b)
	return b, nil
}

// Cancel отменяет действующую бронь пользователя на пространство.
// Прошло ли окно брони, не проверяется.
func (s *BookingService) Cancel(ctx context.Context, userID uuid.UUID, spaceID string) (_ *model.Booking, err error) {
	ctx, span := obs.Tracer().Start(ctx, "BookingService.Cancel")
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(spaceID) == "" {
		return nil, apperror.BadRequest("space_id is required")
	}
	sid, err := parseID(spaceID, "space_id")
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("space.id", sid.String()))

	b, err := s.bookingRepo.CancelActive(ctx, userID, sid, calendar.Canonical(s.clock.Now()))
	if err != nil {
		return nil, mapRepoErr(err)
	}

	s.publish(ctx, events.KeyBookingCancelled, b)
	return b, nil
}

func (s *BookingService) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.BookingView, error) {
	views, err := s.bookingRepo.ListViewsByUser(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if views == nil {
		views = []model.BookingView{}
	}
	return views, nil
}

// ExpireElapsed снимает брони, окно которых закончилось до now, и
// освобождает их пространства. Каждое пространство идёт своей транзакцией,
// так что ошибка на одном не мешает остальным.
func (s *BookingService) ExpireElapsed(ctx context.Context, now time.Time) (_ []model.Booking, err error) {
	ctx, span := obs.Tracer().Start(ctx, "BookingService.ExpireElapsed")
	defer func() { endSpan(span, err) }()

	now = calendar.Canonical(now)
	ids, err := s.bookingRepo.ExpiredSpaceIDs(ctx, now)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	span.SetAttributes(attribute.Int("spaces.expired", len(ids)))

	var (
		expired []model.Booking
		errs    []error
	)
	for _, id := range ids {
		removed, err := s.bookingRepo.ExpireSpace(ctx, id, now)
		if err != nil {
			s.log.ErrorContext(ctx, "expire space failed", "space_id", id, "err", err)
			errs = append(errs, err)
			continue
		}
		for i := range removed {
			s.publish(ctx, events.KeyBookingExpired, &removed[i])
		}
		expired = append(expired, removed...)
	}

	if len(errs) > 0 {
		return expired, apperror.Internal(errors.Join(errs...))
	}
	return expired, nil
}

// publish отправляет событие после коммита. Ошибка доставки только
// логируется: бронь уже записана.
func (s *BookingService) publish(ctx context.Context, key string, b *model.Booking) {
	ev := events.NewBookingEvent(b, s.clock.Now())
	if err := s.publisher.PublishJSON(ctx, key, ev); err != nil {
		s.log.WarnContext(ctx, "publish event failed",
			"key", key,
			"booking_id", b.ID,
			"err", err,
		)
	}
}
