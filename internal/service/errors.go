package service

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Leganyst/space-booking/internal/apperror"
	"github.com/Leganyst/space-booking/internal/repository"
)

var (
	ErrInvalidCredentials = apperror.New(apperror.KindAuth, "invalid_credentials", "invalid username or password")
	ErrDuplicateUsername  = apperror.New(apperror.KindConflict, "duplicate_username", "username already exists")
	ErrUserNotFound       = apperror.New(apperror.KindNotFound, "user_not_found", "user not found")
	ErrSpaceNotFound      = apperror.New(apperror.KindNotFound, "space_not_found", "space not found")
	ErrBookingNotFound    = apperror.New(apperror.KindNotFound, "booking_not_found", "no active booking found for this space")
	ErrTimeConflict       = apperror.New(apperror.KindConflict, "time_conflict", "the space is already booked for an overlapping time")
	ErrSpaceUnavailable   = apperror.New(apperror.KindConflict, "space_unavailable", "space is not available")
)

// mapRepoErr переводит ошибки репозиториев в ошибки API.
// Всё неизвестное: внутренняя ошибка, детали уходят только в лог.
func mapRepoErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound.Wrap(err)
	case errors.Is(err, repository.ErrDuplicateUsername):
		return ErrDuplicateUsername.Wrap(err)
	case errors.Is(err, repository.ErrSpaceNotFound):
		return ErrSpaceNotFound.Wrap(err)
	case errors.Is(err, repository.ErrBookingNotFound):
		return ErrBookingNotFound.Wrap(err)
	case errors.Is(err, repository.ErrOverlap):
		return ErrTimeConflict.Wrap(err)
	case errors.Is(err, repository.ErrSpaceUnavailable):
		return ErrSpaceUnavailable.Wrap(err)
	}
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apperror.Internal(err)
}

// endSpan отмечает в спане ошибку, если она внутренняя, и закрывает его.
// Ошибки клиента (400/401/404) спан не портят.
func endSpan(span trace.Span, err error) {
	if err != nil && apperror.KindOf(err) == apperror.KindInternal {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
