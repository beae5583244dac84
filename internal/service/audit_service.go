package service

import (
	"context"

	"github.com/Leganyst/space-booking/internal/model"
	"github.com/Leganyst/space-booking/internal/repository"
)

// AuditService отдаёт журнал аудита администратору.
type AuditService struct {
	eventRepo repository.EventRepository
}

func NewAuditService(eventRepo repository.EventRepository) *AuditService {
	return &AuditService{eventRepo: eventRepo}
}

func (s *AuditService) Recent(ctx context.Context, limit int) ([]model.Event, error) {
	evs, err := s.eventRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if evs == nil {
		evs = []model.Event{}
	}
	return evs, nil
}

// ForSpace: вся история одного пространства, от старых событий к новым.
// События удалённого пространства тоже отдаются: журнал не чистится.
func (s *AuditService) ForSpace(ctx context.Context, spaceID string) ([]model.Event, error) {
	id, err := parseID(spaceID, "space_id")
	if err != nil {
		return nil, err
	}
	evs, err := s.eventRepo.ListBySpace(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if evs == nil {
		evs = []model.Event{}
	}
	return evs, nil
}
