package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Leganyst/space-booking/internal/apperror"
	"github.com/Leganyst/space-booking/internal/calendar"
	"github.com/Leganyst/space-booking/internal/config"
	"github.com/Leganyst/space-booking/internal/model"
	"github.com/Leganyst/space-booking/internal/obs"
	"github.com/Leganyst/space-booking/internal/repository"
)

// SpaceFields: поля пространства из запроса; nil значит «не передано».
// Время приходит строкой и разбирается в часовом поясе сервиса.
type SpaceFields struct {
	Name       *string
	Location   *string
	UsageNotes *string
	ImageURL   *string
	StartTime  *string
	EndTime    *string
}

// SpaceQuery: фильтры списка. При Page == 0 пагинации нет.
type SpaceQuery struct {
	Location string
	Status   string
	Page     int
	PageSize int
}

// CatalogService: CRUD каталога пространств. Статус пространства
// здесь не меняется: это делает только BookingService.
type CatalogService struct {
	spaceRepo repository.SpaceRepository
	loc       *time.Location
}

func NewCatalogService(spaceRepo repository.SpaceRepository, loc *time.Location) *CatalogService {
	if loc == nil {
		loc = time.UTC
	}
	return &CatalogService{spaceRepo: spaceRepo, loc: loc}
}

func (s *CatalogService) Create(ctx context.Context, f SpaceFields) (_ *model.Space, err error) {
	ctx, span := obs.Tracer().Start(ctx, "CatalogService.Create")
	defer func() { endSpan(span, err) }()

	if f.Name == nil || strings.TrimSpace(*f.Name) == "" {
		return nil, apperror.BadRequest("name is required")
	}
	window, err := s.parseWindow(f)
	if err != nil {
		return nil, err
	}

	space := &model.Space{
		Name:       strings.TrimSpace(*f.Name),
		Location:   deref(f.Location),
		UsageNotes: deref(f.UsageNotes),
		ImageURL:   deref(f.ImageURL),
		Status:     model.SpaceStatusAvailable,
	}
	if window != nil {
		space.StartTime = &window.Start
		space.EndTime = &window.End
	}

	if err := s.spaceRepo.Create(ctx, space); err != nil {
		return nil, mapRepoErr(err)
	}
	span.SetAttributes(attribute.String("space.id", space.ID.String()))
	return space, nil
}

func (s *CatalogService) List(ctx context.Context, q SpaceQuery) (_ calendar.Page[model.Space], err error) {
	ctx, span := obs.Tracer().Start(ctx, "CatalogService.List")
	defer func() { endSpan(span, err) }()

	filter := repository.SpaceFilter{Location: q.Location}
	if st := strings.TrimSpace(q.Status); st != "" {
		status := model.SpaceStatus(strings.ToLower(st))
		if !status.Valid() {
			return calendar.Page[model.Space]{}, apperror.BadRequest("status must be 'available' or 'reserved'")
		}
		filter.Status = status
	}
	if q.Page > 0 {
		filter.Page = calendar.NewPageRequest(q.Page, q.PageSize)
	}

	spaces, total, err := s.spaceRepo.List(ctx, filter)
	if err != nil {
		return calendar.Page[model.Space]{}, mapRepoErr(err)
	}
	if spaces == nil {
		spaces = []model.Space{}
	}
	return calendar.NewPage(spaces, filter.Page, total), nil
}

func (s *CatalogService) Update(ctx context.Context, id string, f SpaceFields) (_ *model.Space, err error) {
	ctx, span := obs.Tracer().Start(ctx, "CatalogService.Update")
	defer func() { endSpan(span, err) }()

	spaceID, err := parseID(id, "space id")
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("space.id", spaceID.String()))

	if f.Name != nil && strings.TrimSpace(*f.Name) == "" {
		return nil, apperror.BadRequest("name must not be empty")
	}
	window, err := s.parseWindow(f)
	if err != nil {
		return nil, err
	}

	upd := repository.SpaceUpdate{
		Location:   f.Location,
		UsageNotes: f.UsageNotes,
		ImageURL:   f.ImageURL,
	}
	if f.Name != nil {
		name := strings.TrimSpace(*f.Name)
		upd.Name = &name
	}
	if window != nil {
		upd.StartTime = &window.Start
		upd.EndTime = &window.End
	}

	space, err := s.spaceRepo.Update(ctx, spaceID, upd)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return space, nil
}

// Get возвращает одно пространство по id.
func (s *CatalogService) Get(ctx context.Context, id string) (*model.Space, error) {
	spaceID, err := parseID(id, "space id")
	if err != nil {
		return nil, err
	}
	space, err := s.spaceRepo.GetByID(ctx, spaceID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return space, nil
}

// Delete удаляет пространство и все его брони одной транзакцией.
func (s *CatalogService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := obs.Tracer().Start(ctx, "CatalogService.Delete")
	defer func() { endSpan(span, err) }()

	spaceID, err := parseID(id, "space id")
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("space.id", spaceID.String()))

	removed, err := s.spaceRepo.Delete(ctx, spaceID)
	if err != nil {
		return mapRepoErr(err)
	}
	span.SetAttributes(attribute.Int64("bookings.removed", removed))
	return nil
}

// SeedFromFile добавляет в каталог пространства из YAML-файла,
// пропуская те, чьё имя уже есть. Возвращает число добавленных.
func (s *CatalogService) SeedFromFile(ctx context.Context, path string) (int, error) {
	seed, err := config.LoadSeed(path)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, item := range seed {
		exists, err := s.spaceRepo.ExistsByName(ctx, item.Name)
		if err != nil {
			return created, mapRepoErr(err)
		}
		if exists {
			continue
		}
		name, location, notes, image := item.Name, item.Location, item.UsageNotes, item.ImageURL
		if _, err := s.Create(ctx, SpaceFields{
			Name:       &name,
			Location:   &location,
			UsageNotes: &notes,
			ImageURL:   &image,
		}); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// parseWindow разбирает окно использования: оба конца или ни одного.
func (s *CatalogService) parseWindow(f SpaceFields) (*calendar.TimeRange, error) {
	start, end := strings.TrimSpace(deref(f.StartTime)), strings.TrimSpace(deref(f.EndTime))
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, apperror.BadRequest("start_time and end_time must be set together")
	}
	tr, err := calendar.ParseTimeRange(start, end, s.loc)
	if err != nil {
		return nil, timeRangeErr(err)
	}
	return &tr, nil
}

func timeRangeErr(err error) error {
	if errors.Is(err, calendar.ErrInvalidTimeRange) {
		return apperror.BadRequest("end_time must be after start_time")
	}
	return apperror.BadRequest("start_time and end_time must be valid timestamps")
}

func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperror.BadRequest("invalid " + what)
	}
	return id, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
