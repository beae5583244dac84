package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/space-booking/internal/calendar"
	"github.com/Leganyst/space-booking/internal/model"
)

// SpaceFilter: фильтры каталога; пустые поля не применяются.
type SpaceFilter struct {
	Location string // подстрока, без учёта регистра
	Status   model.SpaceStatus
	Page     calendar.PageRequest
}

// SpaceUpdate описывает частичное обновление; nil значит «не трогать».
// Статуса здесь нет, его меняет только журнал бронирований.
type SpaceUpdate struct {
	Name       *string
	Location   *string
	UsageNotes *string
	ImageURL   *string
	StartTime  *time.Time
	EndTime    *time.Time
}

func (u SpaceUpdate) columns() map[string]any {
	cols := map[string]any{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Location != nil {
		cols["location"] = *u.Location
	}
	if u.UsageNotes != nil {
		cols["usage_notes"] = *u.UsageNotes
	}
	if u.ImageURL != nil {
		cols["image_url"] = *u.ImageURL
	}
	if u.StartTime != nil {
		cols["start_time"] = *u.StartTime
	}
	if u.EndTime != nil {
		cols["end_time"] = *u.EndTime
	}
	return cols
}

type SpaceRepository interface {
	Create(ctx context.Context, space *model.Space) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Space, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	// Список с фильтрами; total считает записи без учёта пагинации.
	List(ctx context.Context, filter SpaceFilter) ([]model.Space, int64, error)
	Update(ctx context.Context, id uuid.UUID, upd SpaceUpdate) (*model.Space, error)
	// Удалить пространство вместе с его бронями; возвращает число удалённых броней.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type GormSpaceRepository struct {
	db *gorm.DB
}

func NewGormSpaceRepository(db *gorm.DB) *GormSpaceRepository {
	return &GormSpaceRepository{db: db}
}

func (r *GormSpaceRepository) Create(ctx context.Context, space *model.Space) error {
	return r.db.WithContext(ctx).Create(space).Error
}

func (r *GormSpaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Space, error) {
	var s model.Space
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrSpaceNotFound)
	}
	return &s, nil
}

func (r *GormSpaceRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Space{}).
		Where("name = ?", name).
		Count(&n).
		Error
	return n > 0, err
}

func (r *GormSpaceRepository) List(ctx context.Context, filter SpaceFilter) ([]model.Space, int64, error) {
	var spaces []model.Space
	q := r.db.WithContext(ctx).Model(&model.Space{})

	if loc := strings.TrimSpace(filter.Location); loc != "" {
		// LOWER + LIKE работает одинаково на postgres, mysql и sqlite
		q = q.Where("LOWER(location) LIKE ? ESCAPE '!'", "%"+escapeLike(strings.ToLower(loc))+"%")
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page.Enabled() {
		q = q.Limit(filter.Page.Limit()).Offset(filter.Page.Offset())
	}

	if err := q.Order("created_at ASC").Order("id ASC").Find(&spaces).Error; err != nil {
		return nil, 0, err
	}
	return spaces, total, nil
}

func (r *GormSpaceRepository) Update(ctx context.Context, id uuid.UUID, upd SpaceUpdate) (*model.Space, error) {
	var s model.Space
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSpace(tx, id, &s); err != nil {
			return err
		}
		cols := upd.columns()
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(&model.Space{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return err
		}
		return tx.First(&s, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormSpaceRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s model.Space
		if err := lockSpace(tx, id, &s); err != nil {
			return err
		}

		res := tx.Where("space_id = ?", id).Delete(&model.Booking{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected

		if err := tx.Delete(&model.Space{}, "id = ?", id).Error; err != nil {
			return err
		}

		ev, err := newEvent(model.EventTypeSpaceDeleted, nil, nil, &s.ID, map[string]any{
			"name":             s.Name,
			"bookings_removed": removed,
		})
		if err != nil {
			return err
		}
		return tx.Create(ev).Error
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// lockSpace читает пространство под блокировкой строки (SELECT ... FOR UPDATE).
// sqlite блокировку строк не поддерживает, драйвер опускает клаузу.
func lockSpace(tx *gorm.DB, id uuid.UUID, dst *model.Space) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(dst, "id = ?", id).Error
	return notFound(err, ErrSpaceNotFound)
}

// В mysql обратный слеш в литерале сам экранирует, поэтому escape-символ '!'.
var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
