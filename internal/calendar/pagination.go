package calendar

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest: запрошенная страница; нумерация с 1.
// Нулевое значение означает «без пагинации».
type PageRequest struct {
	Page     int
	PageSize int
}

// NewPageRequest нормализует параметры: page <= 0 -> 1,
// pageSize <= 0 -> DefaultPageSize, сверху ограничен MaxPageSize.
func NewPageRequest(page, pageSize int) PageRequest {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return PageRequest{Page: page, PageSize: pageSize}
}

func (p PageRequest) Enabled() bool { return p.Page > 0 }

func (p PageRequest) Limit() int { return p.PageSize }

func (p PageRequest) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Page описывает одну страницу элементов.
type Page[T any] struct {
	Items    []T
	Page     int
	PageSize int
	HasNext  bool
	HasPrev  bool
	Total    int64
}

// NewPage собирает метаданные страницы по уже выбранным из БД элементам.
// Если пагинация не запрошена, страница одна и содержит всё.
func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	if !req.Enabled() {
		return Page[T]{
			Items:    items,
			Page:     1,
			PageSize: len(items),
			Total:    total,
		}
	}

	end := int64(req.Offset() + len(items))
	return Page[T]{
		Items:    items,
		Page:     req.Page,
		PageSize: req.PageSize,
		HasPrev:  req.Page > 1,
		HasNext:  end < total,
		Total:    total,
	}
}
