package dto

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Paginated is the list envelope shared by every collection endpoint
type Paginated[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginated creates a paginated response
func NewPaginated[T any](data []T, total, page, pageSize int) *Paginated[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = total / pageSize
		if total%pageSize != 0 {
			totalPages++
		}
	}

	return &Paginated[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// MapPaginated converts every item of a page while keeping the envelope.
func MapPaginated[S, T any](items []S, total int64, page, pageSize int, fn func(S) T) *Paginated[T] {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return NewPaginated(out, int(total), page, pageSize)
}

// NormalizePage clamps page and page size into the accepted range
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}
