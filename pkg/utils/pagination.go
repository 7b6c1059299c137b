package utils

import "errors"

// ErrPageLimitExceeded возвращается, когда курсорная пагинация превысила допустимое число страниц
var ErrPageLimitExceeded = errors.New("page limit exceeded")

// CursorPagination отслеживает состояние курсорной пагинации (Relay connection)
type CursorPagination struct {
	PageSize    int     `json:"page_size"`     // Размер страницы (first)
	MaxPages    int     `json:"max_pages"`     // Максимальное число страниц, 0 - без ограничения
	Cursor      *string `json:"cursor"`        // Текущий курсор (after), nil для первой страницы
	HasNextPage bool    `json:"has_next_page"` // Есть ли следующая страница
	Fetched     int     `json:"fetched"`       // Количество уже запрошенных страниц
	TotalItems  int     `json:"total_items"`   // Накопленное количество элементов
}

// NewCursorPagination создает пагинацию, готовую к запросу первой страницы
func NewCursorPagination(pageSize, maxPages int) *CursorPagination {
	if pageSize < 1 {
		pageSize = 50
	}

	if maxPages < 0 {
		maxPages = 0
	}

	return &CursorPagination{
		PageSize:    pageSize,
		MaxPages:    maxPages,
		HasNextPage: true,
	}
}

// Next сообщает, нужно ли запрашивать следующую страницу.
// Возвращает ErrPageLimitExceeded, если продолжение упирается в MaxPages
func (p *CursorPagination) Next() (bool, error) {
	if !p.HasNextPage {
		return false, nil
	}

	if p.MaxPages > 0 && p.Fetched >= p.MaxPages {
		return false, ErrPageLimitExceeded
	}

	return true, nil
}

// Advance учитывает полученную страницу и переносит курсор
func (p *CursorPagination) Advance(items int, endCursor *string, hasNextPage bool) {
	p.Fetched++
	p.TotalItems += items
	p.Cursor = endCursor
	p.HasNextPage = hasNextPage
}
