package engine

import "listings-service/internal/core/domain"

// Paginate вырезает страницу page (с единицы) и считает подпись диапазона.
// Страница за пределами выдачи даёт пустой срез; номер страницы здесь не исправляется.
func Paginate(listings []domain.Listing, page, pageSize int) ([]domain.Listing, domain.RangeLabel) {
	total := len(listings)
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if page < 1 {
		return []domain.Listing{}, domain.RangeLabel{Start: 0, End: 0, Total: total}
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	label := domain.RangeLabel{Total: total}
	if total > 0 {
		label.Start = start + 1
		label.End = end
	}

	if start >= total {
		return []domain.Listing{}, label
	}
	return listings[start:end:end], label
}

// TotalPages - количество страниц, не меньше одной
func TotalPages(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage приводит номер страницы к диапазону [1, TotalPages]
func ClampPage(page, total, pageSize int) int {
	last := TotalPages(total, pageSize)
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}
