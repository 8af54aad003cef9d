package engine

import (
	"cmp"
	"listings-service/internal/core/domain"
	"slices"
)

// Sort возвращает отсортированную копию. Сортировка устойчивая:
// при равных ключах сохраняется порядок фильтрации. Вход не изменяется.
func Sort(listings []domain.Listing, mode domain.SortMode) []domain.Listing {
	out := slices.Clone(listings)

	switch mode {
	case domain.SortPriceLow:
		slices.SortStableFunc(out, func(a, b domain.Listing) int {
			return cmp.Compare(a.PriceOrZero(), b.PriceOrZero())
		})
	case domain.SortPriceHigh:
		slices.SortStableFunc(out, func(a, b domain.Listing) int {
			return cmp.Compare(b.PriceOrZero(), a.PriceOrZero())
		})
	default:
		// Newest: по году постройки, неизвестный год считается нулевым
		slices.SortStableFunc(out, func(a, b domain.Listing) int {
			return cmp.Compare(b.YearBuiltOrZero(), a.YearBuiltOrZero())
		})
	}
	return out
}
