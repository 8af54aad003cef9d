package domain

import "strings"

// SortMode - стратегия сортировки выдачи
type SortMode string

const (
	SortNewest    SortMode = "Newest"
	SortPriceLow  SortMode = "PriceLow"
	SortPriceHigh SortMode = "PriceHigh"
)

// ParseSortMode распознаёт режим без учёта регистра
func ParseSortMode(s string) (SortMode, bool) {
	for _, m := range []SortMode{SortNewest, SortPriceLow, SortPriceHigh} {
		if strings.EqualFold(s, string(m)) {
			return m, true
		}
	}
	return SortNewest, false
}

// DefaultPageSize - количество карточек на странице
const DefaultPageSize = 9

type PageState struct {
	Number int
	Size   int
}

// ViewState - всё, что определяет одну видимую страницу выдачи.
// Строится из URL и заменяется целиком при каждом действии пользователя.
type ViewState struct {
	Filters FilterState
	Sort    SortMode
	Page    PageState
}

func DefaultViewState() ViewState {
	return ViewState{
		Filters: DefaultFilterState(),
		Sort:    SortNewest,
		Page:    PageState{Number: 1, Size: DefaultPageSize},
	}
}
