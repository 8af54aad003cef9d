package domain

import (
	"fmt"
	"time"
)

// RangeLabel - тройка для подписи "X–Y of Z"
type RangeLabel struct {
	Start int
	End   int
	Total int
}

func (r RangeLabel) String() string {
	return fmt.Sprintf("%d–%d of %d", r.Start, r.End, r.Total)
}

// PageResult - результат одного прохода фильтр → сортировка → пагинация
type PageResult struct {
	Items      []Listing
	TotalCount int
	Range      RangeLabel
	Page       int
	PageSize   int
	TotalPages int
}

// QueryResult - страница выдачи вместе с каноническим состоянием URL
type QueryResult struct {
	Page  PageResult
	State ViewState
	Query string
}

type CatalogStatus string

const (
	CatalogIdle    CatalogStatus = "idle"
	CatalogLoading CatalogStatus = "loading"
	CatalogReady   CatalogStatus = "ready"
	CatalogFailed  CatalogStatus = "failed"
)

// CatalogState - снимок состояния загрузки исходных записей
type CatalogState struct {
	Status    CatalogStatus
	Count     int
	Source    string
	LoadedAt  time.Time
	LastError error
}

// FilterOptions - значения для виджетов фильтра, посчитанные по загруженному каталогу
type FilterOptions struct {
	Cities     []string
	Categories []string
	Amenities  []string
	Price      *Range
	SquareFeet *Range
	YearBuilt  *YearRange
	Count      int
}
