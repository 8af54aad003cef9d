package domain

import "errors"

var (
	// ErrCatalogLoading - исходные записи ещё загружаются, фильтрация отложена
	ErrCatalogLoading = errors.New("catalog is loading")
	// ErrCatalogUnavailable - загрузка из внешнего источника не удалась
	ErrCatalogUnavailable = errors.New("catalog is unavailable")
	ErrListingNotFound    = errors.New("listing not found")
	ErrCacheMiss          = errors.New("cache miss")
)
