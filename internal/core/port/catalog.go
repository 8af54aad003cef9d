package port

import (
	"context"
	"listings-service/internal/core/domain"
)

// CatalogPort - нормализованный набор объявлений в памяти.
// Snapshot не блокируется: пока идёт загрузка, возвращается domain.ErrCatalogLoading.
type CatalogPort interface {
	Snapshot() ([]domain.Listing, error)
	Get(id string) (domain.Listing, error)
	State() domain.CatalogState
	// EnsureLoading запускает фоновую загрузку, если она ещё ни разу не запускалась
	EnsureLoading()
	Load(ctx context.Context) error
	Refresh(ctx context.Context) error
}
