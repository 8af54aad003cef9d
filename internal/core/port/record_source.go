package port

import (
	"context"
	"listings-service/internal/core/domain"
	"time"
)

// RecordSourcePort - внешний источник сырых записей об объектах.
// Единственная операция чтения, никаких предположений о составе полей.
type RecordSourcePort interface {
	FetchRecords(ctx context.Context) ([]domain.RawRecord, error)
	Name() string
}

// RecordCachePort - кэш сырого ответа источника.
// При отсутствии записи возвращает domain.ErrCacheMiss.
type RecordCachePort interface {
	GetRecords(ctx context.Context) ([]domain.RawRecord, error)
	SetRecords(ctx context.Context, records []domain.RawRecord, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// CatalogEventsPort публикует события о смене состояния каталога
type CatalogEventsPort interface {
	PublishCatalogRefreshed(ctx context.Context, state domain.CatalogState) error
}
