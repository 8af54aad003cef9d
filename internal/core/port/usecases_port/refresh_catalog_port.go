package usecases_port

import (
	"context"
	"listings-service/internal/core/domain"
)

type RefreshCatalogUseCase interface {
	Execute(ctx context.Context) (*domain.CatalogState, error)
}

type GetCatalogStatusUseCase interface {
	Execute(ctx context.Context) domain.CatalogState
}
