package usecase

import (
	"context"
	"listings-service/internal/contextkeys"
	"listings-service/internal/core/domain"
	"listings-service/internal/core/port"
)

// RefreshCatalogUseCase перечитывает внешний источник. Вызывается из REST,
// по событию из очереди и при изменении файла с записями.
type RefreshCatalogUseCase struct {
	catalog port.CatalogPort
}

func NewRefreshCatalogUseCase(catalog port.CatalogPort) *RefreshCatalogUseCase {
	return &RefreshCatalogUseCase{catalog: catalog}
}

func (uc *RefreshCatalogUseCase) Execute(ctx context.Context) (*domain.CatalogState, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "RefreshCatalogUseCase",
	})

	ucLogger.Info("Use case started", nil)

	if err := uc.catalog.Refresh(ctx); err != nil {
		ucLogger.Error("Catalog refresh failed", err, nil)
		state := uc.catalog.State()
		return &state, err
	}

	state := uc.catalog.State()
	ucLogger.Info("Use case finished successfully", port.Fields{"count": state.Count})
	return &state, nil
}

type GetCatalogStatusUseCase struct {
	catalog port.CatalogPort
}

func NewGetCatalogStatusUseCase(catalog port.CatalogPort) *GetCatalogStatusUseCase {
	return &GetCatalogStatusUseCase{catalog: catalog}
}

func (uc *GetCatalogStatusUseCase) Execute(ctx context.Context) domain.CatalogState {
	return uc.catalog.State()
}
