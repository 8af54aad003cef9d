package usecase

import (
	"context"
	"listings-service/internal/contextkeys"
	"listings-service/internal/core/domain"
	"listings-service/internal/core/engine"
	"listings-service/internal/core/port"
	"listings-service/internal/core/session"
)

type QueryListingsUseCase struct {
	catalog  port.CatalogPort
	pipeline *engine.Pipeline
	opts     session.Options
}

func NewQueryListingsUseCase(catalog port.CatalogPort, pipeline *engine.Pipeline, opts session.Options) *QueryListingsUseCase {
	return &QueryListingsUseCase{
		catalog:  catalog,
		pipeline: pipeline,
		opts:     opts,
	}
}

// Execute восстанавливает состояние выдачи из query-строки и считает видимую страницу.
// Пока каталог загружается, возвращает domain.ErrCatalogLoading.
func (uc *QueryListingsUseCase) Execute(ctx context.Context, rawQuery string) (*domain.QueryResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "QueryListingsUseCase",
		"query":    rawQuery,
	})

	ucLogger.Info("Use case started", nil)

	uc.catalog.EnsureLoading()

	ctrl := session.NewController(uc.catalog, uc.pipeline, rawQuery, uc.opts)
	result, err := ctrl.View()
	if err != nil {
		ucLogger.Warn("Listings are not available yet", port.Fields{"error": err.Error()})
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total": result.Page.TotalCount,
		"page":  result.Page.Page,
	})
	return &result, nil
}
