package usecase

import (
	"context"
	"listings-service/internal/contextkeys"
	"listings-service/internal/core/domain"
	"listings-service/internal/core/engine"
	"listings-service/internal/core/port"
	"listings-service/internal/core/querysync"
	"listings-service/internal/core/session"
)

// PatchQueryUseCase применяет изменения к текущей query-строке и возвращает новую выдачу
// вместе с канонической query-строкой для адресной строки клиента.
type PatchQueryUseCase struct {
	catalog  port.CatalogPort
	pipeline *engine.Pipeline
	opts     session.Options
}

func NewPatchQueryUseCase(catalog port.CatalogPort, pipeline *engine.Pipeline, opts session.Options) *PatchQueryUseCase {
	return &PatchQueryUseCase{
		catalog:  catalog,
		pipeline: pipeline,
		opts:     opts,
	}
}

func (uc *PatchQueryUseCase) Execute(ctx context.Context, rawQuery string, patch map[string]interface{}) (*domain.QueryResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "PatchQueryUseCase",
		"query":    rawQuery,
	})

	ucLogger.Info("Use case started", port.Fields{"patch_keys": len(patch)})

	uc.catalog.EnsureLoading()

	ctrl := session.NewController(uc.catalog, uc.pipeline, rawQuery, uc.opts)
	ctrl.ApplyPatch(querysync.Patch(patch))

	result, err := ctrl.View()
	if err != nil {
		ucLogger.Warn("Listings are not available yet", port.Fields{"error": err.Error()})
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total":     result.Page.TotalCount,
		"new_query": result.Query,
	})
	return &result, nil
}
