package usecase

import (
	"context"
	"errors"
	"listings-service/internal/contextkeys"
	"listings-service/internal/core/domain"
	"listings-service/internal/core/port"
)

type GetListingDetailsUseCase struct {
	catalog port.CatalogPort
}

func NewGetListingDetailsUseCase(catalog port.CatalogPort) *GetListingDetailsUseCase {
	return &GetListingDetailsUseCase{catalog: catalog}
}

func (uc *GetListingDetailsUseCase) Execute(ctx context.Context, id string) (*domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetListingDetailsUseCase",
		"id":       id,
	})

	ucLogger.Info("Use case started", nil)

	uc.catalog.EnsureLoading()

	listing, err := uc.catalog.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			ucLogger.Info("Listing not found", nil)
		} else {
			ucLogger.Warn("Catalog is not ready", port.Fields{"error": err.Error()})
		}
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return &listing, nil
}
