package usecases_port

import (
	"context"
	"listings-service/internal/core/domain"
)

type GetListingDetailsUseCase interface {
	Execute(ctx context.Context, id string) (*domain.Listing, error)
}
