package usecases_port

import (
	"context"
	"listings-service/internal/core/domain"
)

type QueryListingsUseCase interface {
	Execute(ctx context.Context, rawQuery string) (*domain.QueryResult, error)
}
