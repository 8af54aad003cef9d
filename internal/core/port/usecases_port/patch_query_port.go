package usecases_port

import (
	"context"
	"listings-service/internal/core/domain"
)

type PatchQueryUseCase interface {
	Execute(ctx context.Context, rawQuery string, patch map[string]interface{}) (*domain.QueryResult, error)
}
