package usecases_port

import (
	"context"

	"github.com/jian131/agent-bds/internal/core/domain"
)

type SearchListingsUseCase interface {
	Execute(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error)
}
