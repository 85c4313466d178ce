package usecases_port

import (
	"context"

	"github.com/jian131/agent-bds/internal/core/domain"
)

type GetListingUseCase interface {
	Execute(ctx context.Context, id string) (*domain.Listing, error)
}
