package usecases_port

import (
	"context"

	"github.com/jian131/agent-bds/internal/core/domain"
)

type ListListingsUseCase interface {
	Execute(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int64, error)
}
