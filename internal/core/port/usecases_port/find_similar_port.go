package usecases_port

import (
	"context"

	"github.com/jian131/agent-bds/internal/core/domain"
)

type FindSimilarUseCase interface {
	ByQuery(ctx context.Context, query string, limit int) ([]domain.Listing, error)
	ByListing(ctx context.Context, listingID string, limit int) ([]domain.Listing, error)
}
