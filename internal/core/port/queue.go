package port

import (
	"context"

	"github.com/jian131/agent-bds/internal/core/domain"
)

// ListingQueuePort hands validated listings to the persistence worker.
type ListingQueuePort interface {
	PublishBatch(ctx context.Context, listings []domain.Listing) error
	Close() error
}
