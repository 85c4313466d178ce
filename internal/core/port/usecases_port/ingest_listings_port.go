package usecases_port

import (
	"context"

	"github.com/jian131/agent-bds/internal/core/domain"
)

type IngestListingsUseCase interface {
	Execute(ctx context.Context, listings []domain.Listing) (*domain.BatchUpsertStats, error)
}
