package usecase

import (
	"context"

	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

type ListListingsUseCase struct {
	storage port.ListingStoragePort
}

func NewListListingsUseCase(storage port.ListingStoragePort) *ListListingsUseCase {
	return &ListListingsUseCase{storage: storage}
}

func (uc *ListListingsUseCase) Execute(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int64, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "ListListings",
		"filter":   filter,
	})

	if uc.storage == nil {
		return nil, 0, domain.ErrStorageDisabled
	}

	ucLogger.Info("Use case started", nil)

	listings, total, err := uc.storage.List(ctx, filter)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, 0, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total_found":   total,
		"items_on_page": len(listings),
	})
	return listings, total, nil
}
