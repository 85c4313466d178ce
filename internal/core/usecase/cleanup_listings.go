package usecase

import (
	"context"
	"fmt"

	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

// CleanupListingsUseCase expires listings that have not been seen by
// any crawl for the configured number of days.
type CleanupListingsUseCase struct {
	storage         port.ListingStoragePort
	expireAfterDays int
}

func NewCleanupListingsUseCase(storage port.ListingStoragePort, expireAfterDays int) *CleanupListingsUseCase {
	if expireAfterDays <= 0 {
		expireAfterDays = 30
	}
	return &CleanupListingsUseCase{
		storage:         storage,
		expireAfterDays: expireAfterDays,
	}
}

func (uc *CleanupListingsUseCase) Execute(ctx context.Context) (int64, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":          "CleanupListings",
		"expire_after_days": uc.expireAfterDays,
	})

	if uc.storage == nil {
		return 0, domain.ErrStorageDisabled
	}

	ucLogger.Info("Use case started", nil)

	expired, err := uc.storage.ExpireOlderThan(ctx, uc.expireAfterDays)
	if err != nil {
		ucLogger.Error("Storage returned an error during cleanup", err, nil)
		return 0, fmt.Errorf("failed to expire stale listings: %w", err)
	}

	ucLogger.Info("Use case finished", port.Fields{"expired": expired})
	return expired, nil
}
