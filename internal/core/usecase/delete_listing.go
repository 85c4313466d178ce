package usecase

import (
	"context"

	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

// DeleteListingUseCase removes a listing: a soft delete flips its
// status, a hard delete also purges the row and its vector.
type DeleteListingUseCase struct {
	storage port.ListingStoragePort
	vectors port.VectorIndexPort
}

func NewDeleteListingUseCase(storage port.ListingStoragePort, vectors port.VectorIndexPort) *DeleteListingUseCase {
	return &DeleteListingUseCase{
		storage: storage,
		vectors: vectors,
	}
}

func (uc *DeleteListingUseCase) Execute(ctx context.Context, id string, hard bool) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "DeleteListing",
		"listing_id": id,
		"hard":       hard,
	})

	if uc.storage == nil {
		return domain.ErrStorageDisabled
	}

	if !hard {
		if err := uc.storage.SoftDelete(ctx, id); err != nil {
			ucLogger.Error("Soft delete failed", err, nil)
			return err
		}
		ucLogger.Info("Listing soft-deleted", nil)
		return nil
	}

	if err := uc.storage.HardDelete(ctx, id); err != nil {
		ucLogger.Error("Hard delete failed", err, nil)
		return err
	}
	if uc.vectors != nil {
		// an orphaned vector only costs a skipped match later
		if err := uc.vectors.Delete(ctx, id); err != nil {
			ucLogger.Error("Failed to drop the listing vector", err, nil)
		}
	}
	ucLogger.Info("Listing hard-deleted", nil)
	return nil
}
