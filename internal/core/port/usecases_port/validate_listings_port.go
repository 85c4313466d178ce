package usecases_port

import (
	"context"

	"github.com/jian131/agent-bds/internal/core/domain"
)

// ValidateListingsPort checks candidate listings and drops duplicates.
// The seen set carries fingerprints across calls within one search run
// so cross-platform duplicates collapse; the validator adds every
// accepted fingerprint to it.
type ValidateListingsPort interface {
	Execute(ctx context.Context, candidates []domain.Listing, seen map[string]struct{}) ([]domain.Listing, int)
}
