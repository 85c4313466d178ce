package port

import (
	"github.com/jian131/agent-bds/internal/core/domain"
)

// ExtractorPort turns a fetched page into raw listings. An empty slice
// means the page held nothing usable; extraction never fails hard.
type ExtractorPort interface {
	Extract(result domain.RawFetchResult) []domain.Listing
}
