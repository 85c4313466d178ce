package port

import (
	"context"

	"github.com/jian131/agent-bds/internal/core/domain"
)

// QueryCachePort memoizes full search results for a short window so
// repeated identical queries skip the crawl entirely.
type QueryCachePort interface {
	GetResult(ctx context.Context, key string) (*domain.SearchResult, bool, error)
	SetResult(ctx context.Context, key string, result *domain.SearchResult) error
	Close() error
}
