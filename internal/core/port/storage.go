package port

import (
	"context"

	"github.com/jian131/agent-bds/internal/core/domain"
)

type ListingStoragePort interface {
	UpsertBatch(ctx context.Context, listings []domain.Listing) (*domain.BatchUpsertStats, error)
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	List(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int64, error)
	SoftDelete(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
	ExpireOlderThan(ctx context.Context, days int) (int64, error)
	NearbyByCell(ctx context.Context, cellPrefix string, limit int) ([]domain.Listing, error)
}

type AnalyticsPort interface {
	Summary(ctx context.Context, days int) (*domain.AnalyticsSummary, error)
	MarketComparison(ctx context.Context) ([]domain.MarketComparison, error)
}

type ScrapeLogPort interface {
	StartRun(ctx context.Context, run domain.ScrapeRun) error
	FinishRun(ctx context.Context, run domain.ScrapeRun) error
	RecentRuns(ctx context.Context, limit int) ([]domain.ScrapeRun, error)
}
