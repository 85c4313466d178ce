package usecases_port

import (
	"context"

	"github.com/jian131/agent-bds/internal/core/domain"
)

type GetAnalyticsUseCase interface {
	Summary(ctx context.Context, days int) (*domain.AnalyticsSummary, error)
	Market(ctx context.Context) ([]domain.MarketComparison, error)
	RecentRuns(ctx context.Context, limit int) ([]domain.ScrapeRun, error)
}
