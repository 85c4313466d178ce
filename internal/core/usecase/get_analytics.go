package usecase

import (
	"context"

	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

// GetAnalyticsUseCase serves the reporting surface: stored-listing
// aggregates, the market price comparison, and recent crawl runs.
type GetAnalyticsUseCase struct {
	analytics port.AnalyticsPort
	scrapeLog port.ScrapeLogPort
}

func NewGetAnalyticsUseCase(analytics port.AnalyticsPort, scrapeLog port.ScrapeLogPort) *GetAnalyticsUseCase {
	return &GetAnalyticsUseCase{
		analytics: analytics,
		scrapeLog: scrapeLog,
	}
}

func (uc *GetAnalyticsUseCase) Summary(ctx context.Context, days int) (*domain.AnalyticsSummary, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetAnalytics",
		"days":     days,
	})

	if uc.analytics == nil {
		return nil, domain.ErrStorageDisabled
	}
	if days <= 0 {
		days = 7
	}

	summary, err := uc.analytics.Summary(ctx, days)
	if err != nil {
		ucLogger.Error("Analytics query failed", err, nil)
		return nil, err
	}

	ucLogger.Info("Analytics summary built", port.Fields{"total_listings": summary.TotalListings})
	return summary, nil
}

func (uc *GetAnalyticsUseCase) Market(ctx context.Context) ([]domain.MarketComparison, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "GetAnalytics"})

	if uc.analytics == nil {
		return nil, domain.ErrStorageDisabled
	}

	comparison, err := uc.analytics.MarketComparison(ctx)
	if err != nil {
		ucLogger.Error("Market comparison query failed", err, nil)
		return nil, err
	}

	ucLogger.Info("Market comparison built", port.Fields{"districts": len(comparison)})
	return comparison, nil
}

func (uc *GetAnalyticsUseCase) RecentRuns(ctx context.Context, limit int) ([]domain.ScrapeRun, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetAnalytics",
		"limit":    limit,
	})

	if uc.scrapeLog == nil {
		return nil, domain.ErrStorageDisabled
	}
	if limit <= 0 {
		limit = 20
	}

	runs, err := uc.scrapeLog.RecentRuns(ctx, limit)
	if err != nil {
		ucLogger.Error("Recent runs query failed", err, nil)
		return nil, err
	}

	return runs, nil
}
