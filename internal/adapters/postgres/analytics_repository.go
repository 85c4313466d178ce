package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jian131/agent-bds/internal/constants"
	"github.com/jian131/agent-bds/internal/core/domain"
)

const (
	districtBreakdownLimit = 20

	// The reference table stores bounds in millions of VND per m².
	millionVND = 1_000_000
)

// AnalyticsRepository implements port.AnalyticsPort with aggregate
// queries over the listings and scrape_runs tables.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepository(pool *pgxpool.Pool) (*AnalyticsRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &AnalyticsRepository{pool: pool}, nil
}

func (r *AnalyticsRepository) Summary(ctx context.Context, days int) (*domain.AnalyticsSummary, error) {
	summary := &domain.AnalyticsSummary{}

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = $1)
		 FROM listings`,
		string(domain.ListingActive),
	).Scan(&summary.TotalListings, &summary.ActiveListings)
	if err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}

	if summary.ByPlatform, err = r.platformCounts(ctx); err != nil {
		return nil, err
	}
	if summary.ByDistrict, err = r.districtStats(ctx); err != nil {
		return nil, err
	}
	if summary.ByType, err = r.propertyTypeCounts(ctx); err != nil {
		return nil, err
	}
	if summary.RecentRuns, err = r.runStats(ctx, days); err != nil {
		return nil, err
	}

	return summary, nil
}

func (r *AnalyticsRepository) platformCounts(ctx context.Context) ([]domain.PlatformCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT source_platform, COUNT(*)
		 FROM listings
		 GROUP BY source_platform
		 ORDER BY COUNT(*) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count per platform: %w", err)
	}
	defer rows.Close()

	counts := make([]domain.PlatformCount, 0)
	for rows.Next() {
		var c domain.PlatformCount
		if err := rows.Scan(&c.Platform, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan platform count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *AnalyticsRepository) districtStats(ctx context.Context) ([]domain.DistrictStat, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT district, COUNT(*), AVG(price_vnd), AVG(price_per_m2)
		 FROM listings
		 WHERE district <> ''
		 GROUP BY district
		 ORDER BY COUNT(*) DESC
		 LIMIT $1`,
		districtBreakdownLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate districts: %w", err)
	}
	defer rows.Close()

	stats := make([]domain.DistrictStat, 0)
	for rows.Next() {
		var s domain.DistrictStat
		if err := rows.Scan(&s.District, &s.Count, &s.AvgPriceVND, &s.AvgPricePerM2); err != nil {
			return nil, fmt.Errorf("failed to scan district stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *AnalyticsRepository) propertyTypeCounts(ctx context.Context) ([]domain.PropertyTypeCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT property_type, COUNT(*)
		 FROM listings
		 GROUP BY property_type
		 ORDER BY COUNT(*) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count per property type: %w", err)
	}
	defer rows.Close()

	counts := make([]domain.PropertyTypeCount, 0)
	for rows.Next() {
		var typ string
		var count int64
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, fmt.Errorf("failed to scan property type count: %w", err)
		}
		counts = append(counts, domain.PropertyTypeCount{
			Type:  domain.PropertyType(typ),
			Count: count,
		})
	}
	return counts, rows.Err()
}

func (r *AnalyticsRepository) runStats(ctx context.Context, days int) (domain.ScrapeRunStats, error) {
	var stats domain.ScrapeRunStats
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(found_count), 0),
		        COALESCE(SUM(new_count), 0),
		        COALESCE(SUM(failed_count), 0)
		 FROM scrape_runs
		 WHERE started_at > NOW() - ($1 * INTERVAL '1 day')`,
		days,
	).Scan(&stats.Runs, &stats.Found, &stats.New, &stats.Failed)
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate scrape runs: %w", err)
	}
	return stats, nil
}

// MarketComparison sets observed per-district price-per-m² against the
// reference bounds. Districts without observations still appear, with a
// nil verdict.
func (r *AnalyticsRepository) MarketComparison(ctx context.Context) ([]domain.MarketComparison, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT district,
		        COUNT(*) FILTER (WHERE price_per_m2 IS NOT NULL),
		        AVG(price_per_m2)
		 FROM listings
		 WHERE status = $1 AND district <> ''
		 GROUP BY district`,
		string(domain.ListingActive),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate market prices: %w", err)
	}
	defer rows.Close()

	type observation struct {
		count int64
		avg   *float64
	}
	observed := make(map[string]observation)
	for rows.Next() {
		var district string
		var obs observation
		if err := rows.Scan(&district, &obs.count, &obs.avg); err != nil {
			return nil, fmt.Errorf("failed to scan market row: %w", err)
		}
		observed[district] = obs
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read market rows: %w", err)
	}

	comparisons := make([]domain.MarketComparison, 0, len(constants.DistrictPriceRanges))
	for district, bounds := range constants.DistrictPriceRanges {
		c := domain.MarketComparison{
			District:         district,
			ExpectedMinPerM2: bounds.Min * millionVND,
			ExpectedMaxPerM2: bounds.Max * millionVND,
		}

		if obs, ok := observed[district]; ok && obs.avg != nil {
			c.ListingCount = obs.count
			c.AvgPricePerM2 = obs.avg
			within := *obs.avg >= float64(c.ExpectedMinPerM2) && *obs.avg <= float64(c.ExpectedMaxPerM2)
			c.WithinRange = &within
		}

		comparisons = append(comparisons, c)
	}

	// Map iteration order is random; listing count makes the busiest
	// districts lead, name breaks ties.
	sort.Slice(comparisons, func(i, j int) bool {
		if comparisons[i].ListingCount != comparisons[j].ListingCount {
			return comparisons[i].ListingCount > comparisons[j].ListingCount
		}
		return comparisons[i].District < comparisons[j].District
	})

	return comparisons, nil
}
