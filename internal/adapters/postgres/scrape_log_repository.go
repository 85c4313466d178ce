package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jian131/agent-bds/internal/core/domain"
)

// ScrapeLogRepository implements port.ScrapeLogPort. Every crawl pass
// gets a row at start and an update at finish, so an abandoned run is
// visible as a stuck "running" row.
type ScrapeLogRepository struct {
	pool *pgxpool.Pool
}

func NewScrapeLogRepository(pool *pgxpool.Pool) (*ScrapeLogRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &ScrapeLogRepository{pool: pool}, nil
}

func (r *ScrapeLogRepository) StartRun(ctx context.Context, run domain.ScrapeRun) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO scrape_runs (id, platform, query, started_at, status)
		 VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.Platform, run.Query, run.StartedAt, string(run.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert scrape run: %w", err)
	}
	return nil
}

func (r *ScrapeLogRepository) FinishRun(ctx context.Context, run domain.ScrapeRun) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE scrape_runs
		 SET finished_at = $2,
		     duration_ms = $3,
		     found_count = $4,
		     new_count = $5,
		     failed_count = $6,
		     status = $7,
		     error_message = $8
		 WHERE id = $1`,
		run.ID, run.FinishedAt, run.DurationMS,
		run.Found, run.New, run.Failed,
		string(run.Status), run.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to finish scrape run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ScrapeLogRepository) RecentRuns(ctx context.Context, limit int) ([]domain.ScrapeRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, platform, query, started_at, finished_at, duration_ms,
		        found_count, new_count, failed_count, status, error_message
		 FROM scrape_runs
		 ORDER BY started_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query scrape runs: %w", err)
	}
	defer rows.Close()

	runs := make([]domain.ScrapeRun, 0, limit)
	for rows.Next() {
		var run domain.ScrapeRun
		var status string
		err := rows.Scan(
			&run.ID, &run.Platform, &run.Query, &run.StartedAt, &run.FinishedAt, &run.DurationMS,
			&run.Found, &run.New, &run.Failed, &status, &run.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scrape run: %w", err)
		}
		run.Status = domain.ScrapeRunStatus(status)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scrape runs: %w", err)
	}
	return runs, nil
}
