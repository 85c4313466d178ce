// Package scheduler wires up the cron jobs that keep the listing pool
// fresh: a periodic crawl over the configured popular queries and a
// daily expiry pass over stale rows.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/jian131/agent-bds/internal/configs"
	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
	"github.com/jian131/agent-bds/internal/core/port/usecases_port"
)

// Scheduler wraps robfig/cron and manages the crawl and cleanup loops.
// Either use case may be nil; its job is simply not registered.
type Scheduler struct {
	cron        *cron.Cron
	searchUC    usecases_port.SearchListingsUseCase
	cleanupUC   usecases_port.CleanupListingsUseCase
	queries     []string
	crawlSpec   string
	cleanupSpec string
	logger      port.LoggerPort

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler from the scheduler section of the config.
// A crawl pass can outlast its interval, so the chain skips a tick
// while the previous one is still running instead of stacking them.
func New(
	cfg configs.SchedulerConfig,
	searchUC usecases_port.SearchListingsUseCase,
	cleanupUC usecases_port.CleanupListingsUseCase,
	logger port.LoggerPort,
) *Scheduler {
	bridge := newCronLogger(logger)
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(bridge),
			cron.WithChain(cron.SkipIfStillRunning(bridge)),
		),
		searchUC:    searchUC,
		cleanupUC:   cleanupUC,
		queries:     cfg.Queries,
		crawlSpec:   cfg.CrawlSpec,
		cleanupSpec: cfg.CleanupSpec,
		logger:      logger,
	}
}

// Start registers the configured jobs and starts the scheduler. It also
// kicks off one crawl pass immediately so a fresh deployment has data
// before the first tick; re-crawling after a restart is harmless since
// ingestion dedupes by listing ID.
func (s *Scheduler) Start() error {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	crawlEnabled := s.searchUC != nil && len(s.queries) > 0
	if crawlEnabled {
		if _, err := s.cron.AddFunc(s.crawlSpec, s.runCrawl); err != nil {
			return fmt.Errorf("failed to register crawl job (spec %q): %w", s.crawlSpec, err)
		}
	}
	if s.cleanupUC != nil {
		if _, err := s.cron.AddFunc(s.cleanupSpec, s.runCleanup); err != nil {
			return fmt.Errorf("failed to register cleanup job (spec %q): %w", s.cleanupSpec, err)
		}
	}

	s.cron.Start()
	s.logger.Info("Scheduler started", port.Fields{
		"crawl_spec":   s.crawlSpec,
		"cleanup_spec": s.cleanupSpec,
		"queries":      len(s.queries),
	})

	if crawlEnabled {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runCrawl()
		}()
	}
	return nil
}

// Stop cancels in-flight jobs and waits for them to drain.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("Scheduler stopped", nil)
}

// runCrawl walks the query list one at a time. One failing query does
// not abort the pass; a cancelled scheduler does.
func (s *Scheduler) runCrawl() {
	jobLogger := s.logger.WithFields(port.Fields{"job": "auto_crawl"})
	ctx := contextkeys.ContextWithLogger(s.ctx, jobLogger)

	jobLogger.Info("Crawl pass started", port.Fields{"queries": len(s.queries)})
	for _, query := range s.queries {
		if s.ctx.Err() != nil {
			jobLogger.Warn("Crawl pass aborted", port.Fields{"reason": s.ctx.Err().Error()})
			return
		}

		result, err := s.searchUC.Execute(ctx, domain.SearchRequest{Query: query})
		if err != nil {
			jobLogger.Error("Crawl query failed", err, port.Fields{"query": query})
			continue
		}
		jobLogger.Info("Crawl query finished", port.Fields{
			"query":     query,
			"total":     result.Total,
			"platforms": len(result.PlatformsSearched),
		})
	}
	jobLogger.Info("Crawl pass complete", nil)
}

func (s *Scheduler) runCleanup() {
	jobLogger := s.logger.WithFields(port.Fields{"job": "cleanup"})
	ctx := contextkeys.ContextWithLogger(s.ctx, jobLogger)

	expired, err := s.cleanupUC.Execute(ctx)
	if err != nil {
		jobLogger.Error("Cleanup pass failed", err, nil)
		return
	}
	jobLogger.Info("Cleanup pass complete", port.Fields{"expired": expired})
}
