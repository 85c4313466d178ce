package usecase

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

// DispatchCrawlUseCase fans targets out to the fetchers under a global
// concurrency bound. Each attempt gets its own timeout; a network
// failure is retried exactly once, every other failure class is final.
type DispatchCrawlUseCase struct {
	static  port.FetcherPort
	browser port.FetcherPort
	bound   int64
	timeout time.Duration
}

// NewDispatchCrawlUseCase wires the dispatcher. browser may be nil;
// browser-hinted targets then use the static fetcher.
func NewDispatchCrawlUseCase(static, browser port.FetcherPort, concurrency int, timeout time.Duration) *DispatchCrawlUseCase {
	if concurrency <= 0 {
		concurrency = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DispatchCrawlUseCase{
		static:  static,
		browser: browser,
		bound:   int64(concurrency),
		timeout: timeout,
	}
}

// Execute starts all fetches and returns a channel that delivers one
// result per target in completion order, then closes. The channel is
// buffered for every target, so producers never block on a consumer
// that walked away.
func (uc *DispatchCrawlUseCase) Execute(ctx context.Context, targets []domain.SourceTarget) (<-chan domain.RawFetchResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":     "DispatchCrawl",
		"target_count": len(targets),
	})

	if len(targets) == 0 {
		ucLogger.Error("No targets to dispatch", domain.ErrNoPlatforms, nil)
		return nil, domain.ErrNoPlatforms
	}

	ucLogger.Info("Dispatching crawl targets", nil)

	results := make(chan domain.RawFetchResult, len(targets))
	sem := semaphore.NewWeighted(uc.bound)
	var wg sync.WaitGroup

	for _, target := range targets {
		wg.Add(1)
		go func(t domain.SourceTarget) {
			defer wg.Done()

			fetchLogger := ucLogger.WithFields(port.Fields{"platform": t.Platform})
			fetchCtx := contextkeys.ContextWithLogger(ctx, fetchLogger)

			if err := sem.Acquire(fetchCtx, 1); err != nil {
				results <- domain.RawFetchResult{
					Platform:  t.Platform,
					URL:       t.URL,
					Failure:   domain.FetchNetworkError,
					FetchedAt: time.Now(),
				}
				return
			}
			defer sem.Release(1)

			results <- uc.fetchWithRetry(fetchCtx, t)
		}(target)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results, nil
}

func (uc *DispatchCrawlUseCase) fetchWithRetry(ctx context.Context, target domain.SourceTarget) domain.RawFetchResult {
	logger := contextkeys.LoggerFromContext(ctx)

	result := uc.fetchOnce(ctx, target)
	if !result.OK() && result.Failure.Retryable() && ctx.Err() == nil {
		logger.Warn("Fetch failed with a retryable error, retrying once", port.Fields{
			"failure": string(result.Failure),
			"url":     target.URL,
		})
		result = uc.fetchOnce(ctx, target)
	}

	if result.OK() {
		logger.Info("Fetch succeeded", port.Fields{
			"elapsed_ms": result.ElapsedMS,
			"bytes":      len(result.Body),
		})
	} else {
		logger.Warn("Fetch failed", port.Fields{
			"failure": string(result.Failure),
			"url":     target.URL,
		})
	}
	return result
}

func (uc *DispatchCrawlUseCase) fetchOnce(ctx context.Context, target domain.SourceTarget) domain.RawFetchResult {
	fetchCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	return uc.fetcherFor(target).Fetch(fetchCtx, target)
}

func (uc *DispatchCrawlUseCase) fetcherFor(target domain.SourceTarget) port.FetcherPort {
	if target.Hint == domain.HintBrowser && uc.browser != nil {
		return uc.browser
	}
	return uc.static
}
