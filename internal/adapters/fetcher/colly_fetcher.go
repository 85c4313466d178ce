package fetcher

import (
	"context"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"

	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

// CollyFetcher serves static pages and JSON endpoints. One parent
// collector carries the shared limit rule and header extensions; every
// fetch runs on a clone so per-request callbacks never leak between
// targets.
type CollyFetcher struct {
	collector *colly.Collector
	logger    port.LoggerPort
}

// NewCollyFetcher builds the parent collector. parallelism bounds
// concurrent requests across all clones (they share the HTTP backend);
// randomDelay spaces requests to the same host the way a human reader
// would.
func NewCollyFetcher(parallelism int, randomDelay time.Duration, logger port.LoggerPort) (*CollyFetcher, error) {
	if parallelism <= 0 {
		parallelism = 5
	}

	c := colly.NewCollector(colly.AllowURLRevisit())
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: parallelism,
		RandomDelay: randomDelay,
	}); err != nil {
		return nil, err
	}

	extensions.RandomUserAgent(c)
	extensions.Referer(c)

	return &CollyFetcher{
		collector: c,
		logger:    logger.WithFields(port.Fields{"component": "colly_fetcher"}),
	}, nil
}

// Fetch implements port.FetcherPort.
func (f *CollyFetcher) Fetch(ctx context.Context, target domain.SourceTarget) domain.RawFetchResult {
	started := time.Now()
	result := domain.RawFetchResult{
		Platform:  target.Platform,
		URL:       target.URL,
		FetchedAt: started,
	}

	if err := ctx.Err(); err != nil {
		result.Failure = classifyFetchError(0, err)
		return result
	}

	collector := f.collector.Clone()
	if deadline, ok := ctx.Deadline(); ok {
		collector.SetRequestTimeout(time.Until(deadline))
	}

	collector.OnRequest(func(r *colly.Request) {
		if target.Hint == domain.HintJSONAPI {
			r.Headers.Set("Accept", "application/json")
		}
		r.Headers.Set("Accept-Language", "vi-VN,vi;q=0.9,en;q=0.8")
	})

	collector.OnResponse(func(r *colly.Response) {
		result.Body = r.Body
		result.ContentType = r.Headers.Get("Content-Type")
	})

	var failure domain.FetchFailure
	collector.OnError(func(r *colly.Response, err error) {
		failure = classifyFetchError(r.StatusCode, err)
		f.logger.Warn("Request failed", port.Fields{
			"platform": target.Platform,
			"url":      target.URL,
			"status":   r.StatusCode,
			"failure":  string(failure),
			"error":    err.Error(),
		})
	})

	if err := collector.Visit(target.URL); err != nil && failure == domain.FetchOK {
		// Visit errors without an OnError callback mean the request
		// never left (bad URL, disallowed scheme).
		failure = classifyFetchError(0, err)
	}
	collector.Wait()

	result.Failure = failure
	result.ElapsedMS = time.Since(started).Milliseconds()
	return result
}
