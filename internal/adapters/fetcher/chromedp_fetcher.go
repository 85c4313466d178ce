package fetcher

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

// containerWaitBudget bounds the wait for the listing container. Pages
// with zero results never render one; the capture still proceeds so
// extraction can decide.
const containerWaitBudget = 10 * time.Second

// ChromedpFetcher renders script-heavy platforms in headless Chrome.
// One exec allocator is shared, each fetch gets its own tab with the
// caller's deadline applied.
type ChromedpFetcher struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	logger      port.LoggerPort

	// waitSelector returns the platform's listing-container selector,
	// or "" when none is known. Kept as a hook so selector hot reloads
	// reach the browser wait too.
	waitSelector func(platform string) string
}

// NewChromedpFetcher prepares the shared allocator. waitSelector may be
// nil. Chrome is not launched until the first fetch.
func NewChromedpFetcher(waitSelector func(platform string) string, logger port.LoggerPort) *ChromedpFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	if waitSelector == nil {
		waitSelector = func(string) string { return "" }
	}
	return &ChromedpFetcher{
		allocCtx:     allocCtx,
		cancelAlloc:  cancelAlloc,
		logger:       logger.WithFields(port.Fields{"component": "chromedp_fetcher"}),
		waitSelector: waitSelector,
	}
}

// Fetch implements port.FetcherPort.
func (f *ChromedpFetcher) Fetch(ctx context.Context, target domain.SourceTarget) domain.RawFetchResult {
	started := time.Now()
	result := domain.RawFetchResult{
		Platform:  target.Platform,
		URL:       target.URL,
		FetchedAt: started,
	}

	tabCtx, cancelTab := chromedp.NewContext(f.allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		tabCtx, cancelDeadline = context.WithDeadline(tabCtx, deadline)
		defer cancelDeadline()
	}

	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(target.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		result.Failure = classifyFetchError(0, err)
		result.ElapsedMS = time.Since(started).Milliseconds()
		f.logger.Warn("Navigation failed", port.Fields{
			"platform": target.Platform,
			"url":      target.URL,
			"failure":  string(result.Failure),
			"error":    err.Error(),
		})
		return result
	}

	// Best effort: give the listing container a bounded chance to
	// render. A miss is not fatal, the page may simply hold nothing.
	if selector := f.waitSelector(target.Platform); selector != "" {
		waitCtx, cancelWait := context.WithTimeout(tabCtx, containerWaitBudget)
		if err := chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
			f.logger.Debug("Listing container did not render", port.Fields{
				"platform": target.Platform,
				"selector": selector,
			})
		}
		cancelWait()
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		result.Failure = classifyFetchError(0, err)
		result.ElapsedMS = time.Since(started).Milliseconds()
		return result
	}

	result.Body = []byte(html)
	result.ContentType = "text/html"
	result.ElapsedMS = time.Since(started).Milliseconds()
	return result
}

// Close tears down the shared allocator and with it any Chrome still
// running.
func (f *ChromedpFetcher) Close() error {
	f.cancelAlloc()
	return nil
}
