package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jian131/agent-bds/internal/core/domain"
)

// scriptedFetcher returns whatever the script says for the n-th call
// per platform, counting calls so retry behavior can be asserted.
type scriptedFetcher struct {
	mu     sync.Mutex
	calls  map[string]int
	script func(call int, target domain.SourceTarget) domain.RawFetchResult
}

func newScriptedFetcher(script func(call int, target domain.SourceTarget) domain.RawFetchResult) *scriptedFetcher {
	return &scriptedFetcher{calls: make(map[string]int), script: script}
}

func (f *scriptedFetcher) Fetch(_ context.Context, target domain.SourceTarget) domain.RawFetchResult {
	f.mu.Lock()
	f.calls[target.Platform]++
	n := f.calls[target.Platform]
	f.mu.Unlock()
	return f.script(n, target)
}

func (f *scriptedFetcher) callCount(platform string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[platform]
}

func okFetch(target domain.SourceTarget, body string) domain.RawFetchResult {
	return domain.RawFetchResult{
		Platform:  target.Platform,
		URL:       target.URL,
		Body:      []byte(body),
		FetchedAt: time.Now(),
	}
}

func failedFetch(target domain.SourceTarget, failure domain.FetchFailure) domain.RawFetchResult {
	return domain.RawFetchResult{
		Platform:  target.Platform,
		URL:       target.URL,
		Failure:   failure,
		FetchedAt: time.Now(),
	}
}

func crawlTargets(platforms ...string) []domain.SourceTarget {
	targets := make([]domain.SourceTarget, 0, len(platforms))
	for i, p := range platforms {
		targets = append(targets, domain.SourceTarget{
			Platform: p,
			URL:      "https://" + p + ".example/search",
			Priority: i + 1,
			Hint:     domain.HintStatic,
		})
	}
	return targets
}

func drain(ch <-chan domain.RawFetchResult) []domain.RawFetchResult {
	var got []domain.RawFetchResult
	for r := range ch {
		got = append(got, r)
	}
	return got
}

func TestDispatchCrawl_OneResultPerTargetThenCloses(t *testing.T) {
	defer goleak.VerifyNone(t)

	fetcher := newScriptedFetcher(func(_ int, target domain.SourceTarget) domain.RawFetchResult {
		return okFetch(target, "<html>ok</html>")
	})
	uc := NewDispatchCrawlUseCase(fetcher, nil, 5, time.Second)

	ch, err := uc.Execute(context.Background(), crawlTargets("chotot", "mogi", "alonhadat"))
	require.NoError(t, err)

	got := drain(ch)
	require.Len(t, got, 3)

	seen := make(map[string]bool)
	for _, r := range got {
		assert.True(t, r.OK())
		seen[r.Platform] = true
	}
	assert.Len(t, seen, 3)
}

func TestDispatchCrawl_EmptyTargetList(t *testing.T) {
	uc := NewDispatchCrawlUseCase(newScriptedFetcher(nil), nil, 5, time.Second)

	ch, err := uc.Execute(context.Background(), nil)

	assert.Nil(t, ch)
	assert.ErrorIs(t, err, domain.ErrNoPlatforms)
}

func TestDispatchCrawl_HonorsConcurrencyBound(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	fetcher := newScriptedFetcher(func(_ int, target domain.SourceTarget) domain.RawFetchResult {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(30 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return okFetch(target, "body")
	})
	uc := NewDispatchCrawlUseCase(fetcher, nil, 2, time.Second)

	ch, err := uc.Execute(context.Background(), crawlTargets("p1", "p2", "p3", "p4", "p5", "p6"))
	require.NoError(t, err)

	got := drain(ch)
	assert.Len(t, got, 6)

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, maxInFlight, 2)
}

func TestDispatchCrawl_RetriesNetworkErrorOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	fetcher := newScriptedFetcher(func(call int, target domain.SourceTarget) domain.RawFetchResult {
		if call == 1 {
			return failedFetch(target, domain.FetchNetworkError)
		}
		return okFetch(target, "recovered")
	})
	uc := NewDispatchCrawlUseCase(fetcher, nil, 5, time.Second)

	ch, err := uc.Execute(context.Background(), crawlTargets("mogi"))
	require.NoError(t, err)

	got := drain(ch)
	require.Len(t, got, 1)
	assert.True(t, got[0].OK())
	assert.Equal(t, 2, fetcher.callCount("mogi"))
}

func TestDispatchCrawl_SecondNetworkErrorIsFinal(t *testing.T) {
	defer goleak.VerifyNone(t)

	fetcher := newScriptedFetcher(func(_ int, target domain.SourceTarget) domain.RawFetchResult {
		return failedFetch(target, domain.FetchNetworkError)
	})
	uc := NewDispatchCrawlUseCase(fetcher, nil, 5, time.Second)

	ch, err := uc.Execute(context.Background(), crawlTargets("mogi"))
	require.NoError(t, err)

	got := drain(ch)
	require.Len(t, got, 1)
	assert.Equal(t, domain.FetchNetworkError, got[0].Failure)
	assert.Equal(t, 2, fetcher.callCount("mogi"))
}

func TestDispatchCrawl_NoRetryOnTerminalFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	for _, failure := range []domain.FetchFailure{domain.FetchBlocked, domain.FetchTimeout, domain.FetchNotFound} {
		fetcher := newScriptedFetcher(func(_ int, target domain.SourceTarget) domain.RawFetchResult {
			return failedFetch(target, failure)
		})
		uc := NewDispatchCrawlUseCase(fetcher, nil, 5, time.Second)

		ch, err := uc.Execute(context.Background(), crawlTargets("batdongsan"))
		require.NoError(t, err)

		got := drain(ch)
		require.Len(t, got, 1)
		assert.Equal(t, failure, got[0].Failure)
		assert.Equal(t, 1, fetcher.callCount("batdongsan"), "failure %s must not retry", failure)
	}
}

func TestDispatchCrawl_BrowserHintPicksBrowserFetcher(t *testing.T) {
	defer goleak.VerifyNone(t)

	static := newScriptedFetcher(func(_ int, target domain.SourceTarget) domain.RawFetchResult {
		return okFetch(target, "static")
	})
	browser := newScriptedFetcher(func(_ int, target domain.SourceTarget) domain.RawFetchResult {
		return okFetch(target, "browser")
	})
	uc := NewDispatchCrawlUseCase(static, browser, 5, time.Second)

	targets := crawlTargets("chotot", "batdongsan")
	targets[1].Hint = domain.HintBrowser

	ch, err := uc.Execute(context.Background(), targets)
	require.NoError(t, err)

	bodies := make(map[string]string)
	for _, r := range drain(ch) {
		bodies[r.Platform] = string(r.Body)
	}
	assert.Equal(t, "static", bodies["chotot"])
	assert.Equal(t, "browser", bodies["batdongsan"])
}

func TestDispatchCrawl_BrowserHintFallsBackWhenNoBrowser(t *testing.T) {
	defer goleak.VerifyNone(t)

	static := newScriptedFetcher(func(_ int, target domain.SourceTarget) domain.RawFetchResult {
		return okFetch(target, "static")
	})
	uc := NewDispatchCrawlUseCase(static, nil, 5, time.Second)

	targets := crawlTargets("batdongsan")
	targets[0].Hint = domain.HintBrowser

	ch, err := uc.Execute(context.Background(), targets)
	require.NoError(t, err)

	got := drain(ch)
	require.Len(t, got, 1)
	assert.Equal(t, "static", string(got[0].Body))
}

func TestDispatchCrawl_CanceledContextStillClosesChannel(t *testing.T) {
	defer goleak.VerifyNone(t)

	fetcher := newScriptedFetcher(func(_ int, target domain.SourceTarget) domain.RawFetchResult {
		return okFetch(target, "never reached")
	})
	uc := NewDispatchCrawlUseCase(fetcher, nil, 5, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch, err := uc.Execute(ctx, crawlTargets("chotot", "mogi"))
	require.NoError(t, err)

	got := drain(ch)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.False(t, r.OK())
	}
}
