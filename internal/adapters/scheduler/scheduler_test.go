package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jian131/agent-bds/internal/configs"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

type nopLogger struct{}

func (nopLogger) Info(string, port.Fields) {}
func (nopLogger) Warn(string, port.Fields) {}
func (nopLogger) Error(string, error, port.Fields) {}
func (nopLogger) Debug(string, port.Fields) {}
func (nopLogger) WithFields(port.Fields) port.LoggerPort { return nopLogger{} }

// channelSearchUC pushes each query it receives into a channel so the
// test can observe the crawl goroutine without sharing memory with it.
type channelSearchUC struct {
	queries chan string
	err     error
	block   bool
	started chan struct{}
}

func newChannelSearchUC(capacity int) *channelSearchUC {
	return &channelSearchUC{
		queries: make(chan string, capacity),
		started: make(chan struct{}, capacity),
	}
}

func (f *channelSearchUC) Execute(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	f.started <- struct{}{}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f.queries <- req.Query
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SearchResult{Total: 1, PlatformsSearched: []string{"chotot"}}, nil
}

type fakeCleanupUC struct {
	expired int64
	err     error
	calls   int
}

func (f *fakeCleanupUC) Execute(context.Context) (int64, error) {
	f.calls++
	return f.expired, f.err
}

func schedulerConfig(queries ...string) configs.SchedulerConfig {
	return configs.SchedulerConfig{
		Enabled:     true,
		CrawlSpec:   "@every 4h",
		CleanupSpec: "0 3 * * *",
		Queries:     queries,
	}
}

func waitForQuery(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case q := <-ch:
		return q
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a crawl query")
		return ""
	}
}

func TestStartRunsInitialCrawlPass(t *testing.T) {
	defer goleak.VerifyNone(t)

	searchUC := newChannelSearchUC(2)
	s := New(schedulerConfig("căn hộ quận 7", "nhà nguyên căn gò vấp"), searchUC, nil, nopLogger{})

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, "căn hộ quận 7", waitForQuery(t, searchUC.queries))
	assert.Equal(t, "nhà nguyên căn gò vấp", waitForQuery(t, searchUC.queries))
}

func TestCrawlPassSurvivesQueryError(t *testing.T) {
	defer goleak.VerifyNone(t)

	searchUC := newChannelSearchUC(2)
	searchUC.err = errors.New("all platforms down")
	s := New(schedulerConfig("q1", "q2"), searchUC, nil, nopLogger{})

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, "q1", waitForQuery(t, searchUC.queries))
	assert.Equal(t, "q2", waitForQuery(t, searchUC.queries))
}

func TestStopCancelsInFlightCrawl(t *testing.T) {
	defer goleak.VerifyNone(t)

	searchUC := newChannelSearchUC(1)
	searchUC.block = true
	s := New(schedulerConfig("slow query"), searchUC, nil, nopLogger{})

	require.NoError(t, s.Start())

	select {
	case <-searchUC.started:
	case <-time.After(2 * time.Second):
		t.Fatal("crawl never started")
	}

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not unblock the in-flight crawl")
	}
}

func TestStartWithoutQueriesSkipsCrawl(t *testing.T) {
	defer goleak.VerifyNone(t)

	searchUC := newChannelSearchUC(1)
	s := New(schedulerConfig(), searchUC, &fakeCleanupUC{}, nopLogger{})

	require.NoError(t, s.Start())
	s.Stop()

	assert.Empty(t, searchUC.queries)
}

func TestStartRejectsInvalidCrawlSpec(t *testing.T) {
	cfg := schedulerConfig("q1")
	cfg.CrawlSpec = "every four hours"
	s := New(cfg, newChannelSearchUC(1), nil, nopLogger{})

	err := s.Start()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "crawl job")
	s.Stop()
}

func TestStartRejectsInvalidCleanupSpec(t *testing.T) {
	cfg := schedulerConfig()
	cfg.CleanupSpec = "61 25 * * *"
	s := New(cfg, nil, &fakeCleanupUC{}, nopLogger{})

	err := s.Start()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cleanup job")
	s.Stop()
}

func TestRunCleanupReportsExpired(t *testing.T) {
	cleanupUC := &fakeCleanupUC{expired: 12}
	s := New(schedulerConfig(), nil, cleanupUC, nopLogger{})
	s.ctx, s.cancel = context.WithCancel(context.Background())
	defer s.cancel()

	s.runCleanup()

	assert.Equal(t, 1, cleanupUC.calls)
}

func TestRunCleanupSwallowsError(t *testing.T) {
	cleanupUC := &fakeCleanupUC{err: errors.New("db gone")}
	s := New(schedulerConfig(), nil, cleanupUC, nopLogger{})
	s.ctx, s.cancel = context.WithCancel(context.Background())
	defer s.cancel()

	s.runCleanup()

	assert.Equal(t, 1, cleanupUC.calls)
}
