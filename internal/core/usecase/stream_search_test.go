package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jian131/agent-bds/internal/core/domain"
)

func collectingSink(events *[]domain.SearchEvent) domain.EventSink {
	return func(event domain.SearchEvent) error {
		*events = append(*events, event)
		return nil
	}
}

func TestStreamSearch_EmitsFramesInPipelineOrder(t *testing.T) {
	now := time.Now()
	f := newPipelineFixture(map[string][]domain.Listing{
		"chotot": {
			pipelineListing("chotot", "Căn hộ một", now),
			pipelineListing("chotot", "Căn hộ hai", now),
		},
		"mogi": {
			pipelineListing("mogi", "Nhà phố", now),
		},
	}, "chotot", "mogi")
	uc := NewStreamSearchUseCase(f.build(nil, nil, nil, nil))

	var events []domain.SearchEvent
	err := uc.Execute(context.Background(), domain.SearchRequest{Query: "nhà"}, collectingSink(&events))
	require.NoError(t, err)

	require.Len(t, events, 7)

	assert.Equal(t, domain.EventStatus, events[0].Type)
	assert.Equal(t, 2, events[0].Count)
	assert.Equal(t, []string{"chotot", "mogi"}, events[0].Platforms)

	assert.Equal(t, domain.EventResult, events[1].Type)
	assert.Equal(t, domain.EventResult, events[2].Type)
	assert.Equal(t, domain.EventStatus, events[3].Type)
	assert.Equal(t, "chotot", events[3].Platform)
	assert.Equal(t, 2, events[3].Count)

	assert.Equal(t, domain.EventResult, events[4].Type)
	assert.Equal(t, domain.EventStatus, events[5].Type)
	assert.Equal(t, "mogi", events[5].Platform)

	last := events[len(events)-1]
	assert.Equal(t, domain.EventComplete, last.Type)
	assert.Equal(t, 3, last.Total)
	assert.Equal(t, []string{"chotot", "mogi"}, last.Platforms)
}

func TestStreamSearch_NilSinkRejected(t *testing.T) {
	f := newPipelineFixture(nil, "chotot")
	uc := NewStreamSearchUseCase(f.build(nil, nil, nil, nil))

	err := uc.Execute(context.Background(), domain.SearchRequest{Query: "nhà"}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "event sink")
	assert.Zero(t, f.dispatcher.calls)
}

func TestStreamSearch_DispatchErrorEmitsErrorFrame(t *testing.T) {
	f := newPipelineFixture(nil, "chotot")
	f.dispatcher.err = domain.ErrNoPlatforms
	uc := NewStreamSearchUseCase(f.build(nil, nil, nil, nil))

	var events []domain.SearchEvent
	err := uc.Execute(context.Background(), domain.SearchRequest{Query: "nhà"}, collectingSink(&events))

	assert.ErrorIs(t, err, domain.ErrNoPlatforms)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventError, events[0].Type)
	assert.Contains(t, events[0].Message, domain.ErrNoPlatforms.Error())
}

func TestStreamSearch_PlatformFailureEmitsStatusFrame(t *testing.T) {
	f := newPipelineFixture(map[string][]domain.Listing{
		"chotot": {pipelineListing("chotot", "Căn hộ", time.Now())},
	}, "chotot", "batdongsan")
	f.dispatcher.results[1] = failedFetch(f.generator.targets[1], domain.FetchBlocked)
	uc := NewStreamSearchUseCase(f.build(nil, nil, nil, nil))

	var events []domain.SearchEvent
	err := uc.Execute(context.Background(), domain.SearchRequest{Query: "nhà"}, collectingSink(&events))
	require.NoError(t, err)

	require.Len(t, events, 5)

	failed := events[3]
	assert.Equal(t, domain.EventStatus, failed.Type)
	assert.Equal(t, "batdongsan", failed.Platform)
	assert.Equal(t, domain.FetchBlocked, failed.Failure)

	last := events[4]
	assert.Equal(t, domain.EventComplete, last.Type)
	assert.Equal(t, []string{"chotot"}, last.Platforms)
}

func TestStreamSearch_LimitCapsResultFrames(t *testing.T) {
	now := time.Now()
	f := newPipelineFixture(map[string][]domain.Listing{
		"chotot": {
			pipelineListing("chotot", "một", now),
			pipelineListing("chotot", "hai", now),
			pipelineListing("chotot", "ba", now),
		},
	}, "chotot")
	uc := NewStreamSearchUseCase(f.build(nil, nil, nil, nil))

	var events []domain.SearchEvent
	err := uc.Execute(context.Background(), domain.SearchRequest{Query: "nhà", Limit: 1}, collectingSink(&events))
	require.NoError(t, err)

	results := 0
	for _, e := range events {
		if e.Type == domain.EventResult {
			results++
		}
	}
	assert.Equal(t, 1, results)

	last := events[len(events)-1]
	assert.Equal(t, domain.EventComplete, last.Type)
	assert.Equal(t, 3, last.Total, "the complete frame reports everything collected")
}

func TestStreamSearch_DeadSinkKeepsPipelineAlive(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newPipelineFixture(map[string][]domain.Listing{
		"chotot": {pipelineListing("chotot", "Căn hộ", time.Now())},
	}, "chotot")
	queue := &captureQueue{}
	pipeline := f.build(nil, queue, nil, nil)
	uc := NewStreamSearchUseCase(pipeline)

	gone := errors.New("client disconnected")
	calls := 0
	err := uc.Execute(context.Background(), domain.SearchRequest{Query: "nhà"}, func(domain.SearchEvent) error {
		calls++
		return gone
	})
	pipeline.Drain()

	assert.ErrorIs(t, err, gone)
	assert.Equal(t, 2, calls, "one failed frame kills the stream, only the final frame retries the sink")
	require.Len(t, queue.batches, 1, "a vanished client must not lose the collected listings")
}

func TestStreamSearch_CacheHitReplaysStoredListings(t *testing.T) {
	f := newPipelineFixture(map[string][]domain.Listing{
		"chotot": {
			pipelineListing("chotot", "Căn hộ một", time.Now()),
			pipelineListing("chotot", "Căn hộ hai", time.Now()),
		},
	}, "chotot")
	cache := &memoryCache{}
	pipeline := f.build(nil, nil, nil, cache)
	uc := NewStreamSearchUseCase(pipeline)
	req := domain.SearchRequest{Query: "căn hộ"}

	_, err := pipeline.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)

	var events []domain.SearchEvent
	err = uc.Execute(context.Background(), req, collectingSink(&events))
	require.NoError(t, err)

	assert.Equal(t, 1, f.dispatcher.calls, "a cached stream must not crawl")
	require.Len(t, events, 3)
	assert.Equal(t, domain.EventResult, events[0].Type)
	assert.Equal(t, domain.EventResult, events[1].Type)
	assert.Equal(t, domain.EventComplete, events[2].Type)
	assert.Equal(t, 2, events[2].Total)
}
