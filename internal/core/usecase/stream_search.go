package usecase

import (
	"context"
	"fmt"

	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

// StreamSearchUseCase runs the same pipeline as SearchListingsUseCase
// but pushes listings to the caller in arrival order and closes the
// stream with a complete frame carrying the final counts.
type StreamSearchUseCase struct {
	pipeline *SearchListingsUseCase
}

func NewStreamSearchUseCase(pipeline *SearchListingsUseCase) *StreamSearchUseCase {
	return &StreamSearchUseCase{pipeline: pipeline}
}

func (uc *StreamSearchUseCase) Execute(ctx context.Context, req domain.SearchRequest, emit domain.EventSink) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "StreamSearch",
		"query":    req.Query,
	})

	if emit == nil {
		return fmt.Errorf("stream search requires an event sink")
	}

	result, err := uc.pipeline.run(ctx, req, emit)
	if err != nil {
		_ = emit(domain.SearchEvent{Type: domain.EventError, Message: err.Error()})
		return err
	}

	ucLogger.Info("Stream finished", port.Fields{
		"total":      result.Total,
		"elapsed_ms": result.SearchTimeMS,
	})
	return emit(domain.SearchEvent{
		Type:         domain.EventComplete,
		Total:        result.Total,
		SearchTimeMS: result.SearchTimeMS,
		Platforms:    result.PlatformsSucceeded,
	})
}
