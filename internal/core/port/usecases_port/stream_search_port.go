package usecases_port

import (
	"context"

	"github.com/jian131/agent-bds/internal/core/domain"
)

type StreamSearchUseCase interface {
	Execute(ctx context.Context, req domain.SearchRequest, emit domain.EventSink) error
}
