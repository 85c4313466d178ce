package usecases_port

import (
	"context"

	"github.com/jian131/agent-bds/internal/core/domain"
)

// DispatchCrawlPort fans the targets out to the fetchers. The returned
// channel delivers one result per target in completion order and is
// closed when all targets are done or the context is cancelled.
type DispatchCrawlPort interface {
	Execute(ctx context.Context, targets []domain.SourceTarget) (<-chan domain.RawFetchResult, error)
}
