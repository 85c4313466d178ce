package port

import (
	"context"

	"github.com/jian131/agent-bds/internal/core/domain"
)

// FetcherPort retrieves one page from a listing platform. Failures are
// reported on the result itself so the dispatcher can classify and
// retry them instead of unwrapping errors.
type FetcherPort interface {
	Fetch(ctx context.Context, target domain.SourceTarget) domain.RawFetchResult
}
