package usecases_port

import (
	"context"

	"github.com/jian131/agent-bds/internal/core/domain"
)

// ParseIntentPort never fails: a query the parsers cannot decompose
// still yields an intent carrying the raw keywords.
type ParseIntentPort interface {
	Execute(ctx context.Context, query string) domain.SearchIntent
}
