package usecases_port

import (
	"context"

	"github.com/jian131/agent-bds/internal/core/domain"
)

type GenerateTargetsPort interface {
	Execute(ctx context.Context, intent domain.SearchIntent) []domain.SourceTarget
}
