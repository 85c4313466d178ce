package usecases_port

import "context"

type CleanupListingsUseCase interface {
	Execute(ctx context.Context) (int64, error)
}
