package usecases_port

import "context"

type DeleteListingUseCase interface {
	Execute(ctx context.Context, id string, hard bool) error
}
