package domain

import "errors"

// Sentinel errors of the pipeline. Adapters translate backend-specific
// failures into these so usecases can branch with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrNoPlatforms      = errors.New("no platforms configured")
	ErrListingRejected  = errors.New("listing rejected")
	ErrStorageDisabled  = errors.New("listing storage not configured")
	ErrVectorDisabled   = errors.New("vector index not configured")
	ErrEmbedderDisabled = errors.New("embedder not configured")
)
