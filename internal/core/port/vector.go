package port

import "context"

// VectorDoc is one embedded listing in the similarity index. Metadata
// columns mirror the filters the search endpoint accepts.
type VectorDoc struct {
	ID        string
	Embedding []float32
	District  string
	Platform  string
	PriceVND  int64
}

type VectorMatch struct {
	ID         string
	Similarity float64
}

// VectorFilter narrows a similarity search before ranking. Empty
// fields are not applied.
type VectorFilter struct {
	District string
	Platform string
	PriceMin *int64
	PriceMax *int64
}

type VectorIndexPort interface {
	UpsertBatch(ctx context.Context, docs []VectorDoc) error
	Search(ctx context.Context, embedding []float32, filter VectorFilter, k int) ([]VectorMatch, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
