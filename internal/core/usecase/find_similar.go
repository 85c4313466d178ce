package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

// FindSimilarUseCase answers "more like this" over the vector index,
// either from a free-text query or from a stored listing.
type FindSimilarUseCase struct {
	embedder port.EmbedderPort
	vectors  port.VectorIndexPort
	storage  port.ListingStoragePort
}

func NewFindSimilarUseCase(embedder port.EmbedderPort, vectors port.VectorIndexPort, storage port.ListingStoragePort) *FindSimilarUseCase {
	return &FindSimilarUseCase{
		embedder: embedder,
		vectors:  vectors,
		storage:  storage,
	}
}

func (uc *FindSimilarUseCase) ByQuery(ctx context.Context, query string, limit int) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "FindSimilar",
		"query":    query,
	})

	if err := uc.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	ucLogger.Info("Use case started", nil)

	embeddings, err := uc.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		ucLogger.Error("Failed to embed query", err, nil)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}

	matches, err := uc.vectors.Search(ctx, embeddings[0], port.VectorFilter{}, limit)
	if err != nil {
		ucLogger.Error("Vector search failed", err, nil)
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	listings, err := uc.resolve(ctx, matches, "", limit)
	if err != nil {
		return nil, err
	}

	ucLogger.Info("Use case finished", port.Fields{"found": len(listings)})
	return listings, nil
}

func (uc *FindSimilarUseCase) ByListing(ctx context.Context, listingID string, limit int) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "FindSimilar",
		"listing_id": listingID,
	})

	if err := uc.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	ucLogger.Info("Use case started", nil)

	listing, err := uc.storage.GetByID(ctx, listingID)
	if err != nil {
		ucLogger.Error("Failed to load the reference listing", err, nil)
		return nil, err
	}

	embeddings, err := uc.embedder.EmbedTexts(ctx, []string{embeddingText(*listing)})
	if err != nil {
		ucLogger.Error("Failed to embed the reference listing", err, nil)
		return nil, fmt.Errorf("failed to embed listing %s: %w", listingID, err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for listing %s", listingID)
	}

	// One extra match absorbs the reference listing itself.
	matches, err := uc.vectors.Search(ctx, embeddings[0], port.VectorFilter{}, limit+1)
	if err != nil {
		ucLogger.Error("Vector search failed", err, nil)
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	listings, err := uc.resolve(ctx, matches, listingID, limit)
	if err != nil {
		return nil, err
	}

	ucLogger.Info("Use case finished", port.Fields{"found": len(listings)})
	return listings, nil
}

// resolve loads matched listings in similarity order, skipping index
// entries whose row has since been deleted.
func (uc *FindSimilarUseCase) resolve(ctx context.Context, matches []port.VectorMatch, exclude string, limit int) ([]domain.Listing, error) {
	listings := make([]domain.Listing, 0, len(matches))
	for _, m := range matches {
		if m.ID == exclude {
			continue
		}
		listing, err := uc.storage.GetByID(ctx, m.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		listings = append(listings, *listing)
		if len(listings) == limit {
			break
		}
	}
	return listings, nil
}

func (uc *FindSimilarUseCase) ready() error {
	if uc.embedder == nil {
		return domain.ErrEmbedderDisabled
	}
	if uc.vectors == nil {
		return domain.ErrVectorDisabled
	}
	if uc.storage == nil {
		return domain.ErrStorageDisabled
	}
	return nil
}
