package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

// IngestListingsUseCase is the single write path for validated
// listings: relational upsert by fingerprint, then best-effort vector
// indexing. Vector failures are logged, never returned, so a broken
// embedder cannot stall the queue.
type IngestListingsUseCase struct {
	storage  port.ListingStoragePort
	embedder port.EmbedderPort
	vectors  port.VectorIndexPort
}

func NewIngestListingsUseCase(storage port.ListingStoragePort, embedder port.EmbedderPort, vectors port.VectorIndexPort) *IngestListingsUseCase {
	return &IngestListingsUseCase{
		storage:  storage,
		embedder: embedder,
		vectors:  vectors,
	}
}

func (uc *IngestListingsUseCase) Execute(ctx context.Context, listings []domain.Listing) (*domain.BatchUpsertStats, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":      "IngestListings",
		"listing_count": len(listings),
	})

	if len(listings) == 0 {
		return &domain.BatchUpsertStats{}, nil
	}

	ucLogger.Info("Use case started", nil)

	stats := &domain.BatchUpsertStats{}
	if uc.storage != nil {
		var err error
		stats, err = uc.storage.UpsertBatch(ctx, listings)
		if err != nil {
			ucLogger.Error("Storage returned an error during batch upsert", err, nil)
			return nil, fmt.Errorf("failed to upsert %d listings: %w", len(listings), err)
		}
		ucLogger.Info("Storage upsert completed", port.Fields{
			"created": stats.Created,
			"updated": stats.Updated,
			"skipped": stats.Skipped,
		})
	}

	if uc.embedder != nil && uc.vectors != nil {
		if err := uc.indexVectors(ctx, listings); err != nil {
			ucLogger.Error("Vector indexing failed", err, nil)
		} else {
			ucLogger.Info("Vector index updated", nil)
		}
	}

	ucLogger.Info("Use case finished", nil)
	return stats, nil
}

func (uc *IngestListingsUseCase) indexVectors(ctx context.Context, listings []domain.Listing) error {
	texts := make([]string, len(listings))
	for i, l := range listings {
		texts[i] = embeddingText(l)
	}

	embeddings, err := uc.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	if len(embeddings) != len(listings) {
		return fmt.Errorf("embedder returned %d vectors for %d listings", len(embeddings), len(listings))
	}

	docs := make([]port.VectorDoc, len(listings))
	for i, l := range listings {
		docs[i] = port.VectorDoc{
			ID:        l.ID,
			Embedding: embeddings[i],
			District:  l.District,
			Platform:  l.SourcePlatform,
			PriceVND:  derefInt64(l.PriceVND),
		}
	}
	return uc.vectors.UpsertBatch(ctx, docs)
}

// embeddingText is what similarity search ranks against: the title and
// description plus the location words buyers actually search by.
func embeddingText(l domain.Listing) string {
	parts := []string{l.Title, l.Description, l.District, l.City}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(p))
		}
	}
	return strings.Join(nonEmpty, "\n")
}
