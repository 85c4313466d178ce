package vecstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jian131/agent-bds/internal/core/port"
)

// embeddingDim matches the Gemini embedding models in use. The vec0
// table rejects vectors of any other length.
const embeddingDim = 768

func init() {
	// Register sqlite-vec as an auto-loaded extension with the
	// mattn/go-sqlite3 driver before any connection is opened.
	vec.Auto()
}

const vecSchemaDDL = `
CREATE VIRTUAL TABLE IF NOT EXISTS listings_vec USING vec0(embedding float[768]);

CREATE TABLE IF NOT EXISTS listings_vec_meta (
    rowid      INTEGER PRIMARY KEY,
    listing_id TEXT NOT NULL UNIQUE,
    district   TEXT NOT NULL DEFAULT '',
    platform   TEXT NOT NULL DEFAULT '',
    price_vnd  INTEGER
);
`

// Store is a file-backed similarity index. Vectors live in a vec0
// virtual table, filterable metadata in a companion table sharing the
// rowid.
type Store struct {
	db     *sql.DB
	logger port.LoggerPort
}

// New opens (or creates) the index file and applies the schema.
func New(path string, logger port.LoggerPort) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("vector store path is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	// sqlite allows a single writer; one pooled connection sidesteps
	// SQLITE_BUSY under concurrent upserts.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping vector store: %w", err)
	}

	if _, err := db.Exec(vecSchemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply vector schema (is sqlite-vec loaded?): %w", err)
	}

	logger.Info("Vector store opened", port.Fields{"path": path})
	return &Store{db: db, logger: logger}, nil
}

// UpsertBatch replaces each listing's vector and metadata. vec0 has no
// ON CONFLICT support, so an upsert is delete plus insert.
func (s *Store) UpsertBatch(ctx context.Context, docs []port.VectorDoc) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin vector upsert: %w", err)
	}
	defer tx.Rollback()

	for _, doc := range docs {
		if doc.ID == "" {
			continue
		}
		if len(doc.Embedding) != embeddingDim {
			return fmt.Errorf("listing %s: embedding has %d dimensions, want %d", doc.ID, len(doc.Embedding), embeddingDim)
		}

		if err := deleteByListingID(ctx, tx, doc.ID); err != nil {
			return err
		}

		var price sql.NullInt64
		if doc.PriceVND > 0 {
			price = sql.NullInt64{Int64: doc.PriceVND, Valid: true}
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO listings_vec_meta (listing_id, district, platform, price_vnd)
			 VALUES (?, ?, ?, ?)`,
			doc.ID, doc.District, doc.Platform, price,
		)
		if err != nil {
			return fmt.Errorf("failed to insert vector metadata for %s: %w", doc.ID, err)
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read metadata rowid for %s: %w", doc.ID, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO listings_vec (rowid, embedding) VALUES (?, ?)`,
			rowID, encodeEmbedding(doc.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert vector for %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vector upsert: %w", err)
	}

	s.logger.Debug("Vector batch upserted", port.Fields{"doc_count": len(docs)})
	return nil
}

// Search ranks the whole (filtered) index by cosine distance and
// returns the k nearest as similarities.
func (s *Store) Search(ctx context.Context, embedding []float32, filter port.VectorFilter, k int) ([]port.VectorMatch, error) {
	if len(embedding) != embeddingDim {
		return nil, fmt.Errorf("query embedding has %d dimensions, want %d", len(embedding), embeddingDim)
	}
	if k <= 0 {
		k = 10
	}

	where, filterArgs := buildFilterClause(filter)

	args := make([]interface{}, 0, len(filterArgs)+2)
	args = append(args, encodeEmbedding(embedding))
	args = append(args, filterArgs...)
	args = append(args, k)

	query := fmt.Sprintf(`
		SELECT m.listing_id,
		       vec_distance_cosine(v.embedding, ?) AS distance
		FROM listings_vec v
		JOIN listings_vec_meta m ON m.rowid = v.rowid
		%s
		ORDER BY distance ASC
		LIMIT ?`, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	matches := make([]port.VectorMatch, 0, k)
	for rows.Next() {
		var m port.VectorMatch
		var distance float64
		if err := rows.Scan(&m.ID, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan vector match: %w", err)
		}
		// Cosine distance is 1 - similarity.
		m.Similarity = 1.0 - distance
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vector matches: %w", err)
	}

	return matches, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin vector delete: %w", err)
	}
	defer tx.Rollback()

	if err := deleteByListingID(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vector delete: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// buildFilterClause turns the optional metadata filters into a WHERE
// clause over the meta table. Empty filters produce an empty clause.
func buildFilterClause(filter port.VectorFilter) (string, []interface{}) {
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if filter.District != "" {
		conditions = append(conditions, "m.district = ?")
		args = append(args, filter.District)
	}
	if filter.Platform != "" {
		conditions = append(conditions, "m.platform = ?")
		args = append(args, filter.Platform)
	}
	if filter.PriceMin != nil {
		conditions = append(conditions, "m.price_vnd >= ?")
		args = append(args, *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		conditions = append(conditions, "m.price_vnd <= ?")
		args = append(args, *filter.PriceMax)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// deleteByListingID removes the vector row first; the metadata row owns
// the shared rowid, so it goes second.
func deleteByListingID(ctx context.Context, tx *sql.Tx, listingID string) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM listings_vec
		 WHERE rowid IN (SELECT rowid FROM listings_vec_meta WHERE listing_id = ?)`,
		listingID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete vector for %s: %w", listingID, err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM listings_vec_meta WHERE listing_id = ?`, listingID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete vector metadata for %s: %w", listingID, err)
	}
	return nil
}
