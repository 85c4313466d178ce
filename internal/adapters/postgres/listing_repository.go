package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// listingColumns is the canonical column order, shared by the upsert
// and every SELECT so scanListing stays in sync.
const listingColumns = `id, title, description, price_text, price_vnd, price_per_m2,
	area_text, area_m2, address, ward, district, city,
	latitude, longitude, location_cell, contact_name,
	phones, zalo, emails, property_type, bedrooms, bathrooms, floors,
	images, thumbnail_url, source_platform, source_url,
	posted_at, collected_at, status`

// listingColumnTypes drives the typed VALUES placeholders. The casts
// matter for the JSONB columns, which travel as JSON text.
var listingColumnTypes = []string{
	"TEXT", "TEXT", "TEXT", "TEXT", "BIGINT", "BIGINT",
	"TEXT", "DOUBLE PRECISION", "TEXT", "TEXT", "TEXT", "TEXT",
	"DOUBLE PRECISION", "DOUBLE PRECISION", "TEXT", "TEXT",
	"JSONB", "JSONB", "JSONB", "TEXT", "INT", "INT", "INT",
	"JSONB", "TEXT", "TEXT", "TEXT",
	"TIMESTAMPTZ", "TIMESTAMPTZ", "TEXT",
}

const upsertListingsSQL = `
INSERT INTO listings (` + listingColumns + `)
VALUES %s
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    price_text = EXCLUDED.price_text,
    price_vnd = EXCLUDED.price_vnd,
    price_per_m2 = EXCLUDED.price_per_m2,
    area_text = EXCLUDED.area_text,
    area_m2 = EXCLUDED.area_m2,
    address = EXCLUDED.address,
    ward = EXCLUDED.ward,
    district = EXCLUDED.district,
    city = EXCLUDED.city,
    latitude = EXCLUDED.latitude,
    longitude = EXCLUDED.longitude,
    location_cell = EXCLUDED.location_cell,
    contact_name = EXCLUDED.contact_name,
    phones = EXCLUDED.phones,
    zalo = EXCLUDED.zalo,
    emails = EXCLUDED.emails,
    property_type = EXCLUDED.property_type,
    bedrooms = EXCLUDED.bedrooms,
    bathrooms = EXCLUDED.bathrooms,
    floors = EXCLUDED.floors,
    images = EXCLUDED.images,
    thumbnail_url = EXCLUDED.thumbnail_url,
    source_platform = EXCLUDED.source_platform,
    source_url = EXCLUDED.source_url,
    posted_at = EXCLUDED.posted_at,
    collected_at = EXCLUDED.collected_at,
    status = EXCLUDED.status
WHERE EXCLUDED.collected_at > listings.collected_at
RETURNING (xmax = 0) AS inserted`

// ListingRepository implements port.ListingStoragePort over pgx.
type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) (*ListingRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &ListingRepository{pool: pool}, nil
}

// UpsertBatch writes the batch in one statement. A conflicting row only
// updates when the incoming crawl is fresher; rows losing to a fresher
// stored crawl are counted as skipped.
func (r *ListingRepository) UpsertBatch(ctx context.Context, listings []domain.Listing) (*domain.BatchUpsertStats, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":     "ListingRepository",
		"method":        "UpsertBatch",
		"listing_count": len(listings),
	})

	stats := &domain.BatchUpsertStats{}
	if len(listings) == 0 {
		return stats, nil
	}

	// Collapse same-ID rows inside the batch first: postgres rejects a
	// statement that updates one row twice through ON CONFLICT.
	unique := collapseNewest(listings)
	stats.Skipped += len(listings) - len(unique)

	rows := make([][]interface{}, 0, len(unique))
	for _, l := range unique {
		row, err := listingRow(l)
		if err != nil {
			return nil, fmt.Errorf("failed to encode listing %s: %w", l.ID, err)
		}
		rows = append(rows, row)
	}

	placeholders := buildValuesPlaceholders(listingColumnTypes, len(rows))
	sql := fmt.Sprintf(upsertListingsSQL, placeholders)

	res, err := r.pool.Query(ctx, sql, flatten(rows)...)
	if err != nil {
		logger.Error("Batch upsert failed", err, nil)
		return nil, fmt.Errorf("failed to upsert listings: %w", err)
	}
	defer res.Close()

	returned := 0
	for res.Next() {
		var inserted bool
		if err := res.Scan(&inserted); err != nil {
			return nil, fmt.Errorf("failed to scan upsert result: %w", err)
		}
		if inserted {
			stats.Created++
		} else {
			stats.Updated++
		}
		returned++
	}
	if err := res.Err(); err != nil {
		logger.Error("Batch upsert failed while reading results", err, nil)
		return nil, fmt.Errorf("failed to read upsert results: %w", err)
	}

	// Rows filtered out by the freshness predicate return nothing.
	stats.Skipped += len(unique) - returned

	logger.Info("Batch upsert completed", port.Fields{
		"created": stats.Created,
		"updated": stats.Updated,
		"skipped": stats.Skipped,
	})
	return stats, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	sql := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	row := r.pool.QueryRow(ctx, sql, id)
	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing %s: %w", id, err)
	}
	return listing, nil
}

func (r *ListingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int64, error) {
	where, args := applyListingFilters(filter)

	var total int64
	countSQL := `SELECT COUNT(*) FROM listings ` + where
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	sql := fmt.Sprintf(
		`SELECT %s FROM listings %s ORDER BY collected_at DESC LIMIT %d OFFSET %d`,
		listingColumns, where, limit, offset,
	)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// SoftDelete keeps the row but hides it from active queries.
func (r *ListingRepository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE listings SET status = $1 WHERE id = $2`,
		string(domain.ListingDeleted), id,
	)
	if err != nil {
		return fmt.Errorf("failed to soft delete listing %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) HardDelete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete listing %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ExpireOlderThan flips active listings whose last crawl is older than
// the threshold to expired and reports how many were touched.
func (r *ListingRepository) ExpireOlderThan(ctx context.Context, days int) (int64, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ListingRepository",
		"method":    "ExpireOlderThan",
		"days":      days,
	})

	tag, err := r.pool.Exec(ctx,
		`UPDATE listings
		 SET status = $1
		 WHERE status = $2 AND collected_at < NOW() - ($3 * INTERVAL '1 day')`,
		string(domain.ListingExpired), string(domain.ListingActive), days,
	)
	if err != nil {
		logger.Error("Expiry pass failed", err, nil)
		return 0, fmt.Errorf("failed to expire listings: %w", err)
	}

	logger.Info("Expiry pass completed", port.Fields{"expired": tag.RowsAffected()})
	return tag.RowsAffected(), nil
}

// NearbyByCell finds active listings whose geohash cell starts with the
// given prefix. Shorter prefixes widen the net.
func (r *ListingRepository) NearbyByCell(ctx context.Context, cellPrefix string, limit int) ([]domain.Listing, error) {
	if cellPrefix == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	sql := fmt.Sprintf(
		`SELECT %s FROM listings
		 WHERE location_cell LIKE $1 || '%%' AND status = $2
		 ORDER BY collected_at DESC LIMIT %d`,
		listingColumns, limit,
	)

	rows, err := r.pool.Query(ctx, sql, cellPrefix, string(domain.ListingActive))
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby listings: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// collapseNewest keeps one row per ID, preferring the freshest crawl.
// Input order is preserved for the survivors.
func collapseNewest(listings []domain.Listing) []domain.Listing {
	byID := make(map[string]int, len(listings))
	out := make([]domain.Listing, 0, len(listings))

	for _, l := range listings {
		if idx, seen := byID[l.ID]; seen {
			if l.CollectedAt.After(out[idx].CollectedAt) {
				out[idx] = l
			}
			continue
		}
		byID[l.ID] = len(out)
		out = append(out, l)
	}
	return out
}

// listingRow lays out one listing in listingColumns order.
func listingRow(l domain.Listing) ([]interface{}, error) {
	phones, err := jsonText(l.Phones)
	if err != nil {
		return nil, err
	}
	zalo, err := jsonText(l.Zalo)
	if err != nil {
		return nil, err
	}
	emails, err := jsonText(l.Emails)
	if err != nil {
		return nil, err
	}
	images, err := jsonText(l.Images)
	if err != nil {
		return nil, err
	}

	return []interface{}{
		l.ID, l.Title, l.Description, l.PriceText, l.PriceVND, l.PricePerM2,
		l.AreaText, l.AreaM2, l.Address, l.Ward, l.District, l.City,
		l.Latitude, l.Longitude, l.LocationCell, l.ContactName,
		phones, zalo, emails, string(l.PropertyType), l.Bedrooms, l.Bathrooms, l.Floors,
		images, l.ThumbnailURL, l.SourcePlatform, l.SourceURL,
		l.PostedAt, l.CollectedAt, string(l.Status),
	}, nil
}

// jsonText renders a string slice as JSON for the JSONB columns. nil
// becomes the empty array, never SQL NULL.
func jsonText(values []string) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	var phones, zalo, emails, images []byte
	var propertyType, status string

	err := row.Scan(
		&l.ID, &l.Title, &l.Description, &l.PriceText, &l.PriceVND, &l.PricePerM2,
		&l.AreaText, &l.AreaM2, &l.Address, &l.Ward, &l.District, &l.City,
		&l.Latitude, &l.Longitude, &l.LocationCell, &l.ContactName,
		&phones, &zalo, &emails, &propertyType, &l.Bedrooms, &l.Bathrooms, &l.Floors,
		&images, &l.ThumbnailURL, &l.SourcePlatform, &l.SourceURL,
		&l.PostedAt, &l.CollectedAt, &status,
	)
	if err != nil {
		return nil, err
	}

	l.PropertyType = domain.PropertyType(propertyType)
	l.Status = domain.ListingStatus(status)

	if err := decodeJSONColumn(phones, &l.Phones); err != nil {
		return nil, err
	}
	if err := decodeJSONColumn(zalo, &l.Zalo); err != nil {
		return nil, err
	}
	if err := decodeJSONColumn(emails, &l.Emails); err != nil {
		return nil, err
	}
	if err := decodeJSONColumn(images, &l.Images); err != nil {
		return nil, err
	}

	return &l, nil
}

func decodeJSONColumn(src []byte, dst *[]string) error {
	if len(src) == 0 {
		return nil
	}
	if err := json.Unmarshal(src, dst); err != nil {
		return fmt.Errorf("failed to decode json column: %w", err)
	}
	return nil
}

func scanListings(rows pgx.Rows) ([]domain.Listing, error) {
	listings := make([]domain.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read listing rows: %w", err)
	}
	return listings, nil
}

// buildValuesPlaceholders renders "($1::TEXT, $2::BIGINT), ($3::TEXT,
// $4::BIGINT)" style groups, one per row, with explicit type casts.
func buildValuesPlaceholders(types []string, rows int) string {
	if rows == 0 || len(types) == 0 {
		return ""
	}

	rowPlaceholders := make([]string, rows)
	paramIndex := 1

	for i := 0; i < rows; i++ {
		colPlaceholders := make([]string, len(types))
		for j, typ := range types {
			colPlaceholders[j] = fmt.Sprintf("$%d::%s", paramIndex, typ)
			paramIndex++
		}
		rowPlaceholders[i] = fmt.Sprintf("(%s)", strings.Join(colPlaceholders, ", "))
	}

	return strings.Join(rowPlaceholders, ", ")
}

func flatten(data [][]interface{}) []interface{} {
	if len(data) == 0 {
		return nil
	}

	flat := make([]interface{}, 0, len(data)*len(data[0]))
	for _, row := range data {
		flat = append(flat, row...)
	}
	return flat
}
