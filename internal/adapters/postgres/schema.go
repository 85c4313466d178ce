package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaDDL is applied at startup. Everything is IF NOT EXISTS so a
// restart against a provisioned database is a no-op.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS listings (
    id              TEXT PRIMARY KEY,
    title           TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    price_text      TEXT NOT NULL DEFAULT '',
    price_vnd       BIGINT,
    price_per_m2    BIGINT,
    area_text       TEXT NOT NULL DEFAULT '',
    area_m2         DOUBLE PRECISION,
    address         TEXT NOT NULL DEFAULT '',
    ward            TEXT NOT NULL DEFAULT '',
    district        TEXT NOT NULL DEFAULT '',
    city            TEXT NOT NULL DEFAULT '',
    latitude        DOUBLE PRECISION,
    longitude       DOUBLE PRECISION,
    location_cell   TEXT NOT NULL DEFAULT '',
    contact_name    TEXT NOT NULL DEFAULT '',
    phones          JSONB NOT NULL DEFAULT '[]',
    zalo            JSONB NOT NULL DEFAULT '[]',
    emails          JSONB NOT NULL DEFAULT '[]',
    property_type   TEXT NOT NULL DEFAULT 'unknown',
    bedrooms        INT,
    bathrooms       INT,
    floors          INT,
    images          JSONB NOT NULL DEFAULT '[]',
    thumbnail_url   TEXT NOT NULL DEFAULT '',
    source_platform TEXT NOT NULL,
    source_url      TEXT NOT NULL,
    posted_at       TIMESTAMPTZ,
    collected_at    TIMESTAMPTZ NOT NULL,
    status          TEXT NOT NULL DEFAULT 'active'
);

CREATE INDEX IF NOT EXISTS idx_listings_district ON listings (district);
CREATE INDEX IF NOT EXISTS idx_listings_price ON listings (price_vnd);
CREATE INDEX IF NOT EXISTS idx_listings_platform ON listings (source_platform);
CREATE INDEX IF NOT EXISTS idx_listings_collected_at ON listings (collected_at DESC);
CREATE INDEX IF NOT EXISTS idx_listings_source_url ON listings (source_url);
CREATE INDEX IF NOT EXISTS idx_listings_location_cell ON listings (location_cell text_pattern_ops);

CREATE TABLE IF NOT EXISTS scrape_runs (
    id            UUID PRIMARY KEY,
    platform      TEXT NOT NULL,
    query         TEXT NOT NULL DEFAULT '',
    started_at    TIMESTAMPTZ NOT NULL,
    finished_at   TIMESTAMPTZ,
    duration_ms   BIGINT NOT NULL DEFAULT 0,
    found_count   INT NOT NULL DEFAULT 0,
    new_count     INT NOT NULL DEFAULT 0,
    failed_count  INT NOT NULL DEFAULT 0,
    status        TEXT NOT NULL,
    error_message TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_scrape_runs_started_at ON scrape_runs (started_at DESC);
`

// EnsureSchema creates the tables and indexes this service needs.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
