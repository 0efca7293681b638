package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"coinafrique-scraper/models"
	"coinafrique-scraper/utils"
)

// listingColumns is the insert column order; insertBatch relies on it.
var listingColumns = []string{
	"run_id", "category", "url", "listing_title", "price", "price_value",
	"room_count", "bathroom_count", "area", "address", "image_url",
}

// PostgresWriter persists cleaned listings to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 10, BaseDelay: 500 * time.Millisecond, Logger: logger}
	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			id             SERIAL PRIMARY KEY,
			run_id         UUID          NOT NULL,
			category       VARCHAR(20)   NOT NULL,
			url            TEXT          UNIQUE NOT NULL,
			listing_title  TEXT          NOT NULL DEFAULT '',
			price          TEXT          NOT NULL DEFAULT '',
			price_value    NUMERIC(14,0) NOT NULL DEFAULT 0,
			room_count     TEXT          NOT NULL DEFAULT '',
			bathroom_count TEXT          NOT NULL DEFAULT '',
			area           TEXT          NOT NULL DEFAULT '',
			address        TEXT          NOT NULL DEFAULT '',
			image_url      TEXT          NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_category    ON listings(category);
		CREATE INDEX IF NOT EXISTS idx_listings_run_id      ON listings(run_id);
		CREATE INDEX IF NOT EXISTS idx_listings_price_value ON listings(price_value);
		CREATE INDEX IF NOT EXISTS idx_listings_address     ON listings(address);
	`)
	return err
}

// Clear deletes the stored listings of one category.
func (pw *PostgresWriter) Clear(category models.Category) error {
	_, err := pw.db.Exec("DELETE FROM listings WHERE category = $1", string(category))
	if err != nil {
		return fmt.Errorf("postgres: clear %s: %w", category, err)
	}
	return nil
}

// Write replaces the stored listings of a category with the given ones.
func (pw *PostgresWriter) Write(category models.Category, listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	if err := pw.Clear(category); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.insertBatch(listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Listing) error {
	query, args := buildInsert(batch)
	if _, err := pw.db.Exec(query, args...); err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

func buildInsert(batch []*models.Listing) (string, []interface{}) {
	width := len(listingColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*width)

	for idx, l := range batch {
		placeholders := make([]string, width)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", idx*width+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			l.RunID, string(l.Category), l.URL, l.Title, l.RawPrice, l.Price,
			l.RoomCount, l.BathroomCount, l.Area, l.Address, l.ImageURL)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (%s)
		VALUES %s
		ON CONFLICT (url) DO NOTHING
	`, strings.Join(listingColumns, ", "), strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchCategory retrieves the stored listings of one category, used by the
// insight service.
func (pw *PostgresWriter) FetchCategory(category models.Category) ([]*models.Listing, error) {
	rows, err := pw.db.Query(`
		SELECT id, run_id, category, url, listing_title, price, price_value,
		       room_count, bathroom_count, area, address, image_url, created_at
		FROM listings
		WHERE category = $1
		ORDER BY id
	`, string(category))
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch %s: %w", category, err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		var cat string
		if err := rows.Scan(
			&l.ID, &l.RunID, &cat, &l.URL, &l.Title, &l.RawPrice, &l.Price,
			&l.RoomCount, &l.BathroomCount, &l.Area, &l.Address, &l.ImageURL, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		l.Category = models.Category(cat)
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
