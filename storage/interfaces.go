package storage

import "coinafrique-scraper/models"

var (
	_ ListingStore = (*PostgresWriter)(nil)
	_ RecordWriter = (*CSVWriter)(nil)
)

// RecordWriter persists scraped records exactly as extracted.
type RecordWriter interface {
	WriteRecords(records []*models.Record) error
	Close() error
}

// ListingWriter is the interface any database backend must satisfy.
type ListingWriter interface {
	Write(category models.Category, listings []*models.Listing) error
	Close() error
}

// ListingStore is a ListingWriter that can read a category back.
type ListingStore interface {
	ListingWriter
	FetchCategory(category models.Category) ([]*models.Listing, error)
}
