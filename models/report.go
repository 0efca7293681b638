package models

import "time"

// Listing is the cleaned record stored in PostgreSQL. Sentinel values are
// stored as empty strings and Price holds the parsed CFA amount, 0 if unknown.
type Listing struct {
	ID            int64
	RunID         string
	Category      Category
	URL           string
	Title         string
	RawPrice      string
	Price         float64
	RoomCount     string
	BathroomCount string
	Area          string
	Address       string
	ImageURL      string
	CreatedAt     time.Time
}

// Value returns the cleaned value behind a column name.
func (l *Listing) Value(f Field) string {
	switch f {
	case FieldURL:
		return l.URL
	case FieldListingTitle:
		return l.Title
	case FieldPrice:
		return l.RawPrice
	case FieldRoomCount:
		return l.RoomCount
	case FieldBathroomCount:
		return l.BathroomCount
	case FieldArea:
		return l.Area
	case FieldAddress:
		return l.Address
	case FieldImageURL:
		return l.ImageURL
	}
	return ""
}

// FieldFill is how many listings carry a value for one column.
type FieldFill struct {
	Field  Field
	Filled int
	Total  int
}

// Rate is the filled share in percent.
func (f FieldFill) Rate() float64 {
	if f.Total == 0 {
		return 0
	}
	return float64(f.Filled) * 100 / float64(f.Total)
}

// InsightReport holds the computed analytics over one category run.
type InsightReport struct {
	Category          Category
	TotalListings     int
	PricedListings    int
	AveragePrice      float64
	MinPrice          float64
	MaxPrice          float64
	MostExpensive     *Listing
	Fill              []FieldFill
	ListingsByAddress map[string]int
}
