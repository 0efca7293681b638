package models

import (
	"fmt"
	"strings"
)

// Sentinel marks a field the scraper could not fill. Every exported row
// carries either a scraped value or this marker.
const Sentinel = "N/A"

// Category is one of the listing sections of the site.
type Category string

const (
	Apartment Category = "apartment"
	Villa     Category = "villa"
	Land      Category = "land"
)

// Categories lists every supported category in menu order.
var Categories = []Category{Apartment, Villa, Land}

var categorySlugs = map[string]Category{
	"apartment":    Apartment,
	"apartments":   Apartment,
	"appartements": Apartment,
	"villa":        Villa,
	"villas":       Villa,
	"land":         Land,
	"lands":        Land,
	"terrains":     Land,
}

// ParseCategory accepts the English name or the site's slug.
func ParseCategory(s string) (Category, error) {
	c, ok := categorySlugs[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Field is the column name of a ListingRecord attribute.
type Field string

const (
	FieldURL           Field = "url"
	FieldListingTitle  Field = "listing_title"
	FieldPrice         Field = "price"
	FieldRoomCount     Field = "room_count"
	FieldBathroomCount Field = "bathroom_count"
	FieldArea          Field = "area"
	FieldAddress       Field = "address"
	FieldImageURL      Field = "image_url"
)

var columns = map[Category][]Field{
	Apartment: {FieldURL, FieldPrice, FieldRoomCount, FieldAddress, FieldBathroomCount, FieldImageURL},
	Villa:     {FieldURL, FieldListingTitle, FieldPrice, FieldRoomCount, FieldAddress, FieldImageURL},
	Land:      {FieldURL, FieldPrice, FieldArea, FieldAddress, FieldImageURL},
}

// Columns returns the fixed, ordered column set of a category.
func (c Category) Columns() []Field {
	cols := columns[c]
	out := make([]Field, len(cols))
	copy(out, cols)
	return out
}

// HasColumn reports whether f belongs to the category's column set.
func (c Category) HasColumn(f Field) bool {
	for _, col := range columns[c] {
		if col == f {
			return true
		}
	}
	return false
}

// Record is one exported row. Its column set is fixed at construction.
type Record struct {
	Category Category
	columns  []Field
	values   map[Field]string
}

// NewRecord returns a record with url set and every other column at the sentinel.
func NewRecord(c Category, url string) *Record {
	r := &Record{
		Category: c,
		columns:  c.Columns(),
		values:   make(map[Field]string),
	}
	for _, col := range r.columns {
		r.values[col] = Sentinel
	}
	r.values[FieldURL] = url
	return r
}

// Set stores a scraped value. Unknown columns and empty values are ignored
// so the row shape never changes.
func (r *Record) Set(f Field, value string) {
	if _, ok := r.values[f]; !ok || value == "" {
		return
	}
	r.values[f] = value
}

// Get returns the value of a column, or the sentinel for unknown columns.
func (r *Record) Get(f Field) string {
	if v, ok := r.values[f]; ok {
		return v
	}
	return Sentinel
}

// URL is the source-of-truth key of the record.
func (r *Record) URL() string {
	return r.values[FieldURL]
}

// Row returns the values in column order.
func (r *Record) Row() []string {
	row := make([]string, len(r.columns))
	for i, col := range r.columns {
		row[i] = r.values[col]
	}
	return row
}

// Header returns the CSV header of a category.
func Header(c Category) []string {
	cols := columns[c]
	h := make([]string, len(cols))
	for i, col := range cols {
		h[i] = string(col)
	}
	return h
}
