package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"coinafrique-scraper/models"
	"coinafrique-scraper/utils"
)

// priceRegexp captures the first amount, thousands separated by spaces or dots
var priceRegexp = regexp.MustCompile(`\d[\d\s.\x{00A0}\x{202F}]*`)

// Cleaner transforms scraped Records into Listings ready for storage.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean converts records into listings tagged with runID. Sentinels become
// empty strings and the display price is parsed into a CFA amount.
func (c *Cleaner) Clean(runID string, records []*models.Record) []*models.Listing {
	seen := make(map[string]struct{})
	result := make([]*models.Listing, 0, len(records))
	now := time.Now()

	for _, r := range records {
		url := strings.TrimSpace(r.URL())
		if url == "" {
			c.logger.Warn("[cleaner] Dropping record with empty URL")
			continue
		}

		if _, dup := seen[url]; dup {
			c.logger.Debug("[cleaner] Duplicate URL skipped: %s", url)
			continue
		}
		seen[url] = struct{}{}

		rawPrice := value(r, models.FieldPrice)
		listing := &models.Listing{
			RunID:         runID,
			Category:      r.Category,
			URL:           url,
			Title:         value(r, models.FieldListingTitle),
			RawPrice:      rawPrice,
			Price:         ParsePrice(rawPrice),
			RoomCount:     value(r, models.FieldRoomCount),
			BathroomCount: value(r, models.FieldBathroomCount),
			Area:          value(r, models.FieldArea),
			Address:       value(r, models.FieldAddress),
			ImageURL:      value(r, models.FieldImageURL),
			CreatedAt:     now,
		}

		result = append(result, listing)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(records), len(result), len(records)-len(result))
	return result
}

// ParsePrice extracts a CFA amount from a display price.
// Examples:
//
//	"150 000 000 CFA" → 150000000
//	"450.000 FCFA / mois" → 450000
//	"Prix sur demande" → 0
func ParsePrice(raw string) float64 {
	match := priceRegexp.FindString(raw)
	if match == "" {
		return 0
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, match)

	amount, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	return amount
}

func value(r *models.Record, f models.Field) string {
	v := r.Get(f)
	if v == models.Sentinel {
		return ""
	}
	return normaliseText(v)
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
