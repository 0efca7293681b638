package services

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"coinafrique-scraper/models"
	"coinafrique-scraper/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(category models.Category, listings []*models.Listing) *models.InsightReport {
	report := &models.InsightReport{
		Category:          category,
		ListingsByAddress: make(map[string]int),
	}

	cols := category.Columns()
	report.Fill = make([]models.FieldFill, len(cols))
	for i, col := range cols {
		report.Fill[i] = models.FieldFill{Field: col, Total: len(listings)}
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var priced []*models.Listing
	for _, l := range listings {
		for i := range report.Fill {
			if l.Value(report.Fill[i].Field) != "" {
				report.Fill[i].Filled++
			}
		}
		if l.Price > 0 {
			priced = append(priced, l)
		}
		if l.Address != "" {
			report.ListingsByAddress[l.Address]++
		}
	}

	report.PricedListings = len(priced)
	if len(priced) > 0 {
		report.MinPrice = priced[0].Price
		report.MaxPrice = priced[0].Price
		report.MostExpensive = priced[0]
		var total float64
		for _, l := range priced {
			total += l.Price
			if l.Price < report.MinPrice {
				report.MinPrice = l.Price
			}
			if l.Price > report.MaxPrice {
				report.MaxPrice = l.Price
				report.MostExpensive = l
			}
		}
		report.AveragePrice = round0(total / float64(len(priced)))
	}

	s.logger.Debug("[insights] %s: %d listings, %d priced", category, report.TotalListings, report.PricedListings)
	return report
}

// Fprint writes the report to w with terminal colours.
func (s *InsightService) Fprint(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 COINAFRIQUE %s SUMMARY\033[0m\n", strings.ToUpper(string(r.Category)))
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total listings scraped : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  Listings with a price  : \033[1m%d\033[0m\n", r.PricedListings)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Field Coverage\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, f := range r.Fill {
		fmt.Fprintf(w, "  %-16s %4d/%-4d \033[1m%5.1f%%\033[0m\n", f.Field, f.Filled, f.Total, f.Rate())
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Price Statistics (CFA)\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.PricedListings > 0 {
		fmt.Fprintf(w, "  Average price : \033[1;32m%s\033[0m\n", formatCFA(r.AveragePrice))
		fmt.Fprintf(w, "  Minimum price : \033[1;32m%s\033[0m\n", formatCFA(r.MinPrice))
		fmt.Fprintf(w, "  Maximum price : \033[1;32m%s\033[0m\n", formatCFA(r.MaxPrice))
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	if r.MostExpensive != nil {
		fmt.Fprintf(w, "\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		if r.MostExpensive.Title != "" {
			fmt.Fprintf(w, "  %s\n", truncate(r.MostExpensive.Title, 50))
		}
		fmt.Fprintf(w, "  Address : %s\n", r.MostExpensive.Address)
		fmt.Fprintf(w, "  Price   : \033[1;31m%s\033[0m\n", r.MostExpensive.RawPrice)
		fmt.Fprintf(w, "  URL     : %s\n", r.MostExpensive.URL)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Top Addresses\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	top := TopAddresses(r.ListingsByAddress, 10)
	if len(top) == 0 {
		fmt.Fprintf(w, "  No address data\n")
	} else {
		for _, a := range top {
			bar := strings.Repeat("█", a.Count)
			fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(a.Address, 28), bar, a.Count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// AddressCount is one row of the address ranking.
type AddressCount struct {
	Address string
	Count   int
}

// TopAddresses ranks addresses by count, then name, keeping at most n.
func TopAddresses(byAddress map[string]int, n int) []AddressCount {
	var out []AddressCount
	for addr, cnt := range byAddress {
		if addr != "" {
			out = append(out, AddressCount{addr, cnt})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Address < out[j].Address
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func round0(f float64) float64 {
	return float64(int64(f + 0.5))
}

// formatCFA groups thousands with spaces, as the site displays prices.
func formatCFA(amount float64) string {
	s := fmt.Sprintf("%d", int64(amount))
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String() + " CFA"
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max-3]) + "..."
}
