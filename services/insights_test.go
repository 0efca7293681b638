package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinafrique-scraper/models"
)

func sampleListings() []*models.Listing {
	return []*models.Listing{
		{Category: models.Villa, Title: "Villa A", RawPrice: "200 000 000 CFA", Price: 200000000, Address: "Ngor, Dakar", URL: "https://x/1", ImageURL: "https://img/1.jpg"},
		{Category: models.Villa, Title: "Villa B", RawPrice: "50 000 000 CFA", Price: 50000000, Address: "Ngor, Dakar", URL: "https://x/2"},
		{Category: models.Villa, Title: "Villa C", RawPrice: "120 000 000 CFA", Price: 120000000, Address: "Saly, Mbour", URL: "https://x/3"},
		{Category: models.Villa, Title: "Villa D", RawPrice: "300 000 000 CFA", Price: 300000000, URL: "https://x/4"},
		{Category: models.Villa, RawPrice: "Prix sur demande", URL: "https://x/5", Address: "Saly, Mbour"},
	}
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(models.Villa, sampleListings())
	assert.Equal(t, 5, r.TotalListings)
	assert.Equal(t, 4, r.PricedListings)
}

func TestInsightPrices(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(models.Villa, sampleListings())
	assert.Equal(t, 167500000.0, r.AveragePrice)
	assert.Equal(t, 50000000.0, r.MinPrice)
	assert.Equal(t, 300000000.0, r.MaxPrice)
	require.NotNil(t, r.MostExpensive)
	assert.Equal(t, "Villa D", r.MostExpensive.Title)
}

func TestInsightFieldCoverage(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(models.Villa, sampleListings())

	fill := map[models.Field]models.FieldFill{}
	for _, f := range r.Fill {
		fill[f.Field] = f
	}
	require.Len(t, r.Fill, len(models.Villa.Columns()))
	assert.Equal(t, 5, fill[models.FieldURL].Filled)
	assert.Equal(t, 4, fill[models.FieldListingTitle].Filled)
	assert.Equal(t, 1, fill[models.FieldImageURL].Filled)
	assert.InDelta(t, 20.0, fill[models.FieldImageURL].Rate(), 0.001)
	assert.Equal(t, 0, fill[models.FieldRoomCount].Filled)
}

func TestInsightAddressRanking(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(models.Villa, sampleListings())

	assert.Equal(t, 2, r.ListingsByAddress["Ngor, Dakar"])
	top := TopAddresses(r.ListingsByAddress, 1)
	require.Len(t, top, 1)
	assert.Equal(t, AddressCount{"Ngor, Dakar", 2}, top[0])
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(models.Land, nil)
	assert.Equal(t, 0, r.TotalListings)
	assert.Nil(t, r.MostExpensive)
	assert.Len(t, r.Fill, len(models.Land.Columns()))

	var buf bytes.Buffer
	svc.Fprint(&buf, r)
	assert.Contains(t, buf.String(), "No price data available")
	assert.Contains(t, buf.String(), "No address data")
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	var buf bytes.Buffer
	svc.Fprint(&buf, svc.Generate(models.Villa, sampleListings()))

	out := buf.String()
	assert.Contains(t, out, "COINAFRIQUE VILLA SUMMARY")
	assert.Contains(t, out, "167 500 000 CFA")
	assert.Contains(t, out, "Ngor, Dakar")
}

func TestFormatCFA(t *testing.T) {
	assert.Equal(t, "0 CFA", formatCFA(0))
	assert.Equal(t, "950 CFA", formatCFA(950))
	assert.Equal(t, "1 500 000 CFA", formatCFA(1500000))
}
