package coinafrique

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coinafrique-scraper/models"
	"coinafrique-scraper/renderer"
)

func TestParseAddress(t *testing.T) {
	spec, err := testCatalog(t).Category(models.Villa)
	require.NoError(t, err)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"second line wins", "Villas\nDakar, Sénégal", "Dakar, Sénégal"},
		{"blank lines ignored", "\n  Villas \n\n Ngor, Dakar \n", "Ngor, Dakar"},
		{"pattern on single line", "Lot 12 Almadies, Dakar", "Almadies, Dakar"},
		{"no-break space after comma", "Lot 12 Ngor,\u00a0Dakar", "Ngor,\u00a0Dakar"},
		{"narrow no-break space after comma", "Lot 7 Saly,\u202fMbour", "Saly,\u202fMbour"},
		{"raw text when nothing matches", "Dakar", "Dakar"},
		{"trimmed raw text", "  Ouest Foire  ", "Ouest Foire"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAddress(tt.text, spec.addressPattern))
		})
	}
}

func TestParseBackgroundImage(t *testing.T) {
	tests := []struct {
		style string
		want  string
		ok    bool
	}{
		{`background-image: url('https://img/a.jpg');`, "https://img/a.jpg", true},
		{`background-image: url("https://img/b.jpg")`, "https://img/b.jpg", true},
		{`background-image:url( https://img/c.jpg )`, "https://img/c.jpg", true},
		{`background-image: url()`, "", false},
		{`color: red`, "", false},
		{``, "", false},
	}
	for _, tt := range tests {
		got, ok := ParseBackgroundImage(tt.style)
		assert.Equal(t, tt.ok, ok, tt.style)
		assert.Equal(t, tt.want, got, tt.style)
	}
}

func TestScanCountLabelsDigitsWithUnit(t *testing.T) {
	spec, err := testCatalog(t).Category(models.Apartment)
	require.NoError(t, err)
	var rooms *FieldSpec
	for _, f := range spec.Fields {
		if f.Name == models.FieldRoomCount {
			rooms = f
		}
	}
	require.NotNil(t, rooms)

	got, ok := ScanCount("3 chambres", rooms.Keywords, rooms.scanPattern, rooms.Unit)
	assert.True(t, ok)
	assert.Equal(t, "3 pièces", got)

	got, ok = ScanCount("4 Pièces", rooms.Keywords, rooms.scanPattern, rooms.Unit)
	assert.True(t, ok)
	assert.Equal(t, "4 pièces", got)

	got, ok = ScanCount("2\u00a0chambres", rooms.Keywords, rooms.scanPattern, rooms.Unit)
	assert.True(t, ok)
	assert.Equal(t, "2 pièces", got)

	_, ok = ScanCount("Superficie 120 m2", rooms.Keywords, rooms.scanPattern, rooms.Unit)
	assert.False(t, ok)

	_, ok = ScanCount("Chambres climatisées", rooms.Keywords, rooms.scanPattern, rooms.Unit)
	assert.False(t, ok)
}

func TestCountPrimaryShortCircuitsLaterTiers(t *testing.T) {
	ctx := context.Background()
	m := new(MockSession)
	s := newTestScraper(t, m)

	spec, err := s.catalog.Category(models.Apartment)
	require.NoError(t, err)
	rooms := spec.Fields[1]
	require.Equal(t, models.FieldRoomCount, rooms.Name)

	m.On("FindFirst", mock.Anything, rooms.Selectors[0]).
		Return(renderer.Element{Text: " 4 "}, nil).Once()

	value, tier, ok := s.extractField(ctx, spec, rooms)
	require.True(t, ok)
	assert.Equal(t, "4", value)
	assert.Equal(t, "primary", tier)

	m.AssertExpectations(t)
	m.AssertNotCalled(t, "FindFirst", mock.Anything, rooms.Selectors[1])
	m.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

func TestCountFallsThroughToScan(t *testing.T) {
	ctx := context.Background()
	m := new(MockSession)
	s := newTestScraper(t, m)

	spec, err := s.catalog.Category(models.Land)
	require.NoError(t, err)
	var area *FieldSpec
	for _, f := range spec.Fields {
		if f.Name == models.FieldArea {
			area = f
		}
	}
	require.NotNil(t, area)

	m.On("FindFirst", mock.Anything, area.Selectors[0]).
		Return(renderer.Element{}, renderer.ErrNotFound).Once()
	m.On("FindFirst", mock.Anything, area.Selectors[1]).
		Return(renderer.Element{Text: "   "}, nil).Once()
	m.On("FindAll", mock.Anything, area.Scan).
		Return([]renderer.Element{{Text: "Titre foncier"}, {Text: "2 Chambres"}}, nil).Once()

	var missed []string
	value, tier, ok := s.chainFor(spec, area).Run(ctx, func(name string) {
		missed = append(missed, name)
	})
	require.True(t, ok)
	assert.Equal(t, "2 pièces", value)
	assert.Equal(t, "text scan", tier)
	assert.Equal(t, []string{"primary", "secondary"}, missed)
	m.AssertExpectations(t)
}

func TestImageTierMissesWithoutSlide(t *testing.T) {
	ctx := context.Background()
	m := new(MockSession)
	s := newTestScraper(t, m)

	spec, err := s.catalog.Category(models.Villa)
	require.NoError(t, err)
	image := spec.Fields[len(spec.Fields)-1]
	require.Equal(t, models.FieldImageURL, image.Name)

	m.On("WaitFor", mock.Anything, "div.swiper-slide-active", s.cfg.ImageWaitTimeout).
		Return(renderer.ErrWaitTimeout).Once()

	_, _, ok := s.extractField(ctx, spec, image)
	assert.False(t, ok)
	m.AssertExpectations(t)
	m.AssertNotCalled(t, "FindFirst", mock.Anything, mock.Anything)
}
