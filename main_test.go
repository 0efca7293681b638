package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinafrique-scraper/config"
	"coinafrique-scraper/models"
	"coinafrique-scraper/renderer"
	"coinafrique-scraper/storage"
	"coinafrique-scraper/utils"
)

type countingSession struct {
	*renderer.HTMLSession
	closed int
}

func (s *countingSession) Close() error {
	s.closed++
	return s.HTMLSession.Close()
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Renderer:         "static",
		MaxRetries:       1,
		WaitTimeout:      10 * time.Millisecond,
		ImageWaitTimeout: 10 * time.Millisecond,
		OutputDir:        t.TempDir(),
		LogLevel:         "error",
	}
}

func staticOpener(pages renderer.PageSet, s **countingSession) sessionOpener {
	return func(*config.Config) (renderer.Session, error) {
		*s = &countingSession{HTMLSession: renderer.NewHTMLSession(pages)}
		return *s, nil
	}
}

func listPage(slugs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, slug := range slugs {
		fmt.Fprintf(&b, `<a class="card-image" href="/annonce/villas/%s"></a>`, slug)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func detailPage(slug string) string {
	return fmt.Sprintf(`<html><body>
<h1 class="title">Villa %s</h1>
<p class="price">100 000 000 CFA</p>
<div class="extra-info-ad-detail"><div>Villas</div><div>Ngor, Dakar</div></div>
</body></html>`, slug)
}

func TestRunAbortAtPagePrompt(t *testing.T) {
	cfg := testConfig(t)
	var session *countingSession
	var out bytes.Buffer

	code := run(context.Background(), []string{"villas"}, strings.NewReader("200\n0\n"), &out, cfg,
		staticOpener(renderer.PageSet{}, &session))

	assert.Equal(t, 0, code)
	assert.Equal(t, 1, strings.Count(out.String(), "Please enter a number between 0 and 119."))
	require.NotNil(t, session)
	assert.Equal(t, 1, session.closed)

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunScrapesAndExports(t *testing.T) {
	cfg := testConfig(t)
	base := "https://sn.coinafrique.com/categorie/villas?page="
	pages := renderer.PageSet{
		base + "1": listPage("v-1", "v-2", "v-3", "v-4", "v-5"),
		base + "2": listPage("v-4", "v-5", "v-6"),
	}
	for i := 1; i <= 6; i++ {
		slug := fmt.Sprintf("v-%d", i)
		pages["https://sn.coinafrique.com/annonce/villas/"+slug] = detailPage(slug)
	}

	var session *countingSession
	var out bytes.Buffer
	code := run(context.Background(), []string{"villa"}, strings.NewReader("3\n"), &out, cfg,
		staticOpener(pages, &session))

	require.Equal(t, 0, code, out.String())
	assert.Equal(t, 1, session.closed)

	header, rows, err := storage.ReadCSV(filepath.Join(cfg.OutputDir, "villas.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{"url", "listing_title", "price", "room_count", "address", "image_url"}, header)
	require.Len(t, rows, 6)
	for _, row := range rows {
		assert.Len(t, row, len(header))
		assert.Equal(t, "Ngor, Dakar", row[4])
		assert.Equal(t, "N/A", row[3])
	}
	assert.Contains(t, out.String(), "COINAFRIQUE VILLA SUMMARY")
}

func TestRunMenuAndNoListings(t *testing.T) {
	cfg := testConfig(t)
	var session *countingSession
	var out bytes.Buffer

	code := run(context.Background(), nil, strings.NewReader("3\n2\n"), &out, cfg,
		staticOpener(renderer.PageSet{}, &session))

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "3) land")
	assert.Equal(t, 1, session.closed)

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunUnknownCategory(t *testing.T) {
	cfg := testConfig(t)
	var session *countingSession

	code := run(context.Background(), []string{"bureaux"}, strings.NewReader(""), &bytes.Buffer{}, cfg,
		staticOpener(renderer.PageSet{}, &session))

	assert.Equal(t, 1, code)
	assert.Equal(t, 1, session.closed)
}

type memoryStore struct {
	written  map[models.Category][]*models.Listing
	writeErr error
	closed   int
}

func (s *memoryStore) Write(category models.Category, listings []*models.Listing) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.written[category] = listings
	return nil
}

func (s *memoryStore) FetchCategory(category models.Category) ([]*models.Listing, error) {
	return s.written[category], nil
}

func (s *memoryStore) Close() error {
	s.closed++
	return nil
}

func TestStoreListingsReadsBackFromStore(t *testing.T) {
	stored := []*models.Listing{{Category: models.Land, URL: "https://x/annonce/terrains/1"}}
	store := &memoryStore{written: map[models.Category][]*models.Listing{models.Villa: {{URL: "old"}}}}

	got := storeListings(utils.Discard(), store, models.Land, stored)
	assert.Equal(t, stored, got)
	assert.Equal(t, 1, store.closed)
	assert.Len(t, store.written[models.Villa], 1, "other categories untouched")
}

func TestStoreListingsFallsBackOnWriteError(t *testing.T) {
	inMemory := []*models.Listing{{URL: "https://x/1"}}
	store := &memoryStore{writeErr: errors.New("connection reset")}

	got := storeListings(utils.Discard(), store, models.Land, inMemory)
	assert.Equal(t, inMemory, got)
	assert.Equal(t, 1, store.closed)
}
