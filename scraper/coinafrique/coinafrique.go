package coinafrique

import (
	"context"
	"errors"
	"time"

	"coinafrique-scraper/config"
	"coinafrique-scraper/models"
	"coinafrique-scraper/renderer"
	"coinafrique-scraper/utils"
)

// MaxPages is the last listing page the site serves.
const MaxPages = 119

// ErrNoListings means discovery found nothing to extract.
var ErrNoListings = errors.New("no listing URLs discovered")

// Scraper runs discovery and detail extraction over one renderer session.
type Scraper struct {
	cfg      *config.Config
	logger   *utils.Logger
	session  renderer.Session
	catalog  *Catalog
	throttle *utils.Throttle
	retry    *utils.RetryConfig
}

// New creates a Scraper. The caller owns session and closes it.
func New(cfg *config.Config, logger *utils.Logger, session renderer.Session, catalog *Catalog) *Scraper {
	return &Scraper{
		cfg:      cfg,
		logger:   logger,
		session:  session,
		catalog:  catalog,
		throttle: utils.NewThrottle(cfg.RateLimitMs),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Run discovers the listings of a category over at most maxPages pages and
// extracts one record per URL. It fails only with ErrNoListings.
func (s *Scraper) Run(ctx context.Context, cat models.Category, maxPages int) ([]*models.Record, error) {
	spec, err := s.catalog.Category(cat)
	if err != nil {
		return nil, err
	}

	s.logger.Info("[coinafrique] Collecting %s listing URLs, up to %d pages", cat, maxPages)
	urls := s.Discover(ctx, spec, maxPages)
	s.logger.Info("[coinafrique] URL collection done: %d unique listings to scrape", len(urls))

	if len(urls) == 0 {
		return nil, ErrNoListings
	}

	records := make([]*models.Record, 0, len(urls))
	for i, u := range urls {
		s.logger.Info("[detail] Scraping %s %d/%d: %s", cat, i+1, len(urls), u)
		records = append(records, s.ExtractDetail(ctx, spec, u))
	}

	s.logger.Info("[coinafrique] Scrape complete: %d records", len(records))
	return records, nil
}

// open navigates the session and lets the page settle. A navigation that
// still fails after retries is returned; the tab may hold the previous page.
func (s *Scraper) open(ctx context.Context, url string, settle time.Duration) error {
	if err := s.throttle.Wait(ctx); err != nil {
		s.logger.Warn("[coinafrique] Throttle wait interrupted: %v", err)
	}

	err := s.retry.Do(ctx, "navigate", func() error {
		return s.session.Navigate(ctx, url)
	})
	if err != nil {
		return err
	}

	if err := utils.Sleep(ctx, settle); err != nil {
		s.logger.Warn("[coinafrique] Settle delay interrupted: %v", err)
	}
	return nil
}
