package coinafrique

import (
	"context"
	"strings"

	"coinafrique-scraper/utils"
)

// Discover walks listing pages 1..maxPages and returns the distinct detail
// URLs of the category. It stops early at the first page that fails to load
// or whose listing links never appear or come back empty; none is an error.
func (s *Scraper) Discover(ctx context.Context, spec *CategorySpec, maxPages int) []string {
	start := s.catalog.StartURL(spec)
	found := utils.NewURLSet()

	for page := 1; page <= maxPages; page++ {
		pageURL := BuildPageURL(start, page)
		s.logger.Info("[discovery] Page %d/%d: %s", page, maxPages, pageURL)

		if err := s.open(ctx, pageURL, s.cfg.ListSettle); err != nil {
			s.logger.Warn("[discovery] Page %d never loaded, end of pages: %v", page, err)
			break
		}

		if err := s.session.WaitFor(ctx, s.catalog.ListingLinkSelector, s.cfg.WaitTimeout); err != nil {
			s.logger.Warn("[discovery] Listing links never appeared on page %d, end of pages: %v", page, err)
			break
		}

		links, err := s.session.FindAll(ctx, s.catalog.ListingLinkSelector)
		if err != nil {
			s.logger.Warn("[discovery] Reading listing links on page %d failed, end of pages: %v", page, err)
			break
		}
		if len(links) == 0 {
			s.logger.Warn("[discovery] No listings on page %d, end of pages", page)
			break
		}

		admitted := 0
		for _, link := range links {
			href, ok := link.Attr("href")
			if !ok || strings.TrimSpace(href) == "" {
				continue
			}
			abs := ResolveURL(s.catalog.BaseURL, href)
			if abs == "" || !spec.Admits(abs) {
				s.logger.Debug("[discovery] Skipping %q: outside the %s section", href, spec.Category)
				continue
			}
			if found.Add(abs) {
				admitted++
			}
		}

		s.logger.Info("[discovery] Page %d: %d links, %d new, %d collected so far",
			page, len(links), admitted, found.Size())
	}

	return found.Snapshot()
}
