package coinafrique

import (
	"context"

	"coinafrique-scraper/models"
)

// ExtractDetail scrapes one listing page into a record. It never fails: a
// page that fails to load or whose title never renders yields a record of
// sentinels, and each field that no tier can fill keeps its sentinel.
func (s *Scraper) ExtractDetail(ctx context.Context, spec *CategorySpec, url string) *models.Record {
	rec := models.NewRecord(spec.Category, url)

	if err := s.open(ctx, url, s.cfg.DetailSettle); err != nil {
		s.logger.Error("[detail] Navigation to %s failed, keeping partial record: %v", url, err)
		return rec
	}

	if err := s.session.WaitFor(ctx, s.catalog.TitleSelector, s.cfg.WaitTimeout); err != nil {
		s.logger.Error("[detail] Page did not render for %s, keeping partial record: %v", url, err)
		return rec
	}

	for _, f := range spec.Fields {
		value, tier, ok := s.extractField(ctx, spec, f)
		if !ok {
			s.logger.Warn("[detail] %s: every strategy failed, keeping %s", f.Name, models.Sentinel)
			continue
		}
		rec.Set(f.Name, value)
		if tier == "primary" {
			s.logger.Info("[detail] %s: %s", f.Name, value)
		} else {
			s.logger.Info("[detail] %s (%s): %s", f.Name, tier, value)
		}
	}

	return rec
}

func (s *Scraper) extractField(ctx context.Context, spec *CategorySpec, f *FieldSpec) (string, string, bool) {
	return s.chainFor(spec, f).Run(ctx, func(tier string) {
		s.logger.Warn("[detail] %s: %s strategy failed, trying next", f.Name, tier)
	})
}
