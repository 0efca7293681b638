package coinafrique

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// backgroundURLRegexp captures the target of a CSS url(...), quoted or not.
var backgroundURLRegexp = regexp.MustCompile(`url\(\s*(?:"([^"]*)"|'([^']*)'|([^)'"]*))\s*\)`)

// ParseAddress picks the address out of the detail block text. The first
// line of a multi-line block is the category label, so the second line wins.
// Single-line text goes through pattern, and the raw text is the last resort.
func ParseAddress(text string, pattern *regexp.Regexp) string {
	text = strings.TrimSpace(text)

	var parts []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	if len(parts) > 1 {
		return parts[1]
	}

	if pattern != nil {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return text
}

// ParseBackgroundImage extracts the URL from an inline style such as
// `background-image: url('https://x/y.jpg')`.
func ParseBackgroundImage(style string) (string, bool) {
	m := backgroundURLRegexp.FindStringSubmatch(style)
	if m == nil {
		return "", false
	}
	for _, g := range m[1:] {
		if g = strings.TrimSpace(g); g != "" {
			return g, true
		}
	}
	return "", false
}

// ScanCount looks for "<digits> <keyword>" in an item's text and labels the
// digits with unit. The unit is applied whichever keyword matched.
func ScanCount(text string, keywords []string, pattern *regexp.Regexp, unit string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))

	mentioned := false
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			mentioned = true
			break
		}
	}
	if !mentioned || pattern == nil {
		return "", false
	}

	m := pattern.FindStringSubmatch(lower)
	if m == nil {
		return "", false
	}
	return m[1] + " " + unit, true
}

// chainFor builds the ordered tiers of one field.
func (s *Scraper) chainFor(spec *CategorySpec, f *FieldSpec) Chain {
	var chain Chain

	switch f.Kind {
	case KindText:
		for i, sel := range f.Selectors {
			chain = append(chain, s.textTier(tierName(i), sel))
		}

	case KindCount:
		for i, sel := range f.Selectors {
			chain = append(chain, s.textTier(tierName(i), sel))
		}
		if f.Scan != "" {
			chain = append(chain, s.scanTier(f))
		}

	case KindAddress:
		for i, sel := range f.Selectors {
			chain = append(chain, s.addressTier(tierName(i), sel, spec.addressPattern))
		}

	case KindImage:
		for i, sel := range f.Selectors {
			chain = append(chain, s.imageTier(tierName(i), sel, f.Attribute))
		}
	}
	return chain
}

func tierName(i int) string {
	switch i {
	case 0:
		return "primary"
	case 1:
		return "secondary"
	default:
		return fmt.Sprintf("fallback %d", i)
	}
}

func (s *Scraper) textTier(name, selector string) Tier {
	return Tier{Name: name, Try: func(ctx context.Context) Result {
		el, err := s.session.FindFirst(ctx, selector)
		if err != nil {
			s.logger.Debug("[detail] %s selector %q: %v", name, selector, err)
			return TryNext
		}
		return Found(strings.TrimSpace(el.Text))
	}}
}

func (s *Scraper) scanTier(f *FieldSpec) Tier {
	return Tier{Name: "text scan", Try: func(ctx context.Context) Result {
		items, err := s.session.FindAll(ctx, f.Scan)
		if err != nil {
			s.logger.Debug("[detail] scan %q: %v", f.Scan, err)
			return TryNext
		}
		for _, item := range items {
			if v, ok := ScanCount(item.Text, f.Keywords, f.scanPattern, f.Unit); ok {
				return Found(v)
			}
		}
		return TryNext
	}}
}

func (s *Scraper) addressTier(name, selector string, pattern *regexp.Regexp) Tier {
	return Tier{Name: name, Try: func(ctx context.Context) Result {
		el, err := s.session.FindFirst(ctx, selector)
		if err != nil {
			s.logger.Debug("[detail] address selector %q: %v", selector, err)
			return TryNext
		}
		return Found(ParseAddress(el.Text, pattern))
	}}
}

func (s *Scraper) imageTier(name, selector, attribute string) Tier {
	return Tier{Name: name, Try: func(ctx context.Context) Result {
		if err := s.session.WaitFor(ctx, selector, s.cfg.ImageWaitTimeout); err != nil {
			s.logger.Debug("[detail] image slide: %v", err)
			return TryNext
		}
		el, err := s.session.FindFirst(ctx, selector)
		if err != nil {
			s.logger.Debug("[detail] image slide: %v", err)
			return TryNext
		}
		style, ok := el.Attr(attribute)
		if !ok {
			s.logger.Debug("[detail] image slide has no %s attribute", attribute)
			return TryNext
		}
		src, ok := ParseBackgroundImage(style)
		if !ok {
			s.logger.Debug("[detail] no url(...) in %s %q", attribute, style)
			return TryNext
		}
		return Found(src)
	}}
}
