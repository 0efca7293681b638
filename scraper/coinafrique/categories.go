package coinafrique

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"

	"coinafrique-scraper/models"
)

//go:embed categories.yaml
var defaultCatalog []byte

// space matches Unicode spaces too; RE2's \s is ASCII only.
const space = `[\s\pZ]`

// FieldKind selects how a field's fallback chain is built.
type FieldKind string

const (
	KindText    FieldKind = "text"
	KindCount   FieldKind = "count"
	KindAddress FieldKind = "address"
	KindImage   FieldKind = "image"
)

// Catalog is the static table of everything category-specific.
type Catalog struct {
	BaseURL             string                            `yaml:"base_url"`
	ListingLinkSelector string                            `yaml:"listing_link_selector"`
	TitleSelector       string                            `yaml:"title_selector"`
	Categories          map[models.Category]*CategorySpec `yaml:"categories"`
}

// CategorySpec describes one listing section of the site.
type CategorySpec struct {
	Category      models.Category `yaml:"-"`
	Path          string          `yaml:"path"`
	ExportName    string          `yaml:"export_name"`
	URLMarkers    []string        `yaml:"url_markers"`
	AddressSuffix string          `yaml:"address_suffix"`
	Fields        []*FieldSpec    `yaml:"fields"`

	addressPattern *regexp.Regexp
}

// FieldSpec declares one extracted column and its strategies.
type FieldSpec struct {
	Name      models.Field `yaml:"name"`
	Kind      FieldKind    `yaml:"kind"`
	Selectors []string     `yaml:"selectors"`
	Scan      string       `yaml:"scan"`
	Keywords  []string     `yaml:"keywords"`
	Unit      string       `yaml:"unit"`
	Attribute string       `yaml:"attribute"`

	scanPattern *regexp.Regexp
}

// DefaultCatalog returns the embedded category table.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a category table from path, or the embedded one when
// path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML category table.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if err := c.prepare(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return &c, nil
}

func (c *Catalog) prepare() error {
	base, err := url.Parse(c.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL)
	}
	if c.ListingLinkSelector == "" || c.TitleSelector == "" {
		return fmt.Errorf("listing_link_selector and title_selector are required")
	}

	for _, cat := range models.Categories {
		spec, ok := c.Categories[cat]
		if !ok || spec == nil {
			return fmt.Errorf("category %q missing", cat)
		}
		spec.Category = cat
		if err := spec.prepare(); err != nil {
			return fmt.Errorf("category %q: %w", cat, err)
		}
	}
	return nil
}

func (s *CategorySpec) prepare() error {
	if s.Path == "" || s.ExportName == "" {
		return fmt.Errorf("path and export_name are required")
	}
	if len(s.URLMarkers) == 0 {
		return fmt.Errorf("at least one url marker is required")
	}

	suffix := ""
	if s.AddressSuffix != "" {
		suffix = `(?:` + space + `+` + regexp.QuoteMeta(s.AddressSuffix) + `)?`
	}
	word := `[A-Za-zÀ-ÿ\s\pZ-]+`
	s.addressPattern = regexp.MustCompile(`(` + word + `,` + space + `*` + word + `)` + suffix + `$`)

	for _, f := range s.Fields {
		if f.Name == models.FieldURL || !s.Category.HasColumn(f.Name) {
			return fmt.Errorf("field %q is not a column of this category", f.Name)
		}
		if len(f.Selectors) == 0 {
			return fmt.Errorf("field %q has no selectors", f.Name)
		}
		switch f.Kind {
		case KindText, KindAddress:
		case KindImage:
			if f.Attribute == "" {
				f.Attribute = "style"
			}
		case KindCount:
			if f.Scan == "" {
				break
			}
			if len(f.Keywords) == 0 || f.Unit == "" {
				return fmt.Errorf("field %q: scan needs keywords and unit", f.Name)
			}
			quoted := make([]string, len(f.Keywords))
			for i, k := range f.Keywords {
				quoted[i] = regexp.QuoteMeta(strings.ToLower(k))
			}
			f.scanPattern = regexp.MustCompile(`(\d+)` + space + `*(` + strings.Join(quoted, "|") + `)`)
		default:
			return fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
		}
	}
	return nil
}

// Category returns the spec of c.
func (c *Catalog) Category(cat models.Category) (*CategorySpec, error) {
	spec, ok := c.Categories[cat]
	if !ok {
		return nil, fmt.Errorf("catalog: no category %q", cat)
	}
	return spec, nil
}

// StartURL is the first listing page of a category.
func (c *Catalog) StartURL(spec *CategorySpec) string {
	return ResolveURL(c.BaseURL, spec.Path)
}

// Admits reports whether an absolute listing URL belongs to this category.
func (s *CategorySpec) Admits(u string) bool {
	for _, m := range s.URLMarkers {
		if !strings.Contains(u, m) {
			return false
		}
	}
	return true
}
