package coinafrique

import (
	"net/url"
	"strconv"
	"strings"
)

// BuildPageURL returns base with its page query parameter set to page.
// Every other parameter, the scheme, host and path are kept.
func BuildPageURL(base string, page int) string {
	u, err := url.Parse(base)
	if err != nil {
		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		return base + sep + "page=" + strconv.Itoa(page)
	}

	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// ResolveURL makes href absolute against base and drops any fragment.
// It returns "" when either cannot be parsed.
func ResolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := b.ResolveReference(ref)
	abs.Fragment = ""
	return abs.String()
}
