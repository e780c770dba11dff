package scrape

import (
	"net/url"
	"strings"
)

// resolveHref makes href absolute against base using RFC 3986 reference
// resolution. Absolute hrefs come back untouched so careers regexes see
// exactly what the page wrote.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
