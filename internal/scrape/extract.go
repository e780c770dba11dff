package scrape

import (
	"fmt"
	"iter"
	"net/url"
	"strings"

	"careerscan/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

// Link is an anchor found on a page: its visible text and absolute target.
type Link struct {
	Text string
	URL  string
}

// ExtractLinks parses content and returns its anchors in document order,
// resolved against baseURL. Each URL is yielded once, with the text of its
// first anchor. Anchors without an href are skipped.
func ExtractLinks(content, baseURL string) (iter.Seq[Link], error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}

	anchors := doc.Find("a")
	return func(yield func(Link) bool) {
		seen := map[string]bool{}
		anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, ok := a.Attr("href")
			if !ok {
				return true
			}

			abs := resolveHref(base, href)
			if seen[abs] {
				return true
			}
			seen[abs] = true

			return yield(Link{Text: util.CleanText(a.Text()), URL: abs})
		})
	}, nil
}
