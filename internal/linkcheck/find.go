package linkcheck

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`http[s]?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\(\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)

// FindURLs returns every http(s) URL in r, in order of first appearance.
func FindURLs(r io.Reader) ([]string, error) {
	var out []string
	seen := map[string]bool{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		for _, m := range urlPattern.FindAllString(sc.Text(), -1) {
			u := trimURL(m)
			if seen[u] {
				continue
			}
			seen[u] = true
			out = append(out, u)
		}
	}
	if err := sc.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// trimURL drops punctuation the pattern swallows from surrounding prose
// and Markdown, e.g. "[x](https://a.com/b)." -> "https://a.com/b".
func trimURL(u string) string {
	for {
		switch {
		case strings.HasSuffix(u, ".") || strings.HasSuffix(u, ",") || strings.HasSuffix(u, ";"):
			u = u[:len(u)-1]
		case strings.HasSuffix(u, ")") && strings.Count(u, ")") > strings.Count(u, "("):
			u = u[:len(u)-1]
		default:
			return u
		}
	}
}
