package util

import "strings"

// CleanText collapses runs of whitespace (including nbsp) to single spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}
