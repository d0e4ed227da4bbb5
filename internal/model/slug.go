package model

import (
	"regexp"
	"strings"
)

var (
	slugStrip      = regexp.MustCompile(`[^\w\s-]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugHyphens    = regexp.MustCompile(`-+`)
)

// Slugify turns a title into a filename-safe slug. The order of operations
// (lowercase, trim, strip, whitespace to hyphen, collapse hyphens) is fixed:
// published filenames depend on it staying stable.
func Slugify(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugWhitespace.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return s
}
