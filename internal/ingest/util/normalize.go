package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// markupTag matches the inline tags JOE exports put in titles and keyword
// lists. Anything else between angle brackets is treated as text.
var markupTag = regexp.MustCompile(`(?i)</?(a|b|i|u|p|br|em|strong|span|div|font|sup|sub|small|li|ul|ol|h[1-6])(\s[^<>]*)?/?>`)

// StripMarkup flattens HTML fragments to plain text. Values without a known
// tag only get their entities decoded, so "a<b" or "<negotiable>" survive.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return CleanText(s)
	}
	if !markupTag.MatchString(s) {
		return CleanText(html.UnescapeString(s))
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CleanText(s)
	}
	return CleanText(doc.Text())
}

// CountryFromLocations returns the first whitespace-separated token that is
// entirely upper case, or "" when there is none.
//
// "New York, NY, USA" yields "NY,"; a single token like "UNITEDSTATES" is
// returned as is.
func CountryFromLocations(loc string) string {
	for _, w := range strings.Fields(loc) {
		if isUpper(w) {
			return w
		}
	}
	return ""
}

// isUpper is true when w has at least one cased rune and none in lower or
// title case.
func isUpper(w string) bool {
	cased := false
	for _, r := range w {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}
