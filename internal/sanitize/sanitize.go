// Package sanitize normalizes free text coming from import rows: slugs for
// attribute and term keys, plain text for term names and SKUs, and
// allowlisted HTML for product descriptions.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	strictPolicy  = bluemonday.StrictPolicy()
	contentPolicy = bluemonday.UGCPolicy()

	// Anything that is not a slug character becomes a separator.
	nonSlugChars = regexp.MustCompile(`[^a-z0-9_\-]+`)
	dashRuns     = regexp.MustCompile(`-{2,}`)

	// Sanitized output escapes ">" inside attribute values, so this matches
	// whole tags only.
	tagPattern = regexp.MustCompile(`<[^>]*>`)
	textQuotes = strings.NewReplacer("&#39;", "'", "&#34;", `"`)
)

// Title converts s to a URL-safe slug: tags stripped, accents folded,
// lowercased, and every run of other characters collapsed to a single dash.
//
//	Title("Café Colour ") == "cafe-colour"
func Title(s string) string {
	s = Text(s)
	s = foldAccents(s)
	s = strings.ToLower(s)
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Text strips all markup from s and trims surrounding whitespace.
// HTML entities are decoded so "A &amp; B" and "A & B" compare equal.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// TermText cleans a term display name. Empty results mean the option should
// be dropped.
func TermText(s string) string {
	return Text(s)
}

// PostContent keeps the markup allowed in product descriptions and removes
// everything else (scripts, event handlers, unknown tags). Quotes in text
// are left as typed; inside attribute values they stay escaped.
func PostContent(s string) string {
	out := contentPolicy.Sanitize(s)

	var b strings.Builder
	b.Grow(len(out))
	last := 0
	for _, loc := range tagPattern.FindAllStringIndex(out, -1) {
		b.WriteString(textQuotes.Replace(out[last:loc[0]]))
		b.WriteString(out[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(textQuotes.Replace(out[last:]))
	return b.String()
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
