// Package sanitize converts toot bodies from the feed's embedded HTML
// to plain text, and derives the text form used for duplicate checks.
package sanitize

import "regexp"

var (
	paragraphCloseRe = regexp.MustCompile(`</p>`)
	lineBreakRe      = regexp.MustCompile(`\x{2028}|<br\s*/?>`)
	tagRe            = regexp.MustCompile(`<[^>]*?>`)
	fingerprintRe    = regexp.MustCompile(`\s|\?|\t`)
)

// Normalize rewrites a toot body to plain text: paragraph closes become
// blank lines, explicit line breaks (including U+2028) become newlines,
// and any remaining tags are stripped. The break markers must be
// rewritten before the generic tag strip, or they would be deleted as
// plain tags instead of converted.
func Normalize(raw string) string {
	text := paragraphCloseRe.ReplaceAllString(raw, "\n\n")
	text = lineBreakRe.ReplaceAllString(text, "\n")
	return tagRe.ReplaceAllString(text, "")
}

// Fingerprint collapses a toot body to the form compared for duplicate
// detection: normalized, then stripped of whitespace and question marks.
func Fingerprint(raw string) string {
	return fingerprintRe.ReplaceAllString(Normalize(raw), "")
}
