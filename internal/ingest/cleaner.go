package ingest

import (
	"regexp"
	"strings"
)

// Ligatures that PDF extractors commonly emit as single glyphs.
var ligatures = strings.NewReplacer(
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬀ", "ff",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	hyphenationRun = regexp.MustCompile(`-\s+`)
)

// Clean standardizes raw extracted text: expands PDF ligatures, drops
// control and non-ASCII characters, collapses whitespace runs into a
// single space, and joins words hyphenated across line breaks
// ("exam-\nple" becomes "example").
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = ligatures.Replace(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r >= 0x20 && r < 0x7f {
			b.WriteRune(r)
			continue
		}
		switch r {
		case '\t', '\n', '\v', '\f', '\r':
			b.WriteRune(r)
		}
	}
	text = b.String()

	text = whitespaceRun.ReplaceAllString(text, " ")
	text = hyphenationRun.ReplaceAllString(text, "")

	return strings.TrimSpace(text)
}
