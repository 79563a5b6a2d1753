package quackquery

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// zeroWidthChars strips zero-width and formatting characters that could mask
// a command from the intent parsers.
var zeroWidthChars = strings.NewReplacer(
	"​", "", // zero-width space
	"‌", "", // zero-width non-joiner
	"‍", "", // zero-width joiner
	"⁠", "", // word joiner
	"\uFEFF", "", // BOM
)

// NormalizeCommand prepares raw user input for intent parsing: strips
// zero-width characters, applies NFKC normalization (fullwidth Latin,
// ligatures, mathematical alphanumerics), removes control characters, and
// trims surrounding whitespace.
func NormalizeCommand(text string) string {
	cleaned := zeroWidthChars.Replace(text)
	cleaned = norm.NFKC.String(cleaned)
	cleaned = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, cleaned)
	return strings.TrimSpace(cleaned)
}
