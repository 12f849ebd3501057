package report

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SanitizeFilename derives a filesystem-safe artifact name from a target
// identifier. Letters and digits of any script survive (target IDs are
// routinely Cyrillic), a small set of punctuation is kept, runs of
// whitespace collapse to single underscores, and everything else becomes
// an underscore. Case is preserved.
func SanitizeFilename(name string) string {
	// Normalize first so combining sequences count as letters.
	name = norm.NFC.String(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.' || r == '(' || r == ')':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune('_')
		}
	}

	safe := strings.Join(strings.Fields(b.String()), "_")
	safe = strings.Trim(safe, " ._")
	if safe == "" {
		return "target"
	}
	return safe
}
