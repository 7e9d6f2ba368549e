package render

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	spaces          = regexp.MustCompile(`\s+`)
)

func stripAccents(s string) string {
	s = norm.NFKD.String(s)
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, s)
}

// NormalizeName turns a monster name into the file stem used for locally
// cached icons: "Véromos (Fire)" -> "veromos_fire".
func NormalizeName(name string) string {
	s := strings.ToLower(stripAccents(name))
	s = nonAlphanumeric.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// Fold lowercases s, strips accents and collapses whitespace so free-text
// searches match "veromos" against "Véromos".
func Fold(s string) string {
	s = strings.ToLower(stripAccents(s))
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}
