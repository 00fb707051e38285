package interactions

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	maxChannelNameLength = 90
	defaultChannelName   = "canal"
)

// SlugifyChannelName lowercases name, collapses every run of characters that
// are neither letters nor digits into one hyphen, trims hyphens at both ends
// and caps the result at 90 runes. It never returns an empty string.
func SlugifyChannelName(name string) string {
	lowered := cases.Lower(language.Und).String(norm.NFC.String(name))

	var b strings.Builder
	b.Grow(len(lowered))
	pendingHyphen := false
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	slug := truncateRunes(b.String(), maxChannelNameLength)
	slug = strings.TrimRight(slug, "-")
	if slug == "" {
		return defaultChannelName
	}
	return slug
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
