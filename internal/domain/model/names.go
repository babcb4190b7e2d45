package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizePlayerName trims a player name and capitalizes every run of
// letters, so "jane DOE " and "Jane Doe" name the same player. A run starts
// after any non-letter, which keeps "O'Brien" and "Jean-Luc" intact.
func NormalizePlayerName(name string) string {
	name = strings.TrimSpace(name)
	caser := cases.Title(language.English)

	var b strings.Builder
	b.Grow(len(name))
	start := -1
	for i, r := range name {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(caser.String(name[start:i]))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(caser.String(name[start:]))
	}
	return b.String()
}
