package generate

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Built-in label abbreviations, extendable via screenforge.cue.
var defaultAbbreviations = map[string]string{
	"id":   "ID",
	"uuid": "UUID",
	"url":  "URL",
	"api":  "API",
	"ip":   "IP",
}

// ToLabel turns a wire name (snake_case, kebab-case, or camelCase) into a
// human-readable label: diacritics stripped, word-split, title-cased, with
// abbreviation overrides applied per word.
func ToLabel(value string, abbreviations map[string]string) string {
	s := stripDiacritics(value)
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	s = splitCamel(s)

	words := strings.Fields(s)
	for i, w := range words {
		lw := strings.ToLower(w)
		if abbr, ok := abbreviations[lw]; ok {
			words[i] = abbr
			continue
		}
		if abbr, ok := defaultAbbreviations[lw]; ok {
			words[i] = abbr
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// splitCamel inserts a space at each lower-to-upper boundary.
func splitCamel(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stripDiacritics decomposes to NFD and drops combining marks, so
// "Descrição" labels as "Descricao".
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
