package autotranslate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IdentifierToLabel turns a field name into a Title Case phrase:
// "firstName" -> "First Name", "user_id" -> "User Id".
func IdentifierToLabel(name string) string {
	if name == "" {
		return name
	}

	var b strings.Builder
	b.Grow(len(name) + 4)

	var prev rune
	for i, r := range name {
		if r == '_' {
			r = ' '
		}
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(prev) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prev = r
	}

	return titleWords(b.String())
}

// EnumConstantToLabel turns an enum constant into a Title Case phrase:
// "SUPER_USER" -> "Super User", "LEVEL_1" -> "Level 1".
func EnumConstantToLabel(value string) string {
	if value == "" {
		return value
	}
	return titleWords(strings.ToLower(strings.ReplaceAll(value, "_", " ")))
}

// titleWords upper-cases the first rune of every whitespace-separated word
// and joins the words with single spaces.
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
