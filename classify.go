package autotranslate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// enumMaxLen is the longest string still considered an enum constant.
	enumMaxLen = 50
	// enumUpperRatio is the share of upper-case letters above which a
	// whitespace-free string is treated as an enum constant.
	enumUpperRatio = 0.7
)

var (
	uuidPattern   = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
	datePattern   = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}`)
)

// Classify decides how a string leaf is handled. It is total and pure.
//
// The enum test is a shape heuristic: short upper-case words in free text
// ("OK", "FAQ") are classified as enum constants too.
func Classify(text string) Kind {
	if IsOpaque(text) {
		return KindOpaque
	}
	if LooksLikeEnum(text) {
		return KindEnumish
	}
	return KindTranslatable
}

// IsOpaque reports whether text must never be translated: blanks, emails,
// canonical UUIDs, http(s) URLs, digit strings and ISO-8601 dates.
func IsOpaque(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	if strings.Contains(text, "@") && strings.Contains(text, ".") {
		return true
	}
	if uuidPattern.MatchString(text) {
		return true
	}
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		return true
	}
	if digitsPattern.MatchString(text) {
		return true
	}
	return datePattern.MatchString(text)
}

// LooksLikeEnum reports whether text has the shape of an enum constant:
// at most 50 characters, no whitespace, and more than 70% of its ASCII
// letters upper case.
func LooksLikeEnum(text string) bool {
	if text == "" || utf8.RuneCountInString(text) > enumMaxLen {
		return false
	}

	upper, letters := 0, 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			return false
		}
		switch {
		case r >= 'A' && r <= 'Z':
			upper++
			letters++
		case r >= 'a' && r <= 'z':
			letters++
		}
	}

	if letters == 0 {
		return false
	}
	return float64(upper)/float64(letters) > enumUpperRatio
}
