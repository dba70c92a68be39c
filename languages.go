package autotranslate

import (
	"strings"

	"golang.org/x/text/language"
)

// LanguageNames maps short language codes to human-readable names.
var LanguageNames = map[string]string{
	"en": "English",
	"fr": "French",
	"de": "German",
	"es": "Spanish",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"pl": "Polish",
	"ru": "Russian",
	"uk": "Ukrainian",
	"tr": "Turkish",
	"ar": "Arabic",
	"he": "Hebrew",
	"fa": "Persian",
	"hi": "Hindi",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"vi": "Vietnamese",
	"sv": "Swedish",
}

// NormalizeLang reduces a locale ("fr_FR", "en-US", "EN") to its lower-case
// base code.
func NormalizeLang(lang string) string {
	lang = strings.TrimSpace(lang)
	if i := strings.IndexAny(lang, "_-"); i >= 0 {
		lang = lang[:i]
	}
	return strings.ToLower(lang)
}

// SameLanguage reports whether a and b share a base language.
func SameLanguage(a, b string) bool {
	return NormalizeLang(a) == NormalizeLang(b)
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(lang string) string {
	if name, ok := LanguageNames[NormalizeLang(lang)]; ok {
		return name
	}
	return lang
}

// LanguageFromHeader extracts the target language from an Accept-Language
// value: the first entry, without its quality, cut to two lower-case
// letters. fallback is returned for an empty header.
func LanguageFromHeader(header, fallback string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return fallback
	}
	first := strings.Split(header, ",")[0]
	first = strings.TrimSpace(strings.Split(first, ";")[0])
	if len(first) > 2 {
		first = first[:2]
	}
	if first == "" || first == "*" {
		return fallback
	}
	return strings.ToLower(first)
}

// NegotiateLanguage picks the best of supported for an Accept-Language
// value, honoring quality weights. fallback is returned when nothing
// matches or the header cannot be parsed.
func NegotiateLanguage(header string, supported []string, fallback string) string {
	if strings.TrimSpace(header) == "" || len(supported) == 0 {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return fallback
	}

	offered := make([]language.Tag, 0, len(supported)+1)
	offered = append(offered, language.Make(fallback))
	for _, s := range supported {
		offered = append(offered, language.Make(s))
	}

	_, index, confidence := language.NewMatcher(offered).Match(tags...)
	if confidence == language.No || index == 0 {
		return fallback
	}
	return NormalizeLang(supported[index-1])
}
