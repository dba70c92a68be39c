package autotranslate

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Hasher turns a source string into the hash part of a TranslationKey.
// Collisions are not detected: two strings with the same hash share a cache
// slot and whichever translation is stored first wins.
type Hasher func(text string) string

// HashText computes the xxhash64 of the exact text, in decimal.
func HashText(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(text), 10)
}

// TranslationKey identifies a unit of cacheable translation work.
type TranslationKey struct {
	SourceLang string
	TargetLang string
	TextHash   string
}

// NewTranslationKey builds the key for text using hash (HashText when nil).
func NewTranslationKey(sourceLang, targetLang, text string, hash Hasher) TranslationKey {
	if hash == nil {
		hash = HashText
	}
	return TranslationKey{
		SourceLang: sourceLang,
		TargetLang: targetLang,
		TextHash:   hash(text),
	}
}

// String renders the key in its cache form: "trans:{source}:{target}:{hash}".
func (k TranslationKey) String() string {
	return "trans:" + k.SourceLang + ":" + k.TargetLang + ":" + k.TextHash
}

// MetadataKey is the shared-tier key for an entity's field labels.
func MetadataKey(entity, targetLang string) string {
	return "metadata:" + entity + ":" + targetLang
}
