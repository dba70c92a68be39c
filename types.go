package autotranslate

import (
	"sort"
	"strings"
)

// Kind is the classification of a string leaf.
type Kind int

const (
	// KindTranslatable is free text that should be sent to the backend.
	KindTranslatable Kind = iota
	// KindEnumish looks like an enum constant (short, no whitespace, mostly upper case).
	KindEnumish
	// KindOpaque is never translated: blanks, emails, UUIDs, URLs, numbers, dates.
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindOpaque:
		return "opaque"
	case KindEnumish:
		return "enumish"
	default:
		return "translatable"
	}
}

// LabelSuffix is appended to a field name to form the sibling key that
// carries the display label of an enum-like value.
const LabelSuffix = "Label"

// TextNode represents a translatable unit of content inside a rich-text leaf.
type TextNode struct {
	ID       string            // Position-based identifier
	Text     string            // Original text content (trimmed)
	Hash     string            // Hash of Text
	NodeType string            // Content type: "html_text"
	Context  string            // Where the text was found
	Metadata map[string]string // Additional info (parent tag, ...)
}

// EnumLabelRules maps an enum type name and constant to an operator-supplied
// label written in the content source language.
type EnumLabelRules map[string]map[string]string

// Lookup returns the label for enumType.constant, if one is configured.
func (r EnumLabelRules) Lookup(enumType, constant string) (string, bool) {
	if r == nil || enumType == "" {
		return "", false
	}
	labels, ok := r[enumType]
	if !ok {
		return "", false
	}
	label, ok := labels[constant]
	if !ok || strings.TrimSpace(label) == "" {
		return "", false
	}
	return label, true
}

// clone returns a deep copy so the table cannot be mutated after construction.
func (r EnumLabelRules) clone() EnumLabelRules {
	out := make(EnumLabelRules, len(r))
	for typ, labels := range r {
		inner := make(map[string]string, len(labels))
		for k, v := range labels {
			inner[k] = v
		}
		out[typ] = inner
	}
	return out
}

// DefaultExcludedFields are technical fields never translated and never
// listed in field metadata.
var DefaultExcludedFields = []string{
	"id", "uuid", "password", "token", "keycloakId",
	"createdAt", "updatedAt", "dateCreation", "dateModification",
	"url", "uri", "sub", "iss",
}

// ExclusionSet is a fixed set of field names.
type ExclusionSet map[string]struct{}

// NewExclusionSet builds a set from field names.
func NewExclusionSet(fields ...string) ExclusionSet {
	s := make(ExclusionSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// Contains reports whether field is excluded.
func (s ExclusionSet) Contains(field string) bool {
	_, ok := s[field]
	return ok
}

// Fields returns the excluded field names in sorted order.
func (s ExclusionSet) Fields() []string {
	out := make([]string, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// IgnoredTags contains HTML tags whose content should not be translated.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}
