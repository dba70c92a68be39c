package autotranslate

import (
	"context"

	"github.com/sirupsen/logrus"
)

// EnumLabelResolver produces display labels for enum-like values.
type EnumLabelResolver struct {
	coord          *Coordinator
	rules          EnumLabelRules
	contentLang    string
	identifierLang string
	log            logrus.FieldLogger
}

// NewEnumLabelResolver creates a resolver. rules is copied and never mutated.
func NewEnumLabelResolver(coord *Coordinator, rules EnumLabelRules, contentLang, identifierLang string, log logrus.FieldLogger) *EnumLabelResolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &EnumLabelResolver{
		coord:          coord,
		rules:          rules.clone(),
		contentLang:    contentLang,
		identifierLang: identifierLang,
		log:            log,
	}
}

// LabelFor returns the label of enumType.constant in targetLang.
//
// A configured rule is written in the content language and wins. Otherwise
// the label is built from the constant itself, which is spelled in the
// identifier language. The label is resolved even when targetLang is the
// content language, since the identifier language may differ.
func (r *EnumLabelResolver) LabelFor(ctx context.Context, enumType, constant, targetLang string) (label string) {
	generated := EnumConstantToLabel(constant)

	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithFields(logrus.Fields{
				"enum":     enumType,
				"constant": constant,
				"panic":    rec,
			}).Error("enum label resolution failed")
			label = generated
		}
	}()

	if rule, ok := r.rules.Lookup(enumType, constant); ok {
		r.log.WithFields(logrus.Fields{"enum": enumType, "constant": constant}).Trace("using configured enum label")
		return r.coord.Resolve(ctx, rule, r.contentLang, targetLang)
	}
	return r.coord.Resolve(ctx, generated, r.identifierLang, targetLang)
}
