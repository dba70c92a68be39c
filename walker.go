package autotranslate

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// pageContentKey holds the elements of a paginated response.
const pageContentKey = "content"

// Walker translates generic decoded-JSON trees: map[string]any, []any,
// strings, json.Number or float64, bool and nil.
type Walker struct {
	coord      *Coordinator
	enums      *EnumLabelResolver
	schemas    *SchemaRegistry
	excluded   ExclusionSet
	processors []ContentProcessor
	log        logrus.FieldLogger
}

// NewWalker creates a tree walker.
func NewWalker(coord *Coordinator, enums *EnumLabelResolver, schemas *SchemaRegistry, excluded ExclusionSet, processors []ContentProcessor, log logrus.FieldLogger) *Walker {
	if schemas == nil {
		schemas = NewSchemaRegistry()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Walker{
		coord:      coord,
		enums:      enums,
		schemas:    schemas,
		excluded:   excluded,
		processors: processors,
		log:        log,
	}
}

// TranslateTree returns a translated copy of tree; tree itself is not
// modified. entity, when registered, supplies field markers and enum types
// for every object in the tree. An entity tree whose root object carries a
// "content" array is treated as a page: only the elements are translated
// and the pagination fields are copied.
func (w *Walker) TranslateTree(ctx context.Context, tree any, targetLang, entity string) any {
	var schema *EntitySchema
	if entity != "" {
		if s, ok := w.schemas.Lookup(entity); ok {
			schema = &s
		}
		if page, ok := tree.(map[string]any); ok {
			if content, ok := page[pageContentKey].([]any); ok {
				return w.translatePage(ctx, page, content, targetLang, schema)
			}
		}
	}
	return w.walk(ctx, tree, targetLang, schema)
}

func (w *Walker) translatePage(ctx context.Context, page map[string]any, content []any, targetLang string, schema *EntitySchema) map[string]any {
	out := make(map[string]any, len(page))
	for k, v := range page {
		if k == pageContentKey {
			continue
		}
		out[k] = deepCopy(v)
	}
	items := make([]any, len(content))
	for i, item := range content {
		items[i] = w.walk(ctx, item, targetLang, schema)
	}
	out[pageContentKey] = items
	return out
}

func (w *Walker) walk(ctx context.Context, node any, targetLang string, schema *EntitySchema) any {
	switch v := node.(type) {
	case map[string]any:
		return w.walkObject(ctx, v, targetLang, schema)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = w.walk(ctx, item, targetLang, schema)
		}
		return out
	default:
		// Scalars are only translated as object fields.
		return v
	}
}

func (w *Walker) walkObject(ctx context.Context, obj map[string]any, targetLang string, schema *EntitySchema) map[string]any {
	out := make(map[string]any, len(obj))

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := obj[key]

		if strings.HasSuffix(key, LabelSuffix) || w.excluded.Contains(key) {
			if _, set := out[key]; !set {
				out[key] = deepCopy(value)
			}
			continue
		}

		switch v := value.(type) {
		case string:
			out[key] = v
			field, _ := schema.Field(key)
			switch Classify(v) {
			case KindEnumish:
				out[key+LabelSuffix] = w.enums.LabelFor(ctx, field.EnumType, v, targetLang)
			case KindTranslatable:
				if !field.NoTranslate {
					out[key] = w.translateText(ctx, v, targetLang)
				}
			}
		case map[string]any, []any:
			out[key] = w.walk(ctx, v, targetLang, schema)
		default:
			out[key] = v
		}
	}

	return out
}

// translateText translates a leaf, keeping markup intact for rich text.
func (w *Walker) translateText(ctx context.Context, text, targetLang string) string {
	for _, p := range w.processors {
		if p.Accepts(text) {
			return w.translateRich(ctx, p, text, targetLang)
		}
	}
	return w.coord.Resolve(ctx, text, "", targetLang)
}

func (w *Walker) translateRich(ctx context.Context, p ContentProcessor, content, targetLang string) string {
	log := w.log.WithField("content_type", p.ContentType())

	parsed, nodes, err := p.Extract(content)
	if err != nil {
		log.WithError(err).Warn("rich text extraction failed")
		return content
	}
	if len(nodes) == 0 {
		return content
	}

	translations := make(map[string]string, len(nodes))
	for _, n := range nodes {
		translations[n.Hash] = w.coord.Resolve(ctx, n.Text, "", targetLang)
	}

	result, err := p.Apply(parsed, nodes, translations)
	if err != nil {
		log.WithError(err).Warn("rich text apply failed")
		return content
	}
	return result
}

// DecodeTree decodes JSON into the generic tree shape the walker accepts.
// Numbers are kept as json.Number.
func DecodeTree(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// deepCopy copies maps and slices so results never alias the input.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	default:
		return v
	}
}
