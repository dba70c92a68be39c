package autotranslate

import (
	"context"
	"time"

	"github.com/ZaguanLabs/autotranslate/cache"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// Default languages: business content is authored in French, field names and
// enum constants are spelled in English.
const (
	DefaultContentLang    = "fr"
	DefaultIdentifierLang = "en"
	DefaultSharedTTL      = 24 * time.Hour
)

// Backend is the interface for remote translation backends.
type Backend interface {
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// TranslateRequest contains the parameters for a translation request.
type TranslateRequest struct {
	Text       string
	SourceLang string
	TargetLang string
	Format     string // "text" or "html"
}

// ContentProcessor handles rich-text leaves whose markup must survive
// translation.
type ContentProcessor interface {
	Accepts(content string) bool
	Extract(content string) (interface{}, []TextNode, error)
	Apply(parsed interface{}, nodes []TextNode, translations map[string]string) (string, error)
	ContentType() string
}

// Translator is the engine facade handed to transport layers. None of its
// translation methods return errors: on any failure they degrade to the
// original content.
type Translator struct {
	backend        Backend
	contentLang    string
	identifierLang string
	localCapacity  int
	localTTL       time.Duration
	shared         cache.SharedCache
	sharedTTL      time.Duration
	rules          EnumLabelRules
	schemas        []EntitySchema
	excluded       []string
	supported      []string
	hasher         Hasher
	processors     []ContentProcessor
	log            logrus.FieldLogger

	local    *cache.LocalCache
	coord    *Coordinator
	enums    *EnumLabelResolver
	registry *SchemaRegistry
	walker   *Walker
	meta     *MetadataGenerator
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithContentLang sets the language business content is written in.
func WithContentLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.contentLang = lang
	}
}

// WithIdentifierLang sets the language field names and enum constants are
// spelled in.
func WithIdentifierLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.identifierLang = lang
	}
}

// WithLocalCache sizes the in-process tier.
func WithLocalCache(capacity int, ttl time.Duration) TranslatorOption {
	return func(t *Translator) {
		t.localCapacity = capacity
		t.localTTL = ttl
	}
}

// WithSharedCache sets the distributed tier and its entry lifetime.
func WithSharedCache(c cache.SharedCache, ttl time.Duration) TranslatorOption {
	return func(t *Translator) {
		t.shared = c
		t.sharedTTL = ttl
	}
}

// WithEnumLabels sets operator-supplied enum labels.
func WithEnumLabels(rules EnumLabelRules) TranslatorOption {
	return func(t *Translator) {
		t.rules = rules
	}
}

// WithEntity registers entity schemas for metadata and field markers.
func WithEntity(schemas ...EntitySchema) TranslatorOption {
	return func(t *Translator) {
		t.schemas = append(t.schemas, schemas...)
	}
}

// WithExcludedFields replaces the default excluded field names.
func WithExcludedFields(fields []string) TranslatorOption {
	return func(t *Translator) {
		t.excluded = fields
	}
}

// WithSupportedLangs lists the target languages clients may negotiate.
// With a list, Accept-Language is matched against it by quality; without
// one, the header's first entry is used as is.
func WithSupportedLangs(langs ...string) TranslatorOption {
	return func(t *Translator) {
		t.supported = append(t.supported, langs...)
	}
}

// WithHasher replaces the text hash used in translation keys.
func WithHasher(h Hasher) TranslatorOption {
	return func(t *Translator) {
		t.hasher = h
	}
}

// WithProcessor registers a rich-text content processor.
func WithProcessor(processor ContentProcessor) TranslatorOption {
	return func(t *Translator) {
		t.processors = append(t.processors, processor)
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) TranslatorOption {
	return func(t *Translator) {
		t.log = log
	}
}

// NewTranslator creates a new Translator backed by backend.
func NewTranslator(backend Backend, opts ...TranslatorOption) *Translator {
	t := &Translator{
		backend:        backend,
		contentLang:    DefaultContentLang,
		identifierLang: DefaultIdentifierLang,
		sharedTTL:      DefaultSharedTTL,
		excluded:       DefaultExcludedFields,
		hasher:         HashText,
		log:            logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(t)
	}

	t.local = cache.NewLocalCache(t.localCapacity, t.localTTL)
	t.coord = NewCoordinator(backend, CoordinatorConfig{
		ContentLang: t.contentLang,
		Local:       t.local,
		Shared:      t.shared,
		SharedTTL:   t.sharedTTL,
		Hasher:      t.hasher,
		Logger:      t.log,
	})
	t.enums = NewEnumLabelResolver(t.coord, t.rules, t.contentLang, t.identifierLang, t.log)
	t.registry = NewSchemaRegistry(t.schemas...)
	excluded := NewExclusionSet(t.excluded...)
	t.walker = NewWalker(t.coord, t.enums, t.registry, excluded, t.processors, t.log)
	t.meta = NewMetadataGenerator(t.coord, t.registry, excluded, t.identifierLang, t.log)

	return t
}

// Translate translates text from the content language to targetLang.
func (t *Translator) Translate(ctx context.Context, text, targetLang string) string {
	return t.coord.Resolve(ctx, text, "", targetLang)
}

// TranslateFrom translates text written in sourceLang.
func (t *Translator) TranslateFrom(ctx context.Context, text, sourceLang, targetLang string) string {
	return t.coord.Resolve(ctx, text, sourceLang, targetLang)
}

// TranslateTree translates a decoded JSON tree with no entity context.
func (t *Translator) TranslateTree(ctx context.Context, tree any, targetLang string) any {
	return t.walker.TranslateTree(ctx, tree, targetLang, "")
}

// TranslateEntityTree translates a decoded JSON tree whose objects are
// instances of entity. Field markers and enum types come from its schema.
func (t *Translator) TranslateEntityTree(ctx context.Context, tree any, targetLang, entity string) any {
	return t.walker.TranslateTree(ctx, tree, targetLang, entity)
}

// TranslateValue encodes v to JSON and translates the resulting tree. If v
// cannot be encoded it is returned unchanged.
func (t *Translator) TranslateValue(ctx context.Context, v any, targetLang, entity string) any {
	tree, err := toTree(v)
	if err != nil {
		t.log.WithError(err).WithField("entity", entity).Error("value is not JSON encodable")
		return v
	}
	return t.walker.TranslateTree(ctx, tree, targetLang, entity)
}

// MetadataFor returns translated display labels for entity's fields.
func (t *Translator) MetadataFor(ctx context.Context, entity, targetLang string) map[string]string {
	return t.meta.MetadataFor(ctx, entity, targetLang)
}

// RegisteredEntities returns the names of all registered entities, sorted.
func (t *Translator) RegisteredEntities() []string {
	return t.registry.Names()
}

// Entity returns the schema registered under name.
func (t *Translator) Entity(name string) (EntitySchema, bool) {
	return t.registry.Lookup(name)
}

// ContentLang returns the content source language.
func (t *Translator) ContentLang() string {
	return t.contentLang
}

// IdentifierLang returns the identifier language.
func (t *Translator) IdentifierLang() string {
	return t.identifierLang
}

// SharedTTL returns the distributed tier entry lifetime.
func (t *Translator) SharedTTL() time.Duration {
	return t.sharedTTL
}

// TargetFromHeader picks the target language for an Accept-Language value,
// falling back to the content language.
func (t *Translator) TargetFromHeader(header string) string {
	if len(t.supported) > 0 {
		return NegotiateLanguage(header, t.supported, t.contentLang)
	}
	return LanguageFromHeader(header, t.contentLang)
}

// SupportedLangs returns the negotiable target languages, if any.
func (t *Translator) SupportedLangs() []string {
	return t.supported
}

// IsContentLang reports whether targetLang needs no value translation.
func (t *Translator) IsContentLang(targetLang string) bool {
	return SameLanguage(t.contentLang, targetLang)
}

// Stats returns the coordinator counters.
func (t *Translator) Stats() Stats {
	return t.coord.Stats()
}

// Shared tier states reported by SharedStatus.
const (
	SharedNone        = "none"
	SharedOK          = "ok"
	SharedUnavailable = "unavailable"
)

// SharedStatus probes the distributed tier. Tiers that cannot be probed
// report SharedOK.
func (t *Translator) SharedStatus(ctx context.Context) string {
	if t.shared == nil {
		return SharedNone
	}
	p, ok := t.shared.(cache.Pinger)
	if !ok {
		return SharedOK
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		t.log.WithError(err).Warn("shared cache ping failed")
		return SharedUnavailable
	}
	return SharedOK
}

// LocalCache exposes the in-process tier for export.
func (t *Translator) LocalCache() *cache.LocalCache {
	return t.local
}

// toTree converts v to the generic decoded-JSON shape. Numbers are kept as
// json.Number so they survive the round trip unchanged.
func toTree(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return DecodeTree(data)
}
