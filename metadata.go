package autotranslate

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// MetadataGenerator builds translated field labels for registered entities.
type MetadataGenerator struct {
	coord          *Coordinator
	schemas        *SchemaRegistry
	excluded       ExclusionSet
	identifierLang string
	log            logrus.FieldLogger
}

// NewMetadataGenerator creates a metadata generator.
func NewMetadataGenerator(coord *Coordinator, schemas *SchemaRegistry, excluded ExclusionSet, identifierLang string, log logrus.FieldLogger) *MetadataGenerator {
	if schemas == nil {
		schemas = NewSchemaRegistry()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &MetadataGenerator{
		coord:          coord,
		schemas:        schemas,
		excluded:       excluded,
		identifierLang: identifierLang,
		log:            log,
	}
}

// MetadataFor returns field name -> label in targetLang for entity. Fields in
// the exclusion set are left out; NoTranslate fields are kept. An unknown
// entity yields an empty map.
func (g *MetadataGenerator) MetadataFor(ctx context.Context, entity, targetLang string) map[string]string {
	schema, ok := g.schemas.Lookup(entity)
	if !ok {
		g.log.WithField("entity", entity).Debug("no metadata for unknown entity")
		return map[string]string{}
	}

	key := MetadataKey(entity, targetLang)
	log := g.log.WithFields(logrus.Fields{"entity": entity, "target": targetLang})

	if cached, ok := g.coord.LoadShared(ctx, key); ok {
		var labels map[string]string
		err := json.Unmarshal([]byte(cached), &labels)
		if err == nil {
			log.Debug("metadata cache hit")
			return labels
		}
		log.WithError(err).Warn("discarding unreadable cached metadata")
	}

	labels := make(map[string]string, len(schema.Fields))
	for _, f := range schema.Fields {
		if g.excluded.Contains(f.Name) {
			continue
		}
		labels[f.Name] = g.coord.Resolve(ctx, IdentifierToLabel(f.Name), g.identifierLang, targetLang)
	}

	data, err := json.Marshal(labels)
	if err != nil {
		log.WithError(err).Warn("metadata not cached")
		return labels
	}
	g.coord.StoreShared(ctx, key, string(data))
	log.WithField("fields", len(labels)).Debug("metadata generated")

	return labels
}

// Entities returns the registered entity names, sorted.
func (g *MetadataGenerator) Entities() []string {
	return g.schemas.Names()
}
