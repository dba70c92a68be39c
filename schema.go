package autotranslate

import "sort"

// FieldDescriptor declares one field of an entity.
type FieldDescriptor struct {
	Name string
	// NoTranslate protects the field's value. Its label is still generated.
	NoTranslate bool
	// EnumType names the business enum the field holds, used to look up
	// configured enum labels.
	EnumType string
}

// EntitySchema declares an entity exposing field metadata.
type EntitySchema struct {
	Name        string
	Description string
	Fields      []FieldDescriptor
}

// Field returns the descriptor for name.
func (s *EntitySchema) Field(name string) (FieldDescriptor, bool) {
	if s == nil {
		return FieldDescriptor{}, false
	}
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// SchemaRegistry maps entity names to their schemas. It is built once and
// read-only afterwards.
type SchemaRegistry struct {
	entities map[string]EntitySchema
	names    []string
}

// NewSchemaRegistry builds a registry. A later schema with the same name
// replaces an earlier one.
func NewSchemaRegistry(schemas ...EntitySchema) *SchemaRegistry {
	r := &SchemaRegistry{entities: make(map[string]EntitySchema, len(schemas))}
	for _, s := range schemas {
		if s.Name == "" {
			continue
		}
		fields := make([]FieldDescriptor, len(s.Fields))
		copy(fields, s.Fields)
		s.Fields = fields
		r.entities[s.Name] = s
	}
	for name := range r.entities {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r
}

// Lookup returns the schema registered under name.
func (r *SchemaRegistry) Lookup(name string) (EntitySchema, bool) {
	s, ok := r.entities[name]
	return s, ok
}

// Names returns the registered entity names, sorted.
func (r *SchemaRegistry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered entities.
func (r *SchemaRegistry) Len() int {
	return len(r.entities)
}
