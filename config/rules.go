package config

import (
	"fmt"
	"os"

	"github.com/ZaguanLabs/autotranslate"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Rules is the operator-maintained rules file. It is decoded with yaml.v3
// directly because viper lower-cases map keys, and enum constants and field
// names are case sensitive.
type Rules struct {
	EnumLabels     map[string]map[string]string `yaml:"enum_labels"`
	ExcludedFields []string                     `yaml:"excluded_fields"`
	Entities       []EntityRule                 `yaml:"entities"`
}

// EntityRule registers an entity schema.
type EntityRule struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Fields      []FieldRule `yaml:"fields"`
}

// FieldRule describes one entity field.
type FieldRule struct {
	Name        string `yaml:"name"`
	NoTranslate bool   `yaml:"no_translate"`
	Enum        string `yaml:"enum"`
}

// LoadRules reads and validates a rules file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &autotranslate.ConfigError{Field: "rules_file", Cause: err}
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, &autotranslate.ConfigError{Field: "rules_file", Cause: fmt.Errorf("%s: %w", path, err)}
	}
	return rules, nil
}

// ParseRules decodes and validates rules from YAML.
func ParseRules(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &rules, nil
}

func (r Rules) Validate() error {
	seen := make(map[string]bool, len(r.Entities))
	for i, e := range r.Entities {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entities[%d]: %w", i, err)
		}
		if seen[e.Name] {
			return fmt.Errorf("entities[%d]: duplicate entity %q", i, e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

func (e EntityRule) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required),
		validation.Field(&e.Fields),
	)
}

func (f FieldRule) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required),
	)
}

// EnumLabelRules returns the enum label table.
func (r *Rules) EnumLabelRules() autotranslate.EnumLabelRules {
	if r == nil {
		return nil
	}
	return autotranslate.EnumLabelRules(r.EnumLabels)
}

// Schemas converts the entity rules to engine schemas.
func (r *Rules) Schemas() []autotranslate.EntitySchema {
	if r == nil {
		return nil
	}
	schemas := make([]autotranslate.EntitySchema, 0, len(r.Entities))
	for _, e := range r.Entities {
		fields := make([]autotranslate.FieldDescriptor, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = autotranslate.FieldDescriptor{
				Name:        f.Name,
				NoTranslate: f.NoTranslate,
				EnumType:    f.Enum,
			}
		}
		schemas = append(schemas, autotranslate.EntitySchema{
			Name:        e.Name,
			Description: e.Description,
			Fields:      fields,
		})
	}
	return schemas
}

// TranslatorOptions returns the options carrying these rules. An empty
// excluded_fields list keeps the default exclusions.
func (r *Rules) TranslatorOptions() []autotranslate.TranslatorOption {
	if r == nil {
		return nil
	}
	opts := []autotranslate.TranslatorOption{
		autotranslate.WithEnumLabels(r.EnumLabelRules()),
		autotranslate.WithEntity(r.Schemas()...),
	}
	if len(r.ExcludedFields) > 0 {
		opts = append(opts, autotranslate.WithExcludedFields(r.ExcludedFields))
	}
	return opts
}
