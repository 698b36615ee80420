// Package load decodes the compiled data-model document consumed by the
// generator. Both the plain `{models: [...]}` layout and the DMMF
// `{datamodel: {models: [...]}}` layout are accepted, encoded as JSON or YAML.
package load

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind is the kind of a model field.
type Kind uint8

// List of field kinds.
const (
	KindInvalid Kind = iota
	KindScalar
	KindEnum
	KindRelation
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindScalar:   "scalar",
	KindEnum:     "enum",
	KindRelation: "relation",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindInvalid]
}

// ParseKind parses a kind name. The DMMF spelling "object" is read as relation.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "scalar":
		return KindScalar, nil
	case "enum":
		return KindEnum, nil
	case "relation", "object":
		return KindRelation, nil
	}
	return KindInvalid, fmt.Errorf("unknown field kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// TagHide marks a field that must not be exposed publicly.
const TagHide = "hide"

// Schema is the loaded data model.
type Schema struct {
	Models []*Model `json:"models" yaml:"models"`
}

// Model is a named entity of the data model.
type Model struct {
	Name          string   `json:"name" yaml:"name"`
	Fields        []*Field `json:"fields" yaml:"fields"`
	Documentation string   `json:"documentation,omitempty" yaml:"documentation,omitempty"`
}

// Field is an attribute of a model.
type Field struct {
	Name               string   `json:"name" yaml:"name"`
	Kind               Kind     `json:"kind" yaml:"kind"`
	Type               string   `json:"type" yaml:"type"`
	IsList             bool     `json:"isList,omitempty" yaml:"isList,omitempty"`
	IsRequired         bool     `json:"isRequired,omitempty" yaml:"isRequired,omitempty"`
	IsID               bool     `json:"isId,omitempty" yaml:"isId,omitempty"`
	RelationName       string   `json:"relationName,omitempty" yaml:"relationName,omitempty"`
	RelationFromFields []string `json:"relationFromFields,omitempty" yaml:"relationFromFields,omitempty"`
	RelationToFields   []string `json:"relationToFields,omitempty" yaml:"relationToFields,omitempty"`
	Annotations        []string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Documentation      string   `json:"documentation,omitempty" yaml:"documentation,omitempty"`
}

// Model returns the model with the given name, or nil.
func (s *Schema) Model(name string) *Model {
	for _, m := range s.Models {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Field returns the field with the given name, or nil.
func (m *Model) Field(name string) *Field {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// IsRelation reports whether the field references another model.
func (f *Field) IsRelation() bool { return f.Kind == KindRelation }

// IsScalar reports whether the field is a scalar or enum attribute.
func (f *Field) IsScalar() bool { return f.Kind == KindScalar || f.Kind == KindEnum }

// Owning reports whether the field carries the join columns of its relation.
func (f *Field) Owning() bool { return len(f.RelationFromFields) > 0 }

// Implicit reports whether the field is a side of an implicit
// many-to-many relation (neither side carries join columns).
func (f *Field) Implicit() bool {
	return f.RelationName != "" && len(f.RelationFromFields) == 0 && len(f.RelationToFields) == 0
}

// HasTag reports whether the field carries the given annotation, either in
// its annotation list or as an @tag token in its documentation.
func (f *Field) HasTag(tag string) bool {
	return slices.Contains(f.Tags(), tag)
}

// Tags returns the annotations of the field, including those found in its
// documentation, deduplicated and in order of appearance.
func (f *Field) Tags() []string {
	tags := make([]string, 0, len(f.Annotations))
	add := func(t string) {
		if t != "" && !slices.Contains(tags, t) {
			tags = append(tags, t)
		}
	}
	for _, a := range f.Annotations {
		add(normalizeTag(strings.TrimPrefix(a, "@")))
	}
	for _, m := range docTag.FindAllStringSubmatch(f.Documentation, -1) {
		add(normalizeTag(m[1]))
	}
	return tags
}

// docTag matches an @tag token starting a word, so addresses like
// ops@example.com are not tags.
var docTag = regexp.MustCompile(`(?:^|\s)@([A-Za-z][\w-]*)`)

// normalizeTag maps tag aliases to their canonical name.
func normalizeTag(t string) string {
	switch t {
	case "sf-hide":
		return TagHide
	}
	return t
}

// document is the wire layout. Models may appear at the top level or
// under a DMMF "datamodel" key.
type document struct {
	Models    []*Model `json:"models" yaml:"models"`
	Datamodel *struct {
		Models []*Model `json:"models" yaml:"models"`
	} `json:"datamodel" yaml:"datamodel"`
}

func (d *document) schema() *Schema {
	if len(d.Models) == 0 && d.Datamodel != nil {
		return &Schema{Models: d.Datamodel.Models}
	}
	return &Schema{Models: d.Models}
}

// UnmarshalSchema decodes the given buffer to a loaded schema. JSON is tried
// first when the buffer starts with '{', YAML otherwise.
func UnmarshalSchema(buf []byte) (*Schema, error) {
	doc := &document{}
	if trimmed := bytes.TrimSpace(buf); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, doc); err != nil {
			return nil, fmt.Errorf("decode schema: %w", err)
		}
	} else if err := yaml.Unmarshal(buf, doc); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	s := doc.schema()
	if len(s.Models) == 0 {
		return nil, fmt.Errorf("decode schema: no models")
	}
	for _, m := range s.Models {
		if m == nil {
			return nil, fmt.Errorf("decode schema: null model entry")
		}
		for _, f := range m.Fields {
			if f == nil {
				return nil, fmt.Errorf("decode schema: model %q: null field entry", m.Name)
			}
			if f.Kind == KindInvalid {
				return nil, fmt.Errorf("decode schema: field %s.%s: missing kind", m.Name, f.Name)
			}
		}
	}
	return s, nil
}

// ReadFile loads the schema document at path.
func ReadFile(path string) (*Schema, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	s, err := UnmarshalSchema(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// MarshalSchema encodes the schema to JSON in the plain layout.
func MarshalSchema(s *Schema) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
