package gen

import (
	"fmt"
	"go/token"
	"slices"

	"github.com/syssam/repogen/compiler/introspect"
	"github.com/syssam/repogen/compiler/load"
)

// FieldRef points at a field of a model.
type FieldRef struct {
	Model *load.Model
	Field *load.Field
}

// String returns the "Model.field" spelling of the reference.
func (r FieldRef) String() string {
	return r.Model.Name + "." + r.Field.Name
}

// Graph holds the validated schema of a generation run together with its
// indexes. It is immutable once built.
type Graph struct {
	*Config
	// Models are the schema models in declaration order.
	Models []*load.Model
	// Types answers the Go type of every scalar field.
	Types introspect.Introspector

	models    map[string]*load.Model
	relations map[string][]FieldRef
	joins     map[string]map[string]struct{}
}

// NewGraph validates the schema and builds its indexes.
func NewGraph(c *Config, schema *load.Schema, types introspect.Introspector) (*Graph, error) {
	if c == nil {
		return nil, NewConfigError("Config", nil, "config cannot be nil")
	}
	if schema == nil || len(schema.Models) == 0 {
		return nil, NewSchemaError("", "", "schema has no models", nil)
	}
	if types == nil {
		return nil, NewConfigError("Types", nil, "an introspector is required")
	}
	c.defaults()
	g := &Graph{
		Config:    c,
		Models:    schema.Models,
		Types:     types,
		models:    make(map[string]*load.Model, len(schema.Models)),
		relations: make(map[string][]FieldRef),
		joins:     make(map[string]map[string]struct{}, len(schema.Models)),
	}
	for _, m := range schema.Models {
		if err := g.addModel(m); err != nil {
			return nil, err
		}
	}
	for _, m := range g.Models {
		for _, f := range m.Fields {
			if f.IsRelation() {
				if err := g.checkRelation(m, f); err != nil {
					return nil, err
				}
			}
		}
	}
	return g, nil
}

func (g *Graph) addModel(m *load.Model) error {
	if !token.IsIdentifier(m.Name) {
		return NewSchemaError(m.Name, "", "model name is not a valid identifier", nil)
	}
	if _, ok := g.models[m.Name]; ok {
		return NewSchemaError(m.Name, "", "duplicate model name", nil)
	}
	g.models[m.Name] = m
	g.joins[m.Name] = make(map[string]struct{})
	seen := make(map[string]struct{}, len(m.Fields))
	for _, f := range m.Fields {
		switch {
		case !token.IsIdentifier(f.Name):
			return NewSchemaError(m.Name, f.Name, "field name is not a valid identifier", nil)
		case f.Type == "":
			return NewSchemaError(m.Name, f.Name, "missing field type", nil)
		case f.IsRelation() && f.RelationName == "":
			return NewSchemaError(m.Name, f.Name, "relation field without relation name", nil)
		case !f.IsRelation() && f.RelationName != "":
			return NewSchemaError(m.Name, f.Name, fmt.Sprintf("%s field carries relation name %q", f.Kind, f.RelationName), nil)
		case len(f.RelationFromFields) != len(f.RelationToFields):
			return NewSchemaError(m.Name, f.Name, fmt.Sprintf("%d from-fields but %d to-fields", len(f.RelationFromFields), len(f.RelationToFields)), nil)
		}
		if _, ok := seen[f.Name]; ok {
			return NewSchemaError(m.Name, f.Name, "duplicate field name", nil)
		}
		seen[f.Name] = struct{}{}
		if f.IsRelation() {
			g.relations[f.RelationName] = append(g.relations[f.RelationName], FieldRef{Model: m, Field: f})
			for _, from := range f.RelationFromFields {
				g.joins[m.Name][from] = struct{}{}
			}
		}
	}
	return nil
}

func (g *Graph) checkRelation(m *load.Model, f *load.Field) error {
	target, ok := g.models[f.Type]
	if !ok {
		return NewSchemaError(m.Name, f.Name, fmt.Sprintf("relation to unknown model %q", f.Type), nil)
	}
	for _, name := range f.RelationFromFields {
		if from := m.Field(name); from == nil || !from.IsScalar() {
			return NewSchemaError(m.Name, f.Name, fmt.Sprintf("from-field %q is not a scalar field of %s", name, m.Name), nil)
		}
	}
	for _, name := range f.RelationToFields {
		if to := target.Field(name); to == nil || !to.IsScalar() {
			return NewSchemaError(m.Name, f.Name, fmt.Sprintf("to-field %q is not a scalar field of %s", name, target.Name), nil)
		}
	}
	return nil
}

// Model returns the model with the given name, or nil.
func (g *Graph) Model(name string) *load.Model {
	return g.models[name]
}

// IDField returns the identifying field of the model: the first field
// flagged as id, else the field named "id".
func (g *Graph) IDField(m *load.Model) (*load.Field, error) {
	for _, f := range m.Fields {
		if f.IsID {
			return f, nil
		}
	}
	if f := m.Field("id"); f != nil && f.IsScalar() {
		return f, nil
	}
	return nil, NewSchemaError(m.Name, "", "model has no identifying field", nil)
}

// IsJoinColumn reports whether the field is a from-field of some relation
// field declared on the same model.
func (g *Graph) IsJoinColumn(m *load.Model, field string) bool {
	_, ok := g.joins[m.Name][field]
	return ok
}

// IsHidden reports whether the scalar field is emitted unexported: it is a
// join column of the model or carries the hide tag.
func (g *Graph) IsHidden(m *load.Model, f *load.Field) bool {
	return f.IsScalar() && (g.IsJoinColumn(m, f.Name) || f.HasTag(load.TagHide))
}

// Siblings returns the fields sharing the relation name, in declaration order.
func (g *Graph) Siblings(relation string) []FieldRef {
	return slices.Clone(g.relations[relation])
}
