package gen

import (
	"github.com/syssam/repogen/compiler/introspect"
	"github.com/syssam/repogen/compiler/load"
)

// Class is the emission class of a field.
type Class uint8

// Field classes.
const (
	ClassPlain Class = iota + 1
	ClassHidden
	ClassRelation
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassPlain:
		return "plain"
	case ClassHidden:
		return "hidden"
	case ClassRelation:
		return "relation"
	}
	return "invalid"
}

// Entry is the classification of a single field.
type Entry struct {
	Field *load.Field
	Class Class
	// Type is the introspected Go type. Zero for relation fields.
	Type introspect.TypeExpr
	// Relation is set for relation fields.
	Relation *RelationPlan
}

// GoName returns the struct field name of a scalar entry.
func (e *Entry) GoName() string {
	if e.Class == ClassHidden {
		return hiddenField(e.Field.Name)
	}
	return pascal(e.Field.Name)
}

// ClassTable is the classification of the fields of a model, in field order.
type ClassTable struct {
	Model   *load.Model
	Entries []*Entry
}

// Entry returns the entry of the named field, or nil.
func (t *ClassTable) Entry(name string) *Entry {
	for _, e := range t.Entries {
		if e.Field.Name == name {
			return e
		}
	}
	return nil
}

// Filter returns the entries of the given class, in field order.
func (t *ClassTable) Filter(c Class) []*Entry {
	var entries []*Entry
	for _, e := range t.Entries {
		if e.Class == c {
			entries = append(entries, e)
		}
	}
	return entries
}

// Hidden returns the names of the hidden fields, in field order.
func (t *ClassTable) Hidden() []string {
	var names []string
	for _, e := range t.Filter(ClassHidden) {
		names = append(names, e.Field.Name)
	}
	return names
}

// Classify builds the class table of a model. A model or scalar field that
// the introspected client does not declare aborts with an IntrospectionError.
func (g *Graph) Classify(model string) (*ClassTable, error) {
	m := g.Model(model)
	if m == nil {
		return nil, NewSchemaError(model, "", "unknown model", nil)
	}
	types, err := g.Types.Fields(m.Name)
	if err != nil {
		return nil, NewIntrospectionError(m.Name, "", err)
	}
	t := &ClassTable{Model: m, Entries: make([]*Entry, 0, len(m.Fields))}
	for _, f := range m.Fields {
		typ, ok := types[f.Name]
		switch {
		case f.IsRelation():
			plan, err := g.resolve(m, f)
			if err != nil {
				return nil, err
			}
			t.Entries = append(t.Entries, &Entry{Field: f, Class: ClassRelation, Relation: plan})
		case !ok:
			if typ, err = g.Types.FieldType(m.Name, f.Name); err != nil {
				return nil, NewIntrospectionError(m.Name, f.Name, err)
			}
			fallthrough
		default:
			c := ClassPlain
			if g.IsHidden(m, f) {
				c = ClassHidden
			}
			t.Entries = append(t.Entries, &Entry{Field: f, Class: c, Type: typ})
		}
	}
	return t, nil
}

// ClassifyAll classifies every model in declaration order.
func (g *Graph) ClassifyAll() ([]*ClassTable, error) {
	tables := make([]*ClassTable, 0, len(g.Models))
	for _, m := range g.Models {
		t, err := g.Classify(m.Name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}
