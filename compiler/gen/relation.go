package gen

import (
	"fmt"

	"github.com/syssam/repogen/compiler/load"
)

// Method is the manager capability a relation accessor calls.
type Method uint8

// Manager methods used by relation accessors and the service table.
const (
	MethodGet Method = iota + 1
	MethodFilter
	MethodPaginate
	MethodCreate
	MethodUpdate
	MethodUpsert
	MethodDelete
)

var methodNames = [...]string{
	MethodGet:      "Get",
	MethodFilter:   "Filter",
	MethodPaginate: "Paginate",
	MethodCreate:   "Create",
	MethodUpdate:   "Update",
	MethodUpsert:   "Upsert",
	MethodDelete:   "Delete",
}

// String returns the manager method name.
func (m Method) String() string {
	if m > 0 && int(m) < len(methodNames) {
		return methodNames[m]
	}
	return "Invalid"
}

// Join is one column-equality pair of a relation predicate: Target names a
// field of the related model, Source the field of this model whose value it
// must equal.
type Join struct {
	Target string
	Source string
}

// Existential is the join-table-free many-to-many predicate: the related
// model's Field collection contains an element whose Key equals this
// instance's Source field.
type Existential struct {
	Field  string
	Key    string
	Source string
}

// Guard requires a source field to be present on the instance before the
// relation is traversed. A missing required field is an error; a missing
// optional field yields an empty result.
type Guard struct {
	Field    string
	Required bool
}

// RelationPlan is the resolved join of a relation field.
type RelationPlan struct {
	Model  *load.Model
	Field  *load.Field
	Target *load.Model
	// Kind is the manager method of the read accessor.
	Kind Method
	// Predicate holds the column-equality pairs. Empty when Existential is set.
	Predicate []Join
	// Existential is set for pure many-to-many relations.
	Existential *Existential
	Guards      []Guard
	// Counterpart is the other side of a non-owning relation.
	Counterpart *FieldRef
}

// List reports whether the relation reads a collection.
func (p *RelationPlan) List() bool { return p.Field.IsList }

// Required reports whether the relation field is required.
func (p *RelationPlan) Required() bool { return p.Field.IsRequired }

// JoinColumns returns the related model's fields forced by the predicate.
func (p *RelationPlan) JoinColumns() []string {
	cols := make([]string, 0, len(p.Predicate))
	for _, j := range p.Predicate {
		cols = append(cols, j.Target)
	}
	return cols
}

// Resolve computes the relation plan of a relation field.
func (g *Graph) Resolve(model, field string) (*RelationPlan, error) {
	m := g.Model(model)
	if m == nil {
		return nil, NewSchemaError(model, field, "unknown model", nil)
	}
	f := m.Field(field)
	if f == nil || !f.IsRelation() {
		return nil, NewSchemaError(model, field, "not a relation field", nil)
	}
	return g.resolve(m, f)
}

func (g *Graph) resolve(m *load.Model, f *load.Field) (*RelationPlan, error) {
	p := &RelationPlan{
		Model:  m,
		Field:  f,
		Target: g.Model(f.Type),
		Kind:   MethodGet,
	}
	if f.IsList {
		p.Kind = MethodFilter
		if g.Pagination {
			p.Kind = MethodPaginate
		}
	}
	if f.Owning() {
		for i, from := range f.RelationFromFields {
			p.Predicate = append(p.Predicate, Join{Target: f.RelationToFields[i], Source: from})
		}
		for _, from := range f.RelationFromFields {
			if g.IsHidden(m, m.Field(from)) {
				p.Guards = append(p.Guards, Guard{Field: from, Required: f.IsRequired})
			}
		}
		return p, nil
	}
	cp, err := g.counterpart(m, f)
	if err != nil {
		return nil, err
	}
	p.Counterpart = cp
	if cp.Field.Implicit() {
		id, err := g.IDField(m)
		if err != nil {
			return nil, NewRelationError(m.Name, f.Name, f.RelationName, "many-to-many relation needs an identifying field: "+err.Error())
		}
		p.Existential = &Existential{Field: cp.Field.Name, Key: id.Name, Source: id.Name}
		return p, nil
	}
	// The counterpart owns the join columns.
	for i, from := range cp.Field.RelationFromFields {
		p.Predicate = append(p.Predicate, Join{Target: from, Source: cp.Field.RelationToFields[i]})
	}
	for _, j := range p.Predicate {
		if src := m.Field(j.Source); src == nil || !src.IsScalar() {
			return nil, NewRelationError(m.Name, f.Name, f.RelationName,
				fmt.Sprintf("counterpart %s joins on %q which is not a scalar field of %s", cp, j.Source, m.Name))
		}
		if g.IsHidden(m, m.Field(j.Source)) {
			p.Guards = append(p.Guards, Guard{Field: j.Source, Required: f.IsRequired})
		}
	}
	return p, nil
}

// counterpart finds the other side of a non-owning relation field among the
// fields sharing its relation name. A field on another model wins over a
// field on the same model; the field itself never qualifies.
func (g *Graph) counterpart(m *load.Model, f *load.Field) (*FieldRef, error) {
	var same *FieldRef
	for _, ref := range g.relations[f.RelationName] {
		if ref.Field == f {
			continue
		}
		if ref.Model != m {
			return &ref, nil
		}
		if same == nil {
			same = &ref
		}
	}
	if same != nil {
		return same, nil
	}
	return nil, NewRelationError(m.Name, f.Name, f.RelationName, "no counterpart field shares the relation name")
}
