package introspect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Table is an Introspector over a pre-serialized lookup document:
//
//	imports:
//	  models: github.com/acme/app/models
//	models:
//	  Post:
//	    id: int
//	    createdAt: time.Time
//	    tags: "[]*models.Tag"
type Table struct {
	models map[string]map[string]TypeExpr
}

type tableDoc struct {
	Imports map[string]string            `json:"imports" yaml:"imports"`
	Models  map[string]map[string]string `json:"models" yaml:"models"`
}

// NewTable returns a table from already-resolved types.
func NewTable(models map[string]map[string]TypeExpr) *Table {
	t := &Table{models: make(map[string]map[string]TypeExpr, len(models))}
	for m, fields := range models {
		t.models[m] = make(map[string]TypeExpr, len(fields))
		for f, typ := range fields {
			t.models[m][f] = typ
		}
	}
	return t
}

// ParseTable decodes a lookup document, JSON or YAML.
func ParseTable(buf []byte) (*Table, error) {
	doc := &tableDoc{}
	if trimmed := bytes.TrimSpace(buf); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, doc); err != nil {
			return nil, fmt.Errorf("introspect: decode table: %w", err)
		}
	} else if err := yaml.Unmarshal(buf, doc); err != nil {
		return nil, fmt.Errorf("introspect: decode table: %w", err)
	}
	t := &Table{models: make(map[string]map[string]TypeExpr, len(doc.Models))}
	for m, fields := range doc.Models {
		t.models[m] = make(map[string]TypeExpr, len(fields))
		for f, expr := range fields {
			typ, err := ParseTypeExpr(expr, doc.Imports)
			if err != nil {
				return nil, fmt.Errorf("introspect: %s.%s: %w", m, f, err)
			}
			t.models[m][f] = typ
		}
	}
	return t, nil
}

// ReadTable loads the lookup document at path.
func ReadTable(path string) (*Table, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("introspect: read table: %w", err)
	}
	return ParseTable(buf)
}

// Models returns the sorted model names of the table.
func (t *Table) Models() []string {
	names := make([]string, 0, len(t.models))
	for m := range t.models {
		names = append(names, m)
	}
	sort.Strings(names)
	return names
}

// Fields implements Introspector.
func (t *Table) Fields(model string) (map[string]TypeExpr, error) {
	fields, ok := t.models[model]
	if !ok {
		return nil, modelNotFound(model)
	}
	out := make(map[string]TypeExpr, len(fields))
	for f, typ := range fields {
		out[f] = typ
	}
	return out, nil
}

// FieldType implements Introspector.
func (t *Table) FieldType(model, field string) (TypeExpr, error) {
	fields, ok := t.models[model]
	if !ok {
		return TypeExpr{}, modelNotFound(model)
	}
	typ, ok := fields[field]
	if !ok {
		return TypeExpr{}, fieldNotFound(model, field)
	}
	return typ, nil
}

var _ Introspector = (*Table)(nil)
