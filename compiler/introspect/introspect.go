// Package introspect answers "what is the Go type of field F of model M" for
// the generator. Two backends are provided: Table, a pre-serialized lookup
// document, and Packages, which reads the struct declarations of a compiled
// Go client package.
package introspect

import (
	"errors"
	"fmt"
	"go/token"
	"strings"

	"github.com/dave/jennifer/jen"
)

var (
	// ErrModelNotFound is returned when the introspected surface has no
	// declaration for a model.
	ErrModelNotFound = errors.New("introspect: model not found")
	// ErrFieldNotFound is returned when a model declaration has no such field.
	ErrFieldNotFound = errors.New("introspect: field not found")
	// ErrAmbiguousField is returned when a field name matches several Go
	// field names that differ only in case.
	ErrAmbiguousField = errors.New("introspect: ambiguous field")
)

// Introspector resolves the declared Go types of model fields.
type Introspector interface {
	// Fields returns the declared types of every field of the model.
	Fields(model string) (map[string]TypeExpr, error)
	// FieldType returns the declared type of a single field.
	FieldType(model, field string) (TypeExpr, error)
}

// TypeExpr is a Go type expression usable in generated code.
type TypeExpr struct {
	// Ident is the type name, or a builtin composite like map[string]any.
	Ident string `json:"ident" yaml:"ident"`
	// PkgPath is the import path of a qualified type. Empty for builtins.
	PkgPath string `json:"pkg,omitempty" yaml:"pkg,omitempty"`
	// Slice marks an outer []T.
	Slice bool `json:"slice,omitempty" yaml:"slice,omitempty"`
	// Pointer marks a pointer element (*T or []*T).
	Pointer bool `json:"pointer,omitempty" yaml:"pointer,omitempty"`
}

// IsZero reports whether the expression is empty.
func (t TypeExpr) IsZero() bool { return t.Ident == "" }

// Nillable reports whether the expression has a nil value.
func (t TypeExpr) Nillable() bool {
	return t.Slice || t.Pointer || t.Ident == "[]byte" || strings.HasPrefix(t.Ident, "map[") || t.Ident == "any"
}

// Optional returns the expression as a pointer unless it is already nillable.
func (t TypeExpr) Optional() TypeExpr {
	if !t.Nillable() {
		t.Pointer = true
	}
	return t
}

// String returns the Go spelling of the expression, qualified with the last
// element of the import path.
func (t TypeExpr) String() string {
	var b strings.Builder
	if t.Slice {
		b.WriteString("[]")
	}
	if t.Pointer {
		b.WriteString("*")
	}
	if t.PkgPath != "" {
		b.WriteString(t.PkgPath[strings.LastIndex(t.PkgPath, "/")+1:])
		b.WriteString(".")
	}
	b.WriteString(t.Ident)
	return b.String()
}

// Code returns the jennifer statement of the expression.
func (t TypeExpr) Code() *jen.Statement {
	s := &jen.Statement{}
	if t.Slice {
		s = s.Index()
	}
	if t.Pointer {
		s = s.Op("*")
	}
	if t.PkgPath != "" {
		return s.Qual(t.PkgPath, t.Ident)
	}
	return s.Id(t.Ident)
}

// stdImports resolves the qualifiers that need no explicit import entry.
var stdImports = map[string]string{
	"time":    "time",
	"json":    "encoding/json",
	"big":     "math/big",
	"decimal": "github.com/shopspring/decimal",
	"uuid":    "github.com/google/uuid",
}

// ParseTypeExpr parses a type expression such as "string", "*time.Time",
// "[]byte", "[]*models.Tag" or "github.com/acme/types.Money". Qualifiers are
// resolved through imports (alias to import path) and then a small table of
// well-known packages.
func ParseTypeExpr(s string, imports map[string]string) (TypeExpr, error) {
	var t TypeExpr
	expr := strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(expr, "[]"); ok && rest != "byte" {
		t.Slice, expr = true, rest
	}
	if rest, ok := strings.CutPrefix(expr, "*"); ok {
		t.Pointer, expr = true, rest
	}
	switch {
	case expr == "":
		return TypeExpr{}, fmt.Errorf("introspect: empty type expression %q", s)
	// Builtin composites are emitted verbatim.
	case expr == "[]byte", strings.HasPrefix(expr, "map["):
		t.Ident = expr
		return t, nil
	case !strings.Contains(expr, "."):
		if !token.IsIdentifier(expr) {
			return TypeExpr{}, fmt.Errorf("introspect: invalid type expression %q", s)
		}
		t.Ident = expr
		return t, nil
	}
	i := strings.LastIndex(expr, ".")
	qual, name := expr[:i], expr[i+1:]
	if !token.IsIdentifier(name) {
		return TypeExpr{}, fmt.Errorf("introspect: invalid type name in %q", s)
	}
	switch path, ok := imports[qual]; {
	case ok:
		t.PkgPath = path
	case strings.Contains(qual, "/"):
		t.PkgPath = qual
	default:
		if path, ok = stdImports[qual]; !ok {
			return TypeExpr{}, fmt.Errorf("introspect: unknown package qualifier %q in %q", qual, s)
		}
		t.PkgPath = path
	}
	t.Ident = name
	return t, nil
}

// MustParse is like ParseTypeExpr but panics on error. It is intended for
// tests and static tables.
func MustParse(s string) TypeExpr {
	t, err := ParseTypeExpr(s, nil)
	if err != nil {
		panic(err)
	}
	return t
}

func modelNotFound(model string) error {
	return fmt.Errorf("%w: %s", ErrModelNotFound, model)
}

func fieldNotFound(model, field string) error {
	return fmt.Errorf("%w: %s.%s", ErrFieldNotFound, model, field)
}
