package introspect

import (
	"context"
	"fmt"
	"go/types"
	"maps"
	"reflect"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Packages is an Introspector over the struct declarations of a compiled Go
// client package. A model maps to the exported struct type of the same name;
// a field maps to the struct field whose json tag (or, failing that, Go name,
// compared case-insensitively) equals the field name.
type Packages struct {
	pkg *types.Package
}

// LoadPackages type-checks the package matching pattern, resolved relative
// to dir.
func LoadPackages(ctx context.Context, dir, pattern string) (*Packages, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode:    packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedSyntax,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("introspect: load package %s: %w", pattern, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("introspect: no packages found for %s", pattern)
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("introspect: package %s: %v", pattern, pkg.Errors[0])
	}
	return &Packages{pkg: pkg.Types}, nil
}

// NewPackages returns an introspector over an already type-checked package.
func NewPackages(pkg *types.Package) *Packages {
	return &Packages{pkg: pkg}
}

// Path returns the import path of the introspected package.
func (p *Packages) Path() string { return p.pkg.Path() }

// Fields implements Introspector.
func (p *Packages) Fields(model string) (map[string]TypeExpr, error) {
	st, err := p.lookup(model)
	if err != nil {
		return nil, err
	}
	out := make(map[string]TypeExpr)
	err = walkFields(st, func(name string, v *types.Var) error {
		if _, ok := out[name]; ok {
			return nil
		}
		typ, err := exprOf(v.Type())
		if err != nil {
			return fmt.Errorf("introspect: %s.%s: %w", model, name, err)
		}
		out[name] = typ
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FieldType implements Introspector.
func (p *Packages) FieldType(model, field string) (TypeExpr, error) {
	fields, err := p.Fields(model)
	if err != nil {
		return TypeExpr{}, err
	}
	if typ, ok := fields[field]; ok {
		return typ, nil
	}
	var matches []string
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if strings.EqualFold(name, field) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return TypeExpr{}, fieldNotFound(model, field)
	case 1:
		return fields[matches[0]], nil
	default:
		return TypeExpr{}, fmt.Errorf("%w: %s.%s matches %s", ErrAmbiguousField, model, field, strings.Join(matches, ", "))
	}
}

func (p *Packages) lookup(model string) (*types.Struct, error) {
	obj, ok := p.pkg.Scope().Lookup(model).(*types.TypeName)
	if !ok || !obj.Exported() {
		return nil, modelNotFound(model)
	}
	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrModelNotFound, model)
	}
	return st, nil
}

// walkFields visits the exported fields of st, promoting the fields of
// embedded structs. Outer fields are visited first.
func walkFields(st *types.Struct, visit func(name string, v *types.Var) error) error {
	var embedded []*types.Struct
	for i := 0; i < st.NumFields(); i++ {
		v := st.Field(i)
		if v.Embedded() {
			if inner, ok := v.Type().Underlying().(*types.Struct); ok {
				embedded = append(embedded, inner)
			}
			continue
		}
		if !v.Exported() {
			continue
		}
		name := v.Name()
		if tag := reflect.StructTag(st.Tag(i)).Get("json"); tag != "" {
			if tag == "-" {
				continue
			}
			if n, _, _ := strings.Cut(tag, ","); n != "" {
				name = n
			}
		}
		if err := visit(name, v); err != nil {
			return err
		}
	}
	for _, inner := range embedded {
		if err := walkFields(inner, visit); err != nil {
			return err
		}
	}
	return nil
}

// exprOf converts a checked type to a TypeExpr.
func exprOf(t types.Type) (TypeExpr, error) {
	var e TypeExpr
	t = types.Unalias(t)
	if s, ok := t.(*types.Slice); ok {
		if b, ok := s.Elem().(*types.Basic); ok && b.Kind() == types.Byte {
			return TypeExpr{Ident: "[]byte"}, nil
		}
		e.Slice, t = true, types.Unalias(s.Elem())
	}
	if p, ok := t.(*types.Pointer); ok {
		e.Pointer, t = true, types.Unalias(p.Elem())
	}
	switch t := t.(type) {
	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() != nil {
			e.PkgPath = obj.Pkg().Path()
		}
		e.Ident = obj.Name()
	case *types.Basic:
		e.Ident = t.Name()
	case *types.Map:
		e.Ident = types.TypeString(t, func(p *types.Package) string { return p.Name() })
		if strings.Contains(e.Ident, ".") {
			return TypeExpr{}, fmt.Errorf("unsupported map type %s", t)
		}
	case *types.Interface:
		if !t.Empty() {
			return TypeExpr{}, fmt.Errorf("unsupported interface type %s", t)
		}
		e.Ident = "any"
	default:
		return TypeExpr{}, fmt.Errorf("unsupported type %s", t)
	}
	return e, nil
}

var _ Introspector = (*Packages)(nil)
