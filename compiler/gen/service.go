package gen

import (
	"bytes"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/iancoleman/strcase"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// ServiceOp is one named operation of the service table.
type ServiceOp struct {
	Name   string
	Model  string
	Method Method
}

// Mutation reports whether the operation writes.
func (op ServiceOp) Mutation() bool {
	return op.Method >= MethodCreate
}

// ServiceTable maps operation names to manager methods, split into queries
// and mutations. Operations are ordered by model, then by method.
type ServiceTable struct {
	Query    []ServiceOp
	Mutation []ServiceOp
}

// BuildServiceTable derives the operations of every model: "<m>" reads one
// object, "all<M>" lists or paginates them and "<m>Create", "<m>Update",
// "<m>Upsert" and "<m>Delete" write. Names are not pluralized.
func BuildServiceTable(models []string, paginate bool) (*ServiceTable, error) {
	list := MethodFilter
	if paginate {
		list = MethodPaginate
	}
	var (
		t    = &ServiceTable{}
		seen = newNames("")
	)
	for _, m := range models {
		lower := strcase.ToLowerCamel(m)
		ops := []ServiceOp{
			{Name: lower, Method: MethodGet},
			{Name: "all" + strcase.ToCamel(m), Method: list},
			{Name: lower + "Create", Method: MethodCreate},
			{Name: lower + "Update", Method: MethodUpdate},
			{Name: lower + "Upsert", Method: MethodUpsert},
			{Name: lower + "Delete", Method: MethodDelete},
		}
		for _, op := range ops {
			op.Model = m
			if err := seen.claim(op.Name, "model "+m); err != nil {
				return nil, err
			}
			if op.Mutation() {
				t.Mutation = append(t.Mutation, op)
			} else {
				t.Query = append(t.Query, op)
			}
		}
	}
	return t, nil
}

// ServiceTable builds the service table of the graph models.
func (g *Graph) ServiceTable() (*ServiceTable, error) {
	models := make([]string, 0, len(g.Models))
	for _, m := range g.Models {
		models = append(models, m.Name)
	}
	return BuildServiceTable(models, g.Pagination)
}

// Names returns every operation name, queries first.
func (t *ServiceTable) Names() []string {
	names := make([]string, 0, len(t.Query)+len(t.Mutation))
	for _, op := range t.Query {
		names = append(names, op.Name)
	}
	for _, op := range t.Mutation {
		names = append(names, op.Name)
	}
	return names
}

// Lookup returns the operation with the given name.
func (t *ServiceTable) Lookup(name string) (ServiceOp, bool) {
	for _, ops := range [][]ServiceOp{t.Query, t.Mutation} {
		for _, op := range ops {
			if op.Name == name {
				return op, true
			}
		}
	}
	return ServiceOp{}, false
}

// service renders the Go document exposing the service table as method
// values of the object managers.
func (e *emitter) service(t *ServiceTable) ([]byte, error) {
	f := e.newFile()
	dict := func(ops []ServiceOp) jen.Code {
		return jen.Map(jen.String()).Id("any").Values(jen.DictFunc(func(d jen.Dict) {
			for _, op := range ops {
				d[jen.Lit(op.Name)] = jen.Id(op.Model + "Objects").Dot(op.Method.String())
			}
		}))
	}
	f.Comment("Service maps the operation names of the service to the object manager")
	f.Comment("methods serving them.")
	f.Var().Id("Service").Op("=").Struct(
		jen.Id("Query").Map(jen.String()).Id("any"),
		jen.Id("Mutation").Map(jen.String()).Id("any"),
	).Values(jen.Dict{
		jen.Id("Query"):    dict(t.Query),
		jen.Id("Mutation"): dict(t.Mutation),
	})
	return render(f, "service", ServiceFile)
}

// GraphQL scalars of the SDL rendering.
const (
	gqlInt     = "Int"
	gqlFloat   = "Float"
	gqlString  = "String"
	gqlBoolean = "Boolean"
	gqlJSON    = "JSON"
)

// gqlScalar maps a Go type name to its GraphQL scalar. Types without a
// builtin counterpart are exposed as JSON.
func gqlScalar(ident string) string {
	switch {
	case ident == "string":
		return gqlString
	case ident == "bool":
		return gqlBoolean
	case ident == "float32", ident == "float64":
		return gqlFloat
	case strings.HasPrefix(ident, "int"), strings.HasPrefix(ident, "uint") && ident != "uintptr":
		return gqlInt
	}
	return gqlJSON
}

func gqlArgs(defs ...*ast.ArgumentDefinition) ast.ArgumentDefinitionList {
	return ast.ArgumentDefinitionList(defs)
}

func gqlArg(name string, typ *ast.Type) *ast.ArgumentDefinition {
	return &ast.ArgumentDefinition{Name: name, Type: typ}
}

func pageArgs() []*ast.ArgumentDefinition {
	return []*ast.ArgumentDefinition{
		gqlArg("first", ast.NamedType(gqlInt, nil)),
		gqlArg("after", ast.NamedType(gqlString, nil)),
		gqlArg("last", ast.NamedType(gqlInt, nil)),
		gqlArg("before", ast.NamedType(gqlString, nil)),
	}
}

// sdl renders the service table as a GraphQL schema document. Hidden fields
// are left out of the object types.
func (e *emitter) sdl(t *ServiceTable) ([]byte, error) {
	doc := &ast.SchemaDocument{}
	doc.Definitions = append(doc.Definitions, &ast.Definition{Kind: ast.Scalar, Name: gqlJSON})
	if e.Pagination {
		doc.Definitions = append(doc.Definitions, &ast.Definition{
			Kind: ast.Object,
			Name: "PageInfo",
			Fields: ast.FieldList{
				{Name: "hasNextPage", Type: ast.NonNullNamedType(gqlBoolean, nil)},
				{Name: "hasPreviousPage", Type: ast.NonNullNamedType(gqlBoolean, nil)},
				{Name: "startCursor", Type: ast.NamedType(gqlString, nil)},
				{Name: "endCursor", Type: ast.NamedType(gqlString, nil)},
			},
		})
	}
	for _, ct := range e.tables {
		doc.Definitions = append(doc.Definitions, e.gqlObject(ct))
		if e.Pagination {
			doc.Definitions = append(doc.Definitions, gqlConnection(ct.Model.Name)...)
		}
	}
	query := &ast.Definition{Kind: ast.Object, Name: "Query"}
	for _, op := range t.Query {
		query.Fields = append(query.Fields, e.gqlOperation(op))
	}
	mutation := &ast.Definition{Kind: ast.Object, Name: "Mutation"}
	for _, op := range t.Mutation {
		mutation.Fields = append(mutation.Fields, e.gqlOperation(op))
	}
	doc.Definitions = append(doc.Definitions, query, mutation)

	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchemaDocument(doc)
	return buf.Bytes(), nil
}

func (e *emitter) gqlObject(ct *ClassTable) *ast.Definition {
	def := &ast.Definition{Kind: ast.Object, Name: ct.Model.Name, Description: ct.Model.Documentation}
	for _, ent := range ct.Entries {
		f := ent.Field
		switch ent.Class {
		case ClassHidden:
			continue
		case ClassPlain:
			var typ *ast.Type
			if ent.Type.Slice {
				typ = ast.ListType(ast.NonNullNamedType(gqlScalar(ent.Type.Ident), nil), nil)
			} else {
				typ = ast.NamedType(gqlScalar(ent.Type.Ident), nil)
			}
			typ.NonNull = f.IsRequired && !ent.Type.Pointer
			def.Fields = append(def.Fields, &ast.FieldDefinition{Name: f.Name, Type: typ, Description: f.Documentation})
		case ClassRelation:
			p := ent.Relation
			fd := &ast.FieldDefinition{Name: f.Name, Description: f.Documentation}
			switch p.Kind {
			case MethodPaginate:
				fd.Arguments = gqlArgs(append(pageArgs(), gqlArg("where", ast.NamedType(gqlJSON, nil)))...)
				fd.Type = ast.NonNullNamedType(p.Target.Name+"Connection", nil)
			case MethodFilter:
				fd.Arguments = gqlArgs(gqlArg("where", ast.NamedType(gqlJSON, nil)))
				fd.Type = ast.NonNullListType(ast.NonNullNamedType(p.Target.Name, nil), nil)
			default:
				fd.Type = ast.NamedType(p.Target.Name, nil)
				fd.Type.NonNull = p.Required()
			}
			def.Fields = append(def.Fields, fd)
		}
	}
	return def
}

func gqlConnection(model string) []*ast.Definition {
	return []*ast.Definition{
		{
			Kind: ast.Object,
			Name: model + "Connection",
			Fields: ast.FieldList{
				{Name: "edges", Type: ast.NonNullListType(ast.NonNullNamedType(model+"Edge", nil), nil)},
				{Name: "pageInfo", Type: ast.NonNullNamedType("PageInfo", nil)},
				{Name: "totalCount", Type: ast.NonNullNamedType(gqlInt, nil)},
			},
		},
		{
			Kind: ast.Object,
			Name: model + "Edge",
			Fields: ast.FieldList{
				{Name: "node", Type: ast.NonNullNamedType(model, nil)},
				{Name: "cursor", Type: ast.NonNullNamedType(gqlString, nil)},
			},
		},
	}
}

func (e *emitter) gqlOperation(op ServiceOp) *ast.FieldDefinition {
	var (
		json   = ast.NonNullNamedType(gqlJSON, nil)
		object = ast.NonNullNamedType(op.Model, nil)
		fd     = &ast.FieldDefinition{Name: op.Name}
	)
	switch op.Method {
	case MethodGet:
		fd.Arguments = gqlArgs(gqlArg("where", ast.NamedType(gqlJSON, nil)))
		fd.Type = ast.NamedType(op.Model, nil)
	case MethodFilter:
		fd.Arguments = gqlArgs(gqlArg("where", ast.NamedType(gqlJSON, nil)))
		fd.Type = ast.NonNullListType(object, nil)
	case MethodPaginate:
		fd.Arguments = gqlArgs(append(pageArgs(), gqlArg("where", ast.NamedType(gqlJSON, nil)))...)
		fd.Type = ast.NonNullNamedType(op.Model+"Connection", nil)
	case MethodCreate:
		fd.Arguments = gqlArgs(gqlArg("data", json))
		fd.Type = object
	case MethodUpdate:
		fd.Arguments = gqlArgs(gqlArg("where", json), gqlArg("data", json))
		fd.Type = object
	case MethodUpsert:
		fd.Arguments = gqlArgs(gqlArg("where", json), gqlArg("create", json), gqlArg("update", json))
		fd.Type = object
	case MethodDelete:
		fd.Arguments = gqlArgs(gqlArg("where", json))
		fd.Type = object
	}
	return fd
}
