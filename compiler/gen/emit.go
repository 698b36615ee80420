package gen

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/repogen/compiler/load"
)

const (
	recv       = "_m"
	contextPkg = "context"
)

// reserved are the identifiers every repository struct gets from the
// embedded runtime model and the generated constructor.
var reserved = []string{"Model", "Bootstrap", "Present", "assign"}

// emitter renders the documents of a graph from its class tables.
type emitter struct {
	*Graph
	tables []*ClassTable
	byName map[string]*ClassTable
}

func (g *Graph) newEmitter() (*emitter, error) {
	tables, err := g.ClassifyAll()
	if err != nil {
		return nil, err
	}
	e := &emitter{Graph: g, tables: tables, byName: make(map[string]*ClassTable, len(tables))}
	for _, t := range tables {
		e.byName[t.Model.Name] = t
	}
	if err := e.checkNames(); err != nil {
		return nil, err
	}
	return e, nil
}

// names tracks the identifiers claimed in one scope.
type names struct {
	model string
	owner map[string]string
}

func newNames(model string) *names {
	return &names{model: model, owner: make(map[string]string)}
}

func (n *names) claim(name, by string) error {
	if first, ok := n.owner[name]; ok {
		return NewNamingError(n.model, name, first, by)
	}
	n.owner[name] = by
	return nil
}

// checkNames rejects schemas whose derived identifiers coincide, inside a
// repository struct or at package scope.
func (e *emitter) checkNames() error {
	pkg := newNames("")
	for _, name := range []string{"Source", "Service"} {
		if err := pkg.claim(name, "runtime declaration "+name); err != nil {
			return err
		}
	}
	files := newNames("")
	for _, name := range []string{CoreFile, ServiceFile, clientFile} {
		if err := files.claim(name, "file "+name); err != nil {
			return err
		}
	}
	for _, t := range e.tables {
		m := t.Model
		for _, name := range []string{m.Name, "New" + m.Name, m.Name + "Repository", "New" + m.Name + "Repository", m.Name + "Objects"} {
			if err := pkg.claim(name, "model "+m.Name); err != nil {
				return err
			}
		}
		if err := files.claim(scaffoldFile(m), "model "+m.Name); err != nil {
			return err
		}
		local := newNames(m.Name)
		for _, name := range reserved {
			if err := local.claim(name, "runtime member "+name); err != nil {
				return err
			}
		}
		for _, ent := range t.Entries {
			f := ent.Field
			if ent.Class != ClassRelation {
				if err := local.claim(ent.GoName(), "field "+f.Name); err != nil {
					return err
				}
				continue
			}
			accessors := []string{pascal(f.Name), "Add" + pascal(f.Name), "Update" + pascal(f.Name), "Delete" + pascal(f.Name)}
			if f.IsList {
				accessors = append(accessors, singular(f.Name))
			}
			for _, name := range accessors {
				if err := local.claim(name, "relation "+f.Name); err != nil {
					return err
				}
			}
			if err := pkg.claim(inputName(m, f), "relation "+m.Name+"."+f.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func inputName(m *load.Model, f *load.Field) string {
	return m.Name + pascal(f.Name) + "Input"
}

func repoName(m *load.Model) string {
	return m.Name + "Repository"
}

func objectsName(m *load.Model) string {
	return m.Name + "Objects"
}

// newFile creates a new jennifer file with the standard header comment.
func (e *emitter) newFile() *jen.File {
	f := jen.NewFile(e.Package)
	f.ImportName(e.RuntimePackage, "repogen")
	if e.Header != "" {
		f.HeaderComment(e.Header)
	}
	return f
}

// rt qualifies an identifier of the runtime package.
func (e *emitter) rt(name string) *jen.Statement {
	return jen.Qual(e.RuntimePackage, name)
}

func render(f *jen.File, phase, file string) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, NewGenerationError(phase, file, "render", err)
	}
	return buf.Bytes(), nil
}

// core renders the always-regenerated document holding every repository.
func (e *emitter) core() ([]byte, error) {
	f := e.newFile()
	for _, t := range e.tables {
		e.genModel(f, t)
	}
	return render(f, "core", CoreFile)
}

func (e *emitter) genModel(f *jen.File, t *ClassTable) {
	m := t.Model
	name := repoName(m)
	f.Commentf("%s holds the fields and relations of the %s model.", name, m.Name)
	f.Type().Id(name).StructFunc(func(g *jen.Group) {
		g.Add(e.rt("Model"))
		for _, ent := range t.Filter(ClassPlain) {
			g.Id(ent.GoName()).Add(ent.Type.Code()).Tag(structTag(ent.Field.Name))
		}
		for _, ent := range t.Filter(ClassHidden) {
			g.Id(ent.GoName()).Add(ent.Type.Code())
		}
	})

	hidden := jen.Nil()
	if keys := t.Hidden(); len(keys) > 0 {
		hidden = jen.Index().String().ValuesFunc(func(g *jen.Group) {
			for _, n := range keys {
				g.Lit(n)
			}
		})
	}
	f.Commentf("New%s builds a %s from a payload. Hidden fields are read from", name, name)
	f.Comment("their plain payload keys.")
	f.Func().Id("New"+name).Params(jen.Id("data").Map(jen.String()).Id("any")).Params(jen.Op("*").Id(name), jen.Error()).Block(
		jen.Id(recv).Op(":=").Op("&").Id(name).Values(),
		jen.If(
			jen.Err().Op(":=").Id(recv).Dot("Bootstrap").Call(jen.Id("data"), hidden, jen.Id(recv).Dot("assign")),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Return(jen.Id(recv), jen.Nil()),
	)

	f.Func().Params(jen.Id(recv).Op("*").Id(name)).Id("assign").Params(jen.Id("key").String(), jen.Id("value").Id("any")).Error().Block(
		jen.Switch(jen.Id("key")).BlockFunc(func(g *jen.Group) {
			for _, ent := range t.Entries {
				if ent.Class == ClassRelation {
					continue
				}
				key := ent.Field.Name
				if ent.Class == ClassHidden {
					key = "$" + key
				}
				g.Case(jen.Lit(key)).Block(
					jen.Return(e.rt("Assign").Call(jen.Op("&").Id(recv).Dot(ent.GoName()), jen.Id("key"), jen.Id("value"))),
				)
			}
		}),
		jen.Return(jen.Nil()),
	)

	for _, ent := range t.Filter(ClassRelation) {
		e.genRelation(f, t, ent.Relation)
	}
}

// join returns the predicate document of the relation, reading the source
// values from the receiver.
func (e *emitter) join(t *ClassTable, p *RelationPlan) *jen.Statement {
	if x := p.Existential; x != nil {
		return e.rt("Where").Values(jen.Dict{
			jen.Lit(x.Field): e.rt("Some").Values(jen.Dict{
				jen.Lit(x.Key): e.source(t, x.Source),
			}),
		})
	}
	return e.rt("Where").Values(jen.DictFunc(func(d jen.Dict) {
		for _, j := range p.Predicate {
			d[jen.Lit(j.Target)] = e.source(t, j.Source)
		}
	}))
}

// source reads a join value from the receiver. Pointer fields are
// dereferenced; guards make sure they are set.
func (e *emitter) source(t *ClassTable, field string) *jen.Statement {
	ent := t.Entry(field)
	if pointer(ent) {
		return jen.Op("*").Id(recv).Dot(ent.GoName())
	}
	return jen.Id(recv).Dot(ent.GoName())
}

func pointer(ent *Entry) bool { return ent.Type.Pointer && !ent.Type.Slice }

// sources returns the receiver fields the join of a relation reads.
func sources(p *RelationPlan) []string {
	if x := p.Existential; x != nil {
		return []string{x.Source}
	}
	srcs := make([]string, 0, len(p.Predicate))
	for _, j := range p.Predicate {
		srcs = append(srcs, j.Source)
	}
	return srcs
}

// guards renders the checks a relation needs before reading its join
// values: hidden fields must be present and pointer fields non-nil. Lenient
// guards on optional relations return an empty result instead of an error.
func (e *emitter) guards(t *ClassTable, p *RelationPlan, lenient bool) []jen.Code {
	fail := func(field string, required bool) jen.Code {
		if lenient && !required {
			return jen.Return(jen.Nil(), jen.Nil())
		}
		return jen.Return(jen.Nil(), e.rt("NewRelationError").Call(jen.Lit(p.Model.Name), jen.Lit(p.Field.Name), jen.Lit(field)))
	}
	var (
		stmts   []jen.Code
		guarded = make(map[string]struct{}, len(p.Guards))
	)
	for _, gd := range p.Guards {
		guarded[gd.Field] = struct{}{}
		cond := jen.Op("!").Id(recv).Dot("Present").Call(jen.Lit(gd.Field))
		if ent := t.Entry(gd.Field); ent != nil && pointer(ent) {
			cond = cond.Op("||").Id(recv).Dot(ent.GoName()).Op("==").Nil()
		}
		stmts = append(stmts, jen.If(cond).Block(fail(gd.Field, gd.Required)))
	}
	for _, src := range sources(p) {
		if _, ok := guarded[src]; ok {
			continue
		}
		if ent := t.Entry(src); ent != nil && pointer(ent) {
			stmts = append(stmts, jen.If(jen.Id(recv).Dot(ent.GoName()).Op("==").Nil()).Block(fail(src, p.Required())))
		}
	}
	return stmts
}

func (e *emitter) targetPtr(p *RelationPlan) *jen.Statement {
	return jen.Op("*").Id(p.Target.Name)
}

func (e *emitter) genRelation(f *jen.File, t *ClassTable, p *RelationPlan) {
	var (
		name    = pascal(p.Field.Name)
		recvr   = jen.Id(recv).Op("*").Id(repoName(p.Model))
		objects = jen.Id(objectsName(p.Target))
		ctx     = jen.Id("ctx").Qual(contextPkg, "Context")
		where   = jen.Id("where").Add(e.rt("Where"))
		orderBy = jen.Id("orderBy").Op("...").Add(e.rt("Order"))
		merged  = jen.Id("where").Dot("Merge").Call(e.join(t, p))
	)

	// Read accessor.
	var (
		params = []jen.Code{ctx}
		args   = []jen.Code{jen.Id("ctx")}
		result jen.Code
	)
	switch p.Kind {
	case MethodPaginate:
		params = append(params, jen.Id("page").Op("*").Add(e.rt("Pagination")))
		args = append(args, jen.Id("page"))
		result = jen.Op("*").Add(e.rt("Connection")).Types(e.targetPtr(p))
		f.Commentf("%s returns a page of the %s objects related through %s.", name, p.Target.Name, p.Field.Name)
	case MethodFilter:
		result = jen.Index().Add(e.targetPtr(p))
		f.Commentf("%s returns the %s objects related through %s.", name, p.Target.Name, p.Field.Name)
	default:
		result = e.targetPtr(p)
		f.Commentf("%s returns the %s related through %s.", name, p.Target.Name, p.Field.Name)
	}
	params = append(params, where, orderBy)
	args = append(args, merged, jen.Id("orderBy").Op("..."))
	call := objects.Clone().Dot(p.Kind.String()).Call(args...)
	f.Func().Params(recvr).Id(name).Params(params...).Params(result, jen.Error()).BlockFunc(func(g *jen.Group) {
		for _, s := range e.guards(t, p, true) {
			g.Add(s)
		}
		if p.Kind != MethodGet || p.Required() {
			g.Return(call)
			return
		}
		g.List(jen.Id("node"), jen.Err()).Op(":=").Add(call)
		g.If(e.rt("IsNotFound").Call(jen.Err())).Block(jen.Return(jen.Nil(), jen.Nil()))
		g.Return(jen.Id("node"), jen.Err())
	})

	// Singular lookup of list relations.
	if p.List() {
		one := singular(p.Field.Name)
		f.Commentf("%s returns the %s related through %s matching where.", one, p.Target.Name, p.Field.Name)
		f.Func().Params(recvr).Id(one).Params(ctx, where).Params(e.targetPtr(p), jen.Error()).BlockFunc(func(g *jen.Group) {
			for _, s := range e.guards(t, p, true) {
				g.Add(s)
			}
			g.Return(objects.Clone().Dot("Get").Call(jen.Id("ctx"), merged))
		})
	}

	e.genInput(f, t, p)
	e.genHelpers(f, t, p, name)
}

// inputFields returns the target entries a relation payload accepts: every
// scalar field of the target except the join columns forced by the relation.
func (e *emitter) inputFields(p *RelationPlan) []*Entry {
	forced := make(map[string]struct{}, len(p.Predicate))
	for _, col := range p.JoinColumns() {
		forced[col] = struct{}{}
	}
	var entries []*Entry
	for _, ent := range e.byName[p.Target.Name].Entries {
		if ent.Class == ClassRelation {
			continue
		}
		if _, ok := forced[ent.Field.Name]; ok {
			continue
		}
		entries = append(entries, ent)
	}
	return entries
}

func (e *emitter) genInput(f *jen.File, t *ClassTable, p *RelationPlan) {
	name := inputName(p.Model, p.Field)
	fields := e.inputFields(p)
	f.Commentf("%s is the payload of the %s relation helpers of %s.", name, p.Field.Name, p.Model.Name)
	f.Comment("Join columns are set from the instance and cannot be overridden.")
	f.Type().Id(name).StructFunc(func(g *jen.Group) {
		for _, ent := range fields {
			g.Id(pascal(ent.Field.Name)).Add(ent.Type.Optional().Code()).Tag(inputTag(ent.Field.Name))
		}
	})
	f.Func().Params(jen.Id("_i").Op("*").Id(name)).Id("record").Params().Add(e.rt("Record")).BlockFunc(func(g *jen.Group) {
		g.Id("rec").Op(":=").Add(e.rt("Record")).Values()
		g.If(jen.Id("_i").Op("==").Nil()).Block(jen.Return(jen.Id("rec")))
		for _, ent := range fields {
			field := jen.Id("_i").Dot(pascal(ent.Field.Name))
			value := field.Clone()
			if !ent.Type.Nillable() {
				value = jen.Op("*").Add(field.Clone())
			}
			g.If(field.Clone().Op("!=").Nil()).Block(
				jen.Id("rec").Index(jen.Lit(ent.Field.Name)).Op("=").Add(value),
			)
		}
		g.Return(jen.Id("rec"))
	})
}

func (e *emitter) genHelpers(f *jen.File, t *ClassTable, p *RelationPlan, name string) {
	var (
		recvr   = jen.Id(recv).Op("*").Id(repoName(p.Model))
		objects = jen.Id(objectsName(p.Target))
		ctx     = jen.Id("ctx").Qual(contextPkg, "Context")
		input   = jen.Id("input").Op("*").Id(inputName(p.Model, p.Field))
		where   = jen.Id("where").Add(e.rt("Where"))
		merged  = jen.Id("where").Dot("Merge").Call(e.join(t, p))
		result  = []jen.Code{e.targetPtr(p), jen.Error()}
	)

	f.Commentf("Add%s creates a %s linked to this %s.", name, p.Target.Name, p.Model.Name)
	f.Func().Params(recvr).Id("Add"+name).Params(ctx, input).Params(result...).BlockFunc(func(g *jen.Group) {
		for _, s := range e.guards(t, p, false) {
			g.Add(s)
		}
		g.Id("data").Op(":=").Id("input").Dot("record").Call()
		if x := p.Existential; x != nil {
			g.Id("data").Index(jen.Lit(x.Field)).Op("=").Add(e.rt("Connect").Values(jen.Dict{
				jen.Lit(x.Key): e.source(t, x.Source),
			}))
		}
		for _, j := range p.Predicate {
			g.Id("data").Index(jen.Lit(j.Target)).Op("=").Add(e.source(t, j.Source))
		}
		g.Return(objects.Clone().Dot("Create").Call(jen.Id("ctx"), jen.Id("data")))
	})

	f.Commentf("Update%s updates the %s linked to this %s matching where.", name, p.Target.Name, p.Model.Name)
	f.Func().Params(recvr).Id("Update"+name).Params(ctx, input, where).Params(result...).BlockFunc(func(g *jen.Group) {
		for _, s := range e.guards(t, p, false) {
			g.Add(s)
		}
		g.Return(objects.Clone().Dot("Update").Call(jen.Id("ctx"), jen.Id("input").Dot("record").Call(), merged))
	})

	f.Commentf("Delete%s deletes the %s linked to this %s matching where.", name, p.Target.Name, p.Model.Name)
	f.Func().Params(recvr).Id("Delete"+name).Params(ctx, where).Params(result...).BlockFunc(func(g *jen.Group) {
		for _, s := range e.guards(t, p, false) {
			g.Add(s)
		}
		g.Return(objects.Clone().Dot("Delete").Call(jen.Id("ctx"), merged))
	})
}

// describe returns a one-line summary of a relation plan, used in logs.
func describe(p *RelationPlan) string {
	switch {
	case p.Existential != nil:
		return fmt.Sprintf("%s.%s -> %s (%s, %s contains %s)", p.Model.Name, p.Field.Name, p.Target.Name, p.Kind, p.Existential.Field, p.Existential.Key)
	default:
		return fmt.Sprintf("%s.%s -> %s (%s, %d join columns, %d guards)", p.Model.Name, p.Field.Name, p.Target.Name, p.Kind, len(p.Predicate), len(p.Guards))
	}
}
