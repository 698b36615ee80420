package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/repogen/compiler/load"
)

// Output file names.
const (
	CoreFile    = "repository_gen.go"
	ServiceFile = "service_gen.go"
	SDLFile     = "schema.graphql"
	clientFile  = "client.go"
)

// scaffoldFile returns the name of the user-owned file of a model.
func scaffoldFile(m *load.Model) string {
	return snake(m.Name) + ".go"
}

// newScaffold creates a user-owned file. Scaffolds carry no generated-code
// header since they are written once and then edited by hand.
func (e *emitter) newScaffold() *jen.File {
	f := jen.NewFile(e.Package)
	f.ImportName(e.RuntimePackage, "repogen")
	return f
}

// scaffolds renders the user-owned files: the shared client and one wrapper
// per model around its generated repository.
func (e *emitter) scaffolds() ([]File, error) {
	files := make([]File, 0, len(e.tables)+1)
	client := e.newScaffold()
	client.Comment("Source provides the delegates of every model. It must be set before any")
	client.Comment("object manager is used.")
	client.Var().Id("Source").Add(e.rt("Source"))
	buf, err := render(client, "scaffold", clientFile)
	if err != nil {
		return nil, err
	}
	files = append(files, File{Name: clientFile, Content: buf})
	for _, t := range e.tables {
		name := scaffoldFile(t.Model)
		f := e.newScaffold()
		e.genScaffold(f, t.Model)
		buf, err := render(f, "scaffold", name)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: name, Content: buf})
	}
	return files, nil
}

func (e *emitter) genScaffold(f *jen.File, m *load.Model) {
	repo := repoName(m)
	f.Commentf("%s is the %s model. Custom methods and overrides belong here.", m.Name, m.Name)
	f.Type().Id(m.Name).Struct(jen.Id(repo))

	f.Commentf("New%s builds a %s from a payload.", m.Name, m.Name)
	f.Func().Id("New"+m.Name).Params(jen.Id("data").Map(jen.String()).Id("any")).Params(jen.Op("*").Id(m.Name), jen.Error()).Block(
		jen.List(jen.Id("r"), jen.Err()).Op(":=").Id("New"+repo).Call(jen.Id("data")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Return(jen.Op("&").Id(m.Name).Values(jen.Dict{jen.Id(repo): jen.Op("*").Id("r")}), jen.Nil()),
	)

	args := []jen.Code{
		jen.Lit(m.Name),
		jen.Func().Params().Add(e.rt("Source")).Block(jen.Return(jen.Id("Source"))),
		jen.Id("New" + m.Name),
	}
	// Cursors default to the "id" key.
	if id, err := e.IDField(m); err == nil && id.Name != "id" {
		args = append(args, e.rt("WithCursorKey").Call(jen.Lit(id.Name)))
	}
	f.Commentf("%s is the object manager of %s.", objectsName(m), m.Name)
	f.Var().Id(objectsName(m)).Op("=").Add(e.rt("NewObjects").Call(args...))
}
