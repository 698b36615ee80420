package gen

import (
	"context"

	"github.com/syssam/repogen/compiler/introspect"
	"github.com/syssam/repogen/compiler/load"
)

// File is a named document of the output.
type File struct {
	Name    string
	Content []byte
}

// Output holds the documents of one generation run.
type Output struct {
	// Core is the always-regenerated repository document.
	Core []byte
	// Service is the service table document. Nil unless enabled.
	Service []byte
	// SDL is the GraphQL rendering of the service table. Nil unless enabled.
	SDL []byte
	// Scaffolds are the user-owned files, created once.
	Scaffolds []File
}

// Generated returns the documents that are overwritten on every run.
func (o *Output) Generated() []File {
	files := []File{{Name: CoreFile, Content: o.Core}}
	if o.Service != nil {
		files = append(files, File{Name: ServiceFile, Content: o.Service})
	}
	if o.SDL != nil {
		files = append(files, File{Name: SDLFile, Content: o.SDL})
	}
	return files
}

// Generate compiles a schema and its introspected client types into the
// generated documents.
//
// Example:
//
//	schema, err := load.ReadFile("schema.json")
//	if err != nil {
//		return err
//	}
//	types, err := introspect.ReadTable("types.yaml")
//	if err != nil {
//		return err
//	}
//	out, err := gen.Generate(schema, types, gen.WithPagination(false))
func Generate(schema *load.Schema, types introspect.Introspector, opts ...Option) (*Output, error) {
	c, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	g, err := NewGraph(c, schema, types)
	if err != nil {
		return nil, err
	}
	return g.Gen()
}

// Gen renders every document of the graph. Nothing is produced when any
// model fails to classify, resolve or name.
func (g *Graph) Gen() (*Output, error) {
	e, err := g.newEmitter()
	if err != nil {
		return nil, err
	}
	for _, t := range e.tables {
		for _, ent := range t.Filter(ClassRelation) {
			g.Logger.Debugw("resolved relation", "plan", describe(ent.Relation))
		}
	}
	out := &Output{}
	if out.Core, err = e.core(); err != nil {
		return nil, err
	}
	if out.Scaffolds, err = e.scaffolds(); err != nil {
		return nil, err
	}
	if g.Service || g.SDL {
		table, err := g.ServiceTable()
		if err != nil {
			return nil, err
		}
		if out.Service, err = e.service(table); err != nil {
			return nil, err
		}
		if g.SDL {
			if out.SDL, err = e.sdl(table); err != nil {
				return nil, err
			}
		}
	}
	g.Logger.Infow("generated repositories",
		"models", len(e.tables),
		"pagination", g.Pagination,
		"service", out.Service != nil,
		"sdl", out.SDL != nil,
	)
	return out, nil
}

// Write generates the documents of the graph and persists them in the
// configured target directory.
func (g *Graph) Write(ctx context.Context) (*Output, error) {
	if g.Target == "" {
		return nil, NewConfigError("Target", nil, "missing target directory in config")
	}
	out, err := g.Gen()
	if err != nil {
		return nil, err
	}
	w := NewWriter(g.Target).WithWorkers(g.Workers).WithLogger(g.Logger)
	if err := w.Write(ctx, out); err != nil {
		return nil, err
	}
	m := w.Metrics()
	g.Logger.Infow("wrote repositories", "dir", g.Target, "written", m.FilesWritten, "kept", m.FilesSkipped, "bytes", m.TotalBytes)
	return out, nil
}
