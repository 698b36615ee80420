// testgen renders the repositories of a small built-in schema to stdout
// without touching the filesystem.
//
//	go run ./compiler/gen/cmd/testgen [-pagination=false] [-file schema.graphql]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/syssam/repogen/compiler/gen"
	"github.com/syssam/repogen/compiler/introspect"
	"github.com/syssam/repogen/compiler/load"
)

// A user owning posts, and groups of users without a join model.
const schemaDoc = `
models:
  - name: User
    fields:
      - {name: id, kind: scalar, type: Int, isRequired: true, isId: true}
      - {name: name, kind: scalar, type: String, isRequired: true}
      - {name: password, kind: scalar, type: String, isRequired: true, documentation: "@hide"}
      - {name: posts, kind: relation, type: Post, isList: true, relationName: PostToUser}
      - {name: groups, kind: relation, type: Group, isList: true, relationName: GroupToUser}
  - name: Post
    fields:
      - {name: id, kind: scalar, type: Int, isRequired: true, isId: true}
      - {name: title, kind: scalar, type: String, isRequired: true}
      - {name: authorId, kind: scalar, type: Int, isRequired: true}
      - {name: author, kind: relation, type: User, isRequired: true, relationName: PostToUser,
         relationFromFields: [authorId], relationToFields: [id]}
  - name: Group
    fields:
      - {name: id, kind: scalar, type: Int, isRequired: true, isId: true}
      - {name: name, kind: scalar, type: String, isRequired: true}
      - {name: users, kind: relation, type: User, isList: true, relationName: GroupToUser}
`

const typesDoc = `
models:
  User: {id: int, name: string, password: string}
  Post: {id: int, title: string, authorId: int}
  Group: {id: int, name: string}
`

func main() {
	paginate := flag.Bool("pagination", true, "cursor pagination for list relations")
	file := flag.String("file", gen.CoreFile, "document to print")
	flag.Parse()

	if err := run(*paginate, *file); err != nil {
		fmt.Fprintf(os.Stderr, "testgen: %v\n", err)
		os.Exit(1)
	}
}

func run(paginate bool, file string) error {
	schema, err := load.UnmarshalSchema([]byte(schemaDoc))
	if err != nil {
		return err
	}
	types, err := introspect.ParseTable([]byte(typesDoc))
	if err != nil {
		return err
	}
	out, err := gen.Generate(schema, types, gen.WithPagination(paginate), gen.WithSDL(true))
	if err != nil {
		return err
	}

	table, err := gen.BuildServiceTable([]string{"User", "Post", "Group"}, paginate)
	if err != nil {
		return err
	}
	fmt.Println("Service operations:")
	for _, name := range table.Names() {
		op, _ := table.Lookup(name)
		fmt.Printf("  %-12s %s.%s\n", name, op.Model, op.Method)
	}

	docs := append(out.Generated(), out.Scaffolds...)
	fmt.Println("\nDocuments:")
	for _, f := range docs {
		fmt.Printf("  %-20s %6d bytes\n", f.Name, len(f.Content))
	}
	for _, f := range docs {
		if f.Name == file {
			fmt.Printf("\n--- %s ---\n%s", f.Name, f.Content)
			return nil
		}
	}
	return fmt.Errorf("no document named %q", file)
}
