package gen

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/syssam/repogen/compiler/introspect"
	"github.com/syssam/repogen/compiler/load"
)

// bookshelf combines the blog with an optional pointer-typed editor and the
// implicit many-to-many library.
func bookshelf() (*load.Schema, typeMap) {
	schema, types := blog()
	post := schema.Models[1]
	post.Fields = append(post.Fields,
		scalar("editorId", "Int", false),
		owning("editor", "User", "Editor", false, []string{"editorId"}, []string{"id"}),
	)
	schema.Models[0].Fields = append(schema.Models[0].Fields, relation("edited", "Post", "Editor", true, false))
	types["Post"]["editorId"] = introspect.MustParse("*int")

	lib, libTypes := library()
	schema.Models = append(schema.Models, lib.Models...)
	for model, fields := range libTypes {
		types[model] = fields
	}
	return schema, types
}

// generatedTest runs inside the generated package against an in-memory
// source.
const generatedTest = `package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/repogen"
	"github.com/syssam/repogen/memory"
)

func ptr[T any](v T) *T { return &v }

func seed(t *testing.T) *memory.Source {
	t.Helper()
	src := memory.NewSource()
	Source = src
	src.Table("User").Insert(
		repogen.Record{"id": 1, "email": "ada@example.com", "password": "a"},
		repogen.Record{"id": 2, "email": "grace@example.com", "password": "g"},
	)
	src.Table("Post").Insert(
		repogen.Record{"id": 1, "title": "one", "authorId": 1},
		repogen.Record{"id": 2, "title": "two", "authorId": 1},
		repogen.Record{"id": 3, "title": "three", "authorId": 1},
		repogen.Record{"id": 4, "title": "four", "authorId": 2, "editorId": 1},
	)
	return src
}

func TestRequiredRelation(t *testing.T) {
	ctx := context.Background()
	seed(t)

	post, err := PostObjects.Get(ctx, repogen.Where{"id": 4})
	require.NoError(t, err)
	author, err := post.Author(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", author.Email)
	assert.Equal(t, "g", author._password)

	orphan, err := NewPost(map[string]any{"id": 9, "title": "orphan"})
	require.NoError(t, err)
	_, err = orphan.Author(ctx, nil)
	assert.True(t, repogen.IsRelationError(err))
	_, err = orphan.AddAuthor(ctx, &PostAuthorInput{Email: ptr("x@example.com")})
	assert.True(t, repogen.IsRelationError(err))
}

func TestOptionalRelation(t *testing.T) {
	ctx := context.Background()
	src := seed(t)

	post, err := PostObjects.Get(ctx, repogen.Where{"id": 1})
	require.NoError(t, err)
	editor, err := post.Editor(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, editor, "absent join value")

	post, err = PostObjects.Get(ctx, repogen.Where{"id": 4})
	require.NoError(t, err)
	editor, err = post.Editor(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, editor)
	assert.Equal(t, 1, editor.ID)

	dangling, err := NewPost(map[string]any{"id": 10, "editorId": 42})
	require.NoError(t, err)
	editor, err = dangling.Editor(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, editor, "missing related object")

	created, err := dangling.AddEditor(ctx, &PostEditorInput{Email: ptr("new@example.com"), Password: ptr("n")})
	require.NoError(t, err)
	assert.Equal(t, 42, created.ID)
	users := src.Table("User").Records()
	assert.Equal(t, 42, users[len(users)-1]["id"], "join values are stored by value")

	_, err = post.AddEditor(ctx, nil)
	require.NoError(t, err)
	_, err = (&Post{}).AddEditor(ctx, nil)
	assert.True(t, repogen.IsRelationError(err))
}

func TestInverseRelation(t *testing.T) {
	ctx := context.Background()
	seed(t)

	user, err := UserObjects.Get(ctx, repogen.Where{"id": 1})
	require.NoError(t, err)

	page, err := user.Posts(ctx, &repogen.Pagination{First: ptr(2)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	require.Len(t, page.Edges, 2)
	assert.True(t, page.PageInfo.HasNextPage)

	next, err := user.Posts(ctx, &repogen.Pagination{First: ptr(2), After: page.PageInfo.EndCursor}, nil)
	require.NoError(t, err)
	require.Len(t, next.Edges, 1)
	assert.Equal(t, 3, next.Edges[0].Node.ID)
	assert.False(t, next.PageInfo.HasNextPage)

	two, err := user.Post(ctx, repogen.Where{"title": "two"})
	require.NoError(t, err)
	assert.Equal(t, 2, two.ID)
	_, err = user.Post(ctx, repogen.Where{"title": "four"})
	assert.True(t, repogen.IsNotFound(err), "other users' posts are out of reach")

	added, err := user.AddPosts(ctx, &UserPostsInput{ID: ptr(5), Title: ptr("five")})
	require.NoError(t, err)
	assert.Equal(t, 1, added._authorId)
	all, err := user.Posts(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, all.TotalCount)

	renamed, err := user.UpdatePosts(ctx, &UserPostsInput{Title: ptr("cinq")}, repogen.Where{"id": 5})
	require.NoError(t, err)
	assert.Equal(t, "cinq", renamed.Title)
	_, err = user.DeletePosts(ctx, repogen.Where{"id": 5})
	require.NoError(t, err)

	edited, err := user.Edited(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, edited.Nodes(), 1)
	assert.Equal(t, 4, edited.Nodes()[0].ID)
}

func TestImplicitRelation(t *testing.T) {
	ctx := context.Background()
	src := seed(t)
	src.Table("Author").Insert(
		repogen.Record{"id": 1, "name": "Le Guin"},
		repogen.Record{"id": 2, "name": "Tolkien", "books": []repogen.Record{{"id": 1}}},
	)

	author, err := AuthorObjects.Get(ctx, repogen.Where{"id": 1})
	require.NoError(t, err)
	book, err := author.AddBooks(ctx, &AuthorBooksInput{ID: ptr(1), Title: ptr("Earthsea")})
	require.NoError(t, err)
	assert.Equal(t, "Earthsea", book._title)

	books, err := author.Books(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, books.Nodes(), 1)
	assert.Equal(t, 1, books.Nodes()[0].ID)

	authors, err := book.Authors(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, authors.Nodes(), 1)
	assert.Equal(t, "Tolkien", authors.Nodes()[0].Name)

	other, err := AuthorObjects.Get(ctx, repogen.Where{"id": 2})
	require.NoError(t, err)
	none, err := other.Books(ctx, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, none.TotalCount)
}
`

func TestGeneratedCodeRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and runs the generated package")
	}
	gobin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go command not found")
	}
	schema, types := bookshelf()
	out := generate(t, schema, types)

	// The package lives inside the module so it can import the runtime.
	require.NoError(t, os.MkdirAll("testdata", 0o755))
	dir, err := os.MkdirTemp("testdata", "repository")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	require.NoError(t, NewWriter(dir).Write(ctx, out))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "repository_test.go"), []byte(generatedTest), 0o644))

	cmd := exec.CommandContext(ctx, gobin, "test", "-count=1", "./"+filepath.ToSlash(dir))
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))
}
