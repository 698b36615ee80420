package load

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	t.Run("DMMF JSON", func(t *testing.T) {
		s, err := ReadFile("testdata/blog.json")
		require.NoError(t, err)
		require.Len(t, s.Models, 2)

		user := s.Model("User")
		require.NotNil(t, user)
		require.Len(t, user.Fields, 4)
		assert.True(t, user.Field("id").IsID)
		assert.True(t, user.Field("password").HasTag(TagHide))
		posts := user.Field("posts")
		assert.Equal(t, KindRelation, posts.Kind)
		assert.True(t, posts.IsList)
		assert.False(t, posts.Owning())
		assert.False(t, posts.Implicit())

		author := s.Model("Post").Field("author")
		assert.True(t, author.IsRelation())
		assert.True(t, author.Owning())
		assert.Equal(t, []string{"authorId"}, author.RelationFromFields)
		assert.Equal(t, []string{"id"}, author.RelationToFields)
	})

	t.Run("YAML", func(t *testing.T) {
		s, err := ReadFile("testdata/library.yaml")
		require.NoError(t, err)
		require.Len(t, s.Models, 2)
		books := s.Model("Author").Field("books")
		assert.True(t, books.Implicit())
		assert.True(t, s.Model("Book").Field("title").HasTag(TagHide))
		assert.True(t, s.Model("Book").Field("title").IsScalar())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile("testdata/missing.json")
		require.Error(t, err)
	})
}

func TestUnmarshalSchema(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "empty", input: `{}`, wantErr: "no models"},
		{name: "bad kind", input: `{"models":[{"name":"A","fields":[{"name":"x","kind":"blob"}]}]}`, wantErr: `unknown field kind "blob"`},
		{name: "missing kind", input: `{"models":[{"name":"A","fields":[{"name":"x","type":"Int"}]}]}`, wantErr: "A.x: missing kind"},
		{name: "null field", input: `{"models":[{"name":"A","fields":[null]}]}`, wantErr: "null field"},
		{name: "yaml", input: "models:\n  - name: A\n    fields:\n      - {name: x, kind: enum, type: Role}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := UnmarshalSchema([]byte(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, KindEnum, s.Models[0].Fields[0].Kind)
		})
	}
}

func TestFieldTags(t *testing.T) {
	f := &Field{
		Name:          "secret",
		Annotations:   []string{"@hide", "internal"},
		Documentation: "Stored hashed. @sf-hide @deprecated",
	}
	assert.Equal(t, []string{TagHide, "internal", "deprecated"}, f.Tags())
	assert.True(t, f.HasTag("deprecated"))
	assert.False(t, f.HasTag("other"))
	assert.Empty(t, (&Field{}).Tags())

	doc := &Field{Documentation: "@hide\nOwned by ops@hide.io, see mail@deprecated.example"}
	assert.Equal(t, []string{TagHide}, doc.Tags())
}

func TestKind(t *testing.T) {
	for _, s := range []string{"scalar", "enum", "relation"} {
		k, err := ParseKind(s)
		require.NoError(t, err)
		assert.Equal(t, s, k.String())
	}
	k, err := ParseKind("object")
	require.NoError(t, err)
	assert.Equal(t, KindRelation, k)
	assert.Equal(t, "invalid", Kind(42).String())
}

func TestMarshalSchema(t *testing.T) {
	s, err := ReadFile("testdata/library.yaml")
	require.NoError(t, err)
	buf, err := MarshalSchema(s)
	require.NoError(t, err)
	assert.Contains(t, string(buf), `"kind": "relation"`)
	back, err := UnmarshalSchema(buf)
	require.NoError(t, err)
	assert.Equal(t, s, back)
}
