package gen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/repogen/compiler/introspect"
)

// partial answers Fields with a subset of the fields and FieldType with the
// rest, like a client whose field list omits inherited members.
type partial struct {
	fields map[string]introspect.TypeExpr
	extra  map[string]introspect.TypeExpr
}

func (p partial) Fields(string) (map[string]introspect.TypeExpr, error) {
	return p.fields, nil
}

func (p partial) FieldType(model, field string) (introspect.TypeExpr, error) {
	if t, ok := p.extra[field]; ok {
		return t, nil
	}
	return introspect.TypeExpr{}, introspect.ErrFieldNotFound
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "plain", ClassPlain.String())
	assert.Equal(t, "hidden", ClassHidden.String())
	assert.Equal(t, "relation", ClassRelation.String())
	assert.Equal(t, "invalid", Class(0).String())
}

func TestClassify(t *testing.T) {
	schema, types := blog()
	g := newGraph(t, schema, types)

	user, err := g.Classify("User")
	require.NoError(t, err)
	require.Len(t, user.Entries, 4)
	classes := make(map[string]Class)
	for _, e := range user.Entries {
		classes[e.Field.Name] = e.Class
	}
	assert.Equal(t, map[string]Class{
		"id":       ClassPlain,
		"email":    ClassPlain,
		"password": ClassHidden,
		"posts":    ClassRelation,
	}, classes)
	assert.Equal(t, []string{"password"}, user.Hidden())
	assert.Equal(t, "_password", user.Entry("password").GoName())
	assert.Equal(t, "ID", user.Entry("id").GoName())
	assert.Equal(t, "int", user.Entry("id").Type.String())
	assert.Nil(t, user.Entry("missing"))

	posts := user.Entry("posts")
	require.NotNil(t, posts.Relation)
	assert.True(t, posts.Type.IsZero())
	assert.Equal(t, "Post", posts.Relation.Target.Name)

	post, err := g.Classify("Post")
	require.NoError(t, err)
	assert.Equal(t, []string{"authorId"}, post.Hidden())
	assert.Len(t, post.Filter(ClassPlain), 2)
	assert.Len(t, post.Filter(ClassRelation), 1)
}

func TestClassifyAll(t *testing.T) {
	schema, types := library()
	g := newGraph(t, schema, types)
	tables, err := g.ClassifyAll()
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "Author", tables[0].Model.Name)
	assert.Empty(t, tables[0].Hidden())
	assert.Equal(t, []string{"title"}, tables[1].Hidden())
}

func TestClassifyFallback(t *testing.T) {
	schema, _ := blog()
	g, err := NewGraph(MustNewConfig(), schema, partial{
		fields: map[string]introspect.TypeExpr{"id": introspect.MustParse("int")},
		extra: map[string]introspect.TypeExpr{
			"email":    introspect.MustParse("string"),
			"password": introspect.MustParse("[]byte"),
		},
	})
	require.NoError(t, err)
	user, err := g.Classify("User")
	require.NoError(t, err)
	assert.Equal(t, "[]byte", user.Entry("password").Type.String())
	assert.Equal(t, ClassHidden, user.Entry("password").Class)
}

func TestClassifyMismatch(t *testing.T) {
	t.Run("model", func(t *testing.T) {
		schema, types := blog()
		delete(types, "Post")
		g := newGraph(t, schema, types)

		_, err := g.Classify("Post")
		require.Error(t, err)
		assert.True(t, IsIntrospectionError(err))
		assert.True(t, errors.Is(err, ErrIntrospectionMismatch))
		assert.True(t, errors.Is(err, introspect.ErrModelNotFound))
		var ierr *IntrospectionError
		require.True(t, errors.As(err, &ierr))
		assert.Equal(t, "Post", ierr.Model)
		assert.Empty(t, ierr.Field)

		// Classification of the whole schema fails as well.
		_, err = g.ClassifyAll()
		assert.True(t, IsIntrospectionError(err))
	})

	t.Run("field", func(t *testing.T) {
		schema, types := blog()
		delete(types["Post"], "title")
		g := newGraph(t, schema, types)

		_, err := g.Classify("Post")
		require.Error(t, err)
		assert.True(t, errors.Is(err, introspect.ErrFieldNotFound))
		var ierr *IntrospectionError
		require.True(t, errors.As(err, &ierr))
		assert.Equal(t, "Post", ierr.Model)
		assert.Equal(t, "title", ierr.Field)
	})

	t.Run("relation fields are not introspected", func(t *testing.T) {
		schema, types := blog()
		g := newGraph(t, schema, types)
		_, ok := types["User"]["posts"]
		require.False(t, ok)
		_, err := g.Classify("User")
		assert.NoError(t, err)
	})
}
