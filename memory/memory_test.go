package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/repogen"
	"github.com/syssam/repogen/memory"
)

func TestEqual(t *testing.T) {
	one := 1
	tests := map[string]struct {
		a, b any
		want bool
	}{
		"same int":             {1, 1, true},
		"int and int64":        {1, int64(1), true},
		"int and float":        {2, 2.0, true},
		"uint and int":         {uint8(3), 3, true},
		"fraction":             {1, 1.5, false},
		"strings":              {"a", "a", true},
		"number and string":    {1, "1", false},
		"pointer is not value": {&one, 1, false},
		"nil and nil":          {nil, nil, true},
		"nil and zero":         {nil, 0, false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, memory.Equal(tt.a, tt.b))
		})
	}
}

func TestTableFind(t *testing.T) {
	ctx := context.Background()
	src := memory.NewSource()
	tbl := src.Table("Post")
	tbl.Insert(
		repogen.Record{"id": 1, "title": "b", "authorId": 1},
		repogen.Record{"id": 2, "title": "a", "authorId": 2},
		repogen.Record{"id": 3, "title": "c", "authorId": 1},
	)
	assert.Same(t, tbl, src.Delegate("Post"))

	rec, err := tbl.FindFirst(ctx, repogen.FindArgs{Where: repogen.Where{"authorId": int64(2)}})
	require.NoError(t, err)
	assert.Equal(t, 2, rec["id"])

	rec, err = tbl.FindFirst(ctx, repogen.FindArgs{Where: repogen.Where{"authorId": 9}})
	require.NoError(t, err)
	assert.Nil(t, rec)

	recs, err := tbl.FindMany(ctx, repogen.FindArgs{OrderBy: []repogen.Order{repogen.Asc("title")}})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []any{2, 1, 3}, []any{recs[0]["id"], recs[1]["id"], recs[2]["id"]})

	take := 1
	recs, err = tbl.FindMany(ctx, repogen.FindArgs{Cursor: repogen.Where{"id": 1}, Skip: 1, Take: &take})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 2, recs[0]["id"])

	back := -2
	recs, err = tbl.FindMany(ctx, repogen.FindArgs{Cursor: repogen.Where{"id": 3}, Skip: 1, Take: &back})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 1, recs[0]["id"])

	n, err := tbl.Count(ctx, repogen.Where{"authorId": 1})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTableLinks(t *testing.T) {
	ctx := context.Background()
	tbl := memory.NewSource().Table("Post")
	_, err := tbl.Create(ctx, repogen.Record{"id": 1, "tags": repogen.Connect{"id": 7}})
	require.NoError(t, err)
	_, err = tbl.Update(ctx, repogen.Where{"id": 1}, repogen.Record{"tags": repogen.Connect{"id": 8}})
	require.NoError(t, err)
	_, err = tbl.Create(ctx, repogen.Record{"id": 2})
	require.NoError(t, err)

	for _, tag := range []int{7, 8} {
		recs, err := tbl.FindMany(ctx, repogen.FindArgs{Where: repogen.Where{"tags": repogen.Some{"id": tag}}})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, 1, recs[0]["id"])
	}
	n, err := tbl.Count(ctx, repogen.Where{"tags": repogen.Some{"id": 9}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTableMutations(t *testing.T) {
	ctx := context.Background()
	tbl := memory.NewSource().Table("User")
	tbl.Insert(repogen.Record{"id": 1, "name": "ada"})

	rec, err := tbl.Upsert(ctx, repogen.Where{"id": 1}, repogen.Record{"id": 1}, repogen.Record{"name": "grace"})
	require.NoError(t, err)
	assert.Equal(t, "grace", rec["name"])

	rec, err = tbl.Delete(ctx, repogen.Where{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, 1, rec["id"])
	assert.Empty(t, tbl.Records())

	_, err = tbl.Update(ctx, repogen.Where{"id": 1}, repogen.Record{})
	assert.ErrorIs(t, err, memory.ErrNoRecord)
	_, err = tbl.Delete(ctx, repogen.Where{"id": 1})
	assert.ErrorIs(t, err, memory.ErrNoRecord)

	failure := errors.New("read only")
	tbl.FailWith(failure)
	_, err = tbl.Create(ctx, repogen.Record{"id": 2})
	assert.ErrorIs(t, err, failure)
	tbl.FailWith(nil)
	_, err = tbl.Create(ctx, repogen.Record{"id": 2})
	require.NoError(t, err)
}
