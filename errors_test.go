package repogen_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/repogen"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := repogen.NewNotFoundError("User")
		assert.Equal(t, "repogen: User not found", err.Error())
	})

	t.Run("Error with filter", func(t *testing.T) {
		err := repogen.NewNotFoundErrorWhere("User", repogen.Where{"id": 1})
		assert.Equal(t, "repogen: User not found (where=map[id:1])", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := repogen.NewNotFoundError("Post")
		assert.True(t, errors.Is(err, repogen.ErrNotFound))
		assert.Equal(t, repogen.CodeNotFound, err.Code())
		assert.Equal(t, 404, err.StatusCode())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := repogen.NewNotFoundError("Comment")
		assert.True(t, repogen.IsNotFound(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, repogen.IsNotFound(wrapped))

		// Sentinel error
		assert.True(t, repogen.IsNotFound(repogen.ErrNotFound))

		assert.False(t, repogen.IsNotFound(errors.New("other error")))
		assert.False(t, repogen.IsNotFound(nil))
	})
}

func TestMutationError(t *testing.T) {
	cause := errors.New("unique violation")
	tests := []struct {
		op   string
		code string
	}{
		{"create", repogen.CodeCreate},
		{"update", repogen.CodeUpdate},
		{"upsert", repogen.CodeUpsert},
		{"delete", repogen.CodeDelete},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			err := repogen.NewMutationError("User", tt.op, cause)
			assert.Equal(t, "repogen: "+tt.op+" User: unique violation", err.Error())
			assert.Equal(t, tt.code, err.Code())
			assert.Equal(t, 500, err.StatusCode())
			assert.ErrorIs(t, err, cause)
			assert.True(t, repogen.IsMutationError(fmt.Errorf("wrap: %w", err)))
		})
	}
	assert.False(t, repogen.IsMutationError(nil))
}

func TestInvalidInputError(t *testing.T) {
	err := repogen.NewInvalidInputError("field %q is unknown", "foo")
	assert.Equal(t, `repogen: invalid input: field "foo" is unknown`, err.Error())
	assert.ErrorIs(t, err, repogen.ErrInvalidInput)
	assert.Equal(t, repogen.CodeInvalidInput, err.Code())
	assert.Equal(t, 400, err.StatusCode())
}

func TestRelationError(t *testing.T) {
	err := repogen.NewRelationError("Post", "author", "authorId")
	assert.Equal(t, `repogen: relation Post.author requires field "authorId" to be present`, err.Error())
	assert.ErrorIs(t, err, repogen.ErrRequiredRelation)
	assert.True(t, repogen.IsRelationError(fmt.Errorf("wrap: %w", err)))
	assert.False(t, repogen.IsRelationError(errors.New("other")))
	assert.False(t, repogen.IsRelationError(nil))
}
