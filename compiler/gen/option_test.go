package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWithHeader(t *testing.T) {
	t.Run("sets header", func(t *testing.T) {
		c := &Config{}
		err := WithHeader("Custom header")(c)

		require.NoError(t, err)
		assert.Equal(t, "Custom header", c.Header)
	})

	t.Run("empty header is allowed", func(t *testing.T) {
		c := &Config{Header: "existing"}
		err := WithHeader("")(c)

		require.NoError(t, err)
		assert.Equal(t, "", c.Header)
	})
}

func TestWithPagination(t *testing.T) {
	c := &Config{Pagination: true}
	require.NoError(t, WithPagination(false)(c))
	assert.False(t, c.Pagination)
	require.NoError(t, WithPagination(true)(c))
	assert.True(t, c.Pagination)
}

func TestWithPackage(t *testing.T) {
	t.Run("sets package", func(t *testing.T) {
		c := &Config{}
		err := WithPackage("models")(c)

		require.NoError(t, err)
		assert.Equal(t, "models", c.Package)
	})

	t.Run("empty package returns error", func(t *testing.T) {
		c := &Config{}
		err := WithPackage("")(c)

		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("invalid package returns error", func(t *testing.T) {
		c := &Config{}
		err := WithPackage("my-models")(c)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingConfig)
	})
}

func TestWithRuntimePackage(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithRuntimePackage("example.com/rt")(c))
	assert.Equal(t, "example.com/rt", c.RuntimePackage)
	assert.True(t, IsConfigError(WithRuntimePackage("")(c)))
}

func TestWithServiceAndSDL(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithService(true)(c))
	assert.True(t, c.Service)

	c = &Config{}
	require.NoError(t, WithSDL(true)(c))
	assert.True(t, c.SDL)
	assert.True(t, c.Service, "SDL implies the service table")

	require.NoError(t, WithSDL(false)(c))
	assert.False(t, c.SDL)
	assert.True(t, c.Service)
}

func TestWithTarget(t *testing.T) {
	t.Run("sets target directory", func(t *testing.T) {
		c := &Config{}
		err := WithTarget("./repository")(c)

		require.NoError(t, err)
		assert.Equal(t, "./repository", c.Target)
	})

	t.Run("empty target returns error", func(t *testing.T) {
		c := &Config{}
		err := WithTarget("")(c)

		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
}

func TestWithWorkers(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithWorkers(3)(c))
	assert.Equal(t, 3, c.Workers)
	assert.True(t, IsConfigError(WithWorkers(0)(c)))
}

func TestWithLogger(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithLogger(zap.NewExample())(c))
	assert.NotNil(t, c.Logger)
	assert.True(t, IsConfigError(WithLogger(nil)(c)))
}

func TestConfigApplyAll(t *testing.T) {
	t.Run("collects all errors", func(t *testing.T) {
		c := &Config{}
		err := c.ApplyAll(
			WithPackage(""),
			WithTarget(""),
			WithHeader("ok"),
		)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Package")
		assert.Contains(t, err.Error(), "Target")
		assert.Equal(t, "ok", c.Header)
	})

	t.Run("returns nil when all succeed", func(t *testing.T) {
		c := &Config{}
		err := c.ApplyAll(WithPackage("models"), WithTarget("./models"))
		assert.NoError(t, err)
	})
}

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := NewConfig()
		require.NoError(t, err)
		assert.True(t, c.Pagination)
		assert.Equal(t, DefaultPackage, c.Package)
		assert.Equal(t, DefaultRuntimePackage, c.RuntimePackage)
		assert.Equal(t, DefaultHeader, c.Header)
		assert.Positive(t, c.Workers)
		assert.NotNil(t, c.Logger)
	})

	t.Run("creates config with options", func(t *testing.T) {
		c, err := NewConfig(WithPagination(false), WithPackage("models"))
		require.NoError(t, err)
		assert.False(t, c.Pagination)
		assert.Equal(t, "models", c.Package)
	})

	t.Run("returns error on invalid option", func(t *testing.T) {
		c, err := NewConfig(WithPackage(""))
		require.Error(t, err)
		assert.Nil(t, c)
	})

	t.Run("reports every invalid option", func(t *testing.T) {
		_, err := NewConfig(WithPackage("1abc"), WithWorkers(0), WithPagination(false))
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
		assert.Contains(t, err.Error(), "Package")
		assert.Contains(t, err.Error(), "Workers")
	})

	t.Run("MustNewConfig panics", func(t *testing.T) {
		assert.Panics(t, func() { MustNewConfig(WithTarget("")) })
		assert.NotPanics(t, func() { MustNewConfig() })
	})
}
