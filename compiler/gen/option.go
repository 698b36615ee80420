package gen

import (
	"errors"
	"go/token"

	"go.uber.org/zap"
)

// Option configures code generation.
type Option func(*Config) error

// WithPagination toggles cursor pagination for list relations and the
// top-level list query.
func WithPagination(enabled bool) Option {
	return func(c *Config) error {
		c.Pagination = enabled
		return nil
	}
}

// WithHeader sets the file header comment.
// The header is added at the top of each always-regenerated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithPackage sets the name of the generated package.
// For example: "repository".
func WithPackage(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		if !token.IsIdentifier(name) {
			return NewConfigError("Package", name, "not a valid package name")
		}
		c.Package = name
		return nil
	}
}

// WithRuntimePackage sets the import path of the runtime support package.
// For example: "github.com/syssam/repogen".
func WithRuntimePackage(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return NewConfigError("RuntimePackage", nil, "runtime package cannot be empty")
		}
		c.RuntimePackage = path
		return nil
	}
}

// WithService enables the service table document.
func WithService(enabled bool) Option {
	return func(c *Config) error {
		c.Service = enabled
		return nil
	}
}

// WithSDL enables the GraphQL SDL rendering of the service table.
// It implies WithService(true).
func WithSDL(enabled bool) Option {
	return func(c *Config) error {
		c.SDL = enabled
		if enabled {
			c.Service = true
		}
		return nil
	}
}

// WithTarget sets the output directory.
// The directory where generated code will be written.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithWorkers bounds the number of files written concurrently.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "workers must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithLogger sets the logger receiving generation events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l.Sugar()
		return nil
	}
}

// ApplyAll applies every option, including the ones after a failing option,
// and returns the joined errors.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
// Pagination is enabled and the default package, runtime package and
// header are set before the options run. Every invalid option is reported.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Pagination:     true,
		Package:        DefaultPackage,
		RuntimePackage: DefaultRuntimePackage,
		Header:         DefaultHeader,
	}
	if err := c.ApplyAll(opts...); err != nil {
		return nil, err
	}
	c.defaults()
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
