package gen

import (
	"runtime"

	"go.uber.org/zap"
)

// Defaults used by NewConfig.
const (
	DefaultPackage        = "repository"
	DefaultRuntimePackage = "github.com/syssam/repogen"
	DefaultHeader         = "Code generated by repogen. DO NOT EDIT."
)

// Config holds the global codegen configuration.
type Config struct {
	// Pagination makes list relations and the top-level list query use
	// cursor pagination (Paginate) instead of plain lists (Filter).
	Pagination bool
	// Package is the name of the generated Go package.
	Package string
	// RuntimePackage is the import path of the runtime support package the
	// generated code compiles against.
	RuntimePackage string
	// Header is the comment placed at the top of every always-regenerated file.
	Header string
	// Service enables the service table document.
	Service bool
	// SDL enables the GraphQL SDL rendering of the service table.
	SDL bool
	// Target is the output directory used by the Writer.
	Target string
	// Workers bounds the number of files written concurrently.
	Workers int
	// Logger receives progress events.
	Logger *zap.SugaredLogger
}

// defaults fills the zero settings of a config built without NewConfig.
func (c *Config) defaults() {
	if c.Package == "" {
		c.Package = DefaultPackage
	}
	if c.RuntimePackage == "" {
		c.RuntimePackage = DefaultRuntimePackage
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}
}
