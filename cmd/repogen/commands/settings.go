package commands

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/syssam/repogen/compiler/gen"
	"github.com/syssam/repogen/compiler/introspect"
)

// Settings is the CLI configuration, merged from the config file, the
// environment and flags.
type Settings struct {
	// Schema is the path of the compiled data-model document.
	Schema string `mapstructure:"schema"`
	// Types is the path of a pre-serialized type lookup table.
	Types string `mapstructure:"types"`
	// ClientPackage is a package pattern type-checked for the client types
	// when Types is not set.
	ClientPackage string `mapstructure:"client_package"`
	// Out is the output directory.
	Out            string `mapstructure:"out"`
	Package        string `mapstructure:"package"`
	RuntimePackage string `mapstructure:"runtime_package"`
	Pagination     bool   `mapstructure:"pagination"`
	Service        bool   `mapstructure:"service"`
	SDL            bool   `mapstructure:"sdl"`
	// Precompile is a command line run before the schema is loaded.
	Precompile string `mapstructure:"precompile"`
	Workers    int    `mapstructure:"workers"`
}

// settingFlags maps config keys to flag names.
var settingFlags = map[string]string{
	"schema":          "schema",
	"types":           "types",
	"client_package":  "client-package",
	"out":             "out",
	"package":         "package",
	"runtime_package": "runtime-package",
	"pagination":      "pagination",
	"service":         "service",
	"sdl":             "sdl",
	"precompile":      "precompile",
	"workers":         "workers",
}

func bindSettings(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("schema", "", "compiled data-model document (JSON or YAML)")
	flags.String("types", "", "type lookup table of the client models")
	flags.String("client-package", "", "client package pattern to type-check instead of --types")
	flags.StringP("out", "o", gen.DefaultPackage, "output directory")
	flags.String("package", gen.DefaultPackage, "generated package name")
	flags.String("runtime-package", gen.DefaultRuntimePackage, "import path of the runtime package")
	flags.Bool("pagination", true, "cursor pagination for list relations")
	flags.Bool("service", false, "emit the service table")
	flags.Bool("sdl", false, "emit the GraphQL SDL (implies --service)")
	flags.String("precompile", "", "command run before loading the schema")
	flags.Int("workers", 0, "concurrent file writes (default GOMAXPROCS)")
	for key, name := range settingFlags {
		// Lookup cannot fail for the flags declared above.
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}

// LoadSettings reads the config file at path, or ./repogen.* when path is
// empty, and merges it with REPOGEN_* environment variables and the flags
// bound to v.
func LoadSettings(v *viper.Viper, path string) (*Settings, error) {
	v.SetEnvPrefix("REPOGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("repogen")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config")
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	switch {
	case s.Schema == "":
		return errors.WithHint(errors.New("no schema configured"), "set schema in repogen.yaml or pass --schema")
	case s.Types == "" && s.ClientPackage == "":
		return errors.WithHint(errors.New("no type source configured"), "set types or client_package")
	case s.Types != "" && s.ClientPackage != "":
		return errors.New("types and client_package are mutually exclusive")
	case s.Out == "":
		return errors.New("no output directory configured")
	case s.Workers < 0:
		return errors.Newf("workers must be positive, got %d", s.Workers)
	}
	return nil
}

// Options returns the generator options of the settings.
func (s *Settings) Options(log *zap.Logger) []gen.Option {
	opts := []gen.Option{
		gen.WithPagination(s.Pagination),
		gen.WithService(s.Service),
		gen.WithSDL(s.SDL),
		gen.WithTarget(s.Out),
		gen.WithLogger(log),
	}
	if s.Package != "" {
		opts = append(opts, gen.WithPackage(s.Package))
	}
	if s.RuntimePackage != "" {
		opts = append(opts, gen.WithRuntimePackage(s.RuntimePackage))
	}
	if s.Workers > 0 {
		opts = append(opts, gen.WithWorkers(s.Workers))
	}
	return opts
}

// Introspector returns the type source of the settings.
func (s *Settings) Introspector(ctx context.Context) (introspect.Introspector, error) {
	if s.Types != "" {
		t, err := introspect.ReadTable(s.Types)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read type table %s", s.Types)
		}
		return t, nil
	}
	p, err := introspect.LoadPackages(ctx, ".", s.ClientPackage)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load client package %s", s.ClientPackage)
	}
	return p, nil
}

// Watched returns the input files a watch session reacts to.
func (s *Settings) Watched() []string {
	files := []string{s.Schema}
	if s.Types != "" {
		files = append(files, s.Types)
	}
	return files
}
