package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewRootCmd returns the repogen command tree. Every invocation gets its own
// viper instance so commands can be executed repeatedly in one process.
func NewRootCmd() *cobra.Command {
	return newRootCmd(viper.New())
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:   "repogen",
		Short: "Generate typed Go repositories from a data-model schema",
		Long: `repogen reads a compiled data-model schema and the Go types of the
generated database client and emits one repository per model: typed
relation accessors, input structs and create/update/delete helpers.

Settings are read from ./repogen.yaml (or .toml, .json), from REPOGEN_*
environment variables and from flags, flags taking precedence.

Examples:
  repogen generate                         # use ./repogen.yaml
  repogen generate --schema dmmf.json --types types.yaml --out repository
  repogen watch prisma/schema.prisma       # regenerate on change`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ./repogen.{yaml,toml,json})")
	flags.BoolP("verbose", "v", false, "development logging")
	bindSettings(flags, v)

	root.AddCommand(newGenerateCmd(v))
	root.AddCommand(newWatchCmd(v))
	return root
}

// Execute runs the command tree, cancelling on SIGINT and SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// newLogger returns a development logger when verbose, a quiet console
// production logger otherwise.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	return config.Build()
}

// setup loads the settings and the logger shared by all subcommands.
func setup(cmd *cobra.Command, v *viper.Viper) (*Settings, *zap.Logger, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, nil, err
	}
	s, err := LoadSettings(v, path)
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(verbose)
	if err != nil {
		return nil, nil, err
	}
	return s, log, nil
}
