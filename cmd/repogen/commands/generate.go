package commands

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/syssam/repogen/compiler/gen"
	"github.com/syssam/repogen/compiler/load"
)

func newGenerateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate the repositories once",
		Long: `Run the precompile command if any, load the schema and the client types,
and write the generated repositories to the output directory.

Always-regenerated files are replaced. Scaffolding files (client.go and one
file per model) are only created when absent, so hand edits survive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, log, err := setup(cmd, v)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck
			_, err = Generate(cmd.Context(), s, log)
			return err
		},
	}
}

// Generate runs one full generation pass for the given settings.
func Generate(ctx context.Context, s *Settings, log *zap.Logger) (*gen.Output, error) {
	if err := precompile(ctx, s.Precompile, log.Sugar()); err != nil {
		return nil, err
	}
	schema, err := load.ReadFile(s.Schema)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load schema")
	}
	types, err := s.Introspector(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := gen.NewConfig(s.Options(log)...)
	if err != nil {
		return nil, errors.Wrap(err, "invalid generator configuration")
	}
	g, err := gen.NewGraph(cfg, schema, types)
	if err != nil {
		return nil, errors.Wrap(err, "invalid schema")
	}
	out, err := g.Write(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate repositories")
	}
	return out, nil
}
