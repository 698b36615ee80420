package commands

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"
)

// precompile runs the schema-compilation command line, if any. The line is
// split with shell quoting rules but not run through a shell.
func precompile(ctx context.Context, line string, log *zap.SugaredLogger) error {
	args, err := shellquote.Split(line)
	if err != nil {
		return errors.Wrapf(err, "failed to parse precompile command %q", line)
	}
	if len(args) == 0 {
		return nil
	}

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	log.Infow("running precompile", "command", args[0], "args", args[1:])
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(output.String()); msg != "" {
			return errors.Wrapf(err, "precompile %s failed: %s", args[0], msg)
		}
		return errors.Wrapf(err, "precompile %s failed", args[0])
	}
	log.Debugw("precompile finished", "output", output.String())
	return nil
}
