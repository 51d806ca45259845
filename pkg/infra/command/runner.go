package command

import (
	"bytes"
	"context"
	"os/exec"
	"unicode/utf8"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nixbump/pkg/domain/interfaces"
	"github.com/m-mizutani/nixbump/pkg/domain/model"
	"github.com/m-mizutani/nixbump/pkg/domain/types"
)

// maxStderr bounds how much stderr is attached to an error
const maxStderr = 2048

type runner struct{}

// NewRunner creates a CommandRunner backed by os/exec. Arguments are passed
// directly to the process without shell expansion.
func NewRunner() interfaces.CommandRunner {
	return &runner{}
}

// Run executes the command and waits for it to finish
func (r *runner) Run(ctx context.Context, cmd *model.Command) (*model.CommandResult, error) {
	logger := ctxlog.From(ctx)

	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = &stdout
	c.Stderr = &stderr

	logger.Debug("Running command", "command", cmd.String(), "dir", cmd.Dir)

	if err := c.Run(); err != nil {
		return nil, goerr.Wrap(err, "command failed",
			goerr.T(types.ErrTagCommand),
			goerr.V("command", cmd.String()),
			goerr.V("dir", cmd.Dir),
			goerr.V("stderr", truncate(stderr.String(), maxStderr)),
		)
	}

	return &model.CommandResult{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}, nil
}

// truncate keeps at most the last n bytes of s, starting on a rune boundary
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}
