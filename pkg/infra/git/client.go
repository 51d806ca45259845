package git

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nixbump/pkg/domain/interfaces"
	"github.com/m-mizutani/nixbump/pkg/domain/model"
)

// Client wraps the git executable
type Client struct {
	runner interfaces.CommandRunner
	bin    string
}

// NewClient creates a git client. An empty bin defaults to "git".
func NewClient(runner interfaces.CommandRunner, bin string) *Client {
	if bin == "" {
		bin = "git"
	}
	return &Client{
		runner: runner,
		bin:    bin,
	}
}

// CloneTag shallow-clones a single tag of url into dest
func (c *Client) CloneTag(ctx context.Context, url, tag, dest string) error {
	if _, err := c.runner.Run(ctx, &model.Command{
		Name: c.bin,
		Args: []string{"clone", "--depth", "1", "--branch", tag, url, dest},
	}); err != nil {
		return goerr.Wrap(err, "failed to clone tag",
			goerr.V("url", url),
			goerr.V("tag", tag),
			goerr.V("dest", dest),
		)
	}
	return nil
}
