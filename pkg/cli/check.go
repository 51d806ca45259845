package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nixbump/pkg/cli/config"
	"github.com/m-mizutani/nixbump/pkg/infra/sources"
	"github.com/m-mizutani/nixbump/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdCheck() *cli.Command {
	var (
		fileCfg   config.File
		targetCfg config.Target
		githubCfg config.GitHub
	)

	var flags []cli.Flag
	flags = append(flags, fileCfg.Flags()...)
	flags = append(flags, targetCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)

	return &cli.Command{
		Name:  "check",
		Usage: "Report whether upstream has a release newer than sources.json, without changing anything",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := fileCfg.Load(); err != nil {
				return err
			}
			target, err := targetCfg.Resolve(c, &fileCfg)
			if err != nil {
				return err
			}

			githubClient, err := newGitHubClient(ctx, &githubCfg)
			if err != nil {
				return err
			}

			// Check never touches external tools
			uc := usecase.NewUpdate(target, githubClient, usecase.Tools{}, sources.NewFileStore(target.SourcesPath()))

			result, err := uc.Check(ctx)
			if err != nil {
				return goerr.Wrap(err, "check failed", goerr.V("repo", target.FullName()))
			}

			printCheckSummary(c.Root().Writer, result)
			return nil
		},
	}
}
