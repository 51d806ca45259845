package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nixbump/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func cmdUpdate() *cli.Command {
	var (
		fileCfg   config.File
		targetCfg config.Target
		githubCfg config.GitHub
		toolsCfg  config.Tools
		updateCfg config.Update
		slackCfg  config.Slack
	)

	var flags []cli.Flag
	flags = append(flags, fileCfg.Flags()...)
	flags = append(flags, targetCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, toolsCfg.Flags()...)
	flags = append(flags, updateCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "update",
		Aliases: []string{"u"},
		Usage:   "Regenerate sources.json and the lockfile if upstream has a new release",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if err := fileCfg.Load(); err != nil {
				return err
			}
			target, err := targetCfg.Resolve(c, &fileCfg)
			if err != nil {
				return err
			}
			toolsCfg.Resolve(c, &fileCfg)

			logger.Info("Starting update",
				slog.String("repo", target.FullName()),
				slog.String("dir", target.Dir),
			)

			uc, err := newUpdateUseCase(ctx, target, &githubCfg, &toolsCfg, &updateCfg, &slackCfg)
			if err != nil {
				return err
			}

			result, err := uc.Update(ctx)
			if err != nil {
				return goerr.Wrap(err, "update failed", goerr.V("repo", target.FullName()))
			}

			return printUpdateSummary(c.Root().Writer, target, result)
		},
	}
}
