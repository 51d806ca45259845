package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nixbump/pkg/cli/config"
	"github.com/m-mizutani/nixbump/pkg/domain/interfaces"
	"github.com/m-mizutani/nixbump/pkg/domain/model"
	"github.com/m-mizutani/nixbump/pkg/infra/command"
	"github.com/m-mizutani/nixbump/pkg/infra/git"
	githubinfra "github.com/m-mizutani/nixbump/pkg/infra/github"
	"github.com/m-mizutani/nixbump/pkg/infra/nix"
	slackinfra "github.com/m-mizutani/nixbump/pkg/infra/slack"
	"github.com/m-mizutani/nixbump/pkg/infra/sources"
	"github.com/m-mizutani/nixbump/pkg/usecase"
)

// newGitHubClient creates the REST client from configuration
func newGitHubClient(ctx context.Context, cfg *config.GitHub) (interfaces.GitHubClient, error) {
	logger := ctxlog.From(ctx)
	logger.Debug("GitHub configuration", "github", *cfg)

	if cfg.Token == "" {
		logger.Debug("No GitHub token configured, using anonymous API access")
	}

	client, err := githubinfra.NewClient(
		githubinfra.WithToken(cfg.Token),
		githubinfra.WithBaseURL(cfg.APIURL),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub client")
	}
	return client, nil
}

// newTools creates the external tool adapters from configuration
func newTools(target model.Target, cfg *config.Tools) usecase.Tools {
	runner := command.NewRunner()

	nixClient := nix.NewClient(runner,
		nix.WithPrefetchBin(cfg.PrefetchBin),
		nix.WithNixBin(cfg.NixBin),
		nix.WithNixfmtBin(cfg.NixfmtBin),
		nix.WithBun2NixFlake(cfg.Bun2NixFlake),
		nix.WithLockfileName(target.Lockfile),
	)

	return usecase.Tools{
		Prefetcher:        nixClient,
		HashConverter:     nixClient,
		Cloner:            git.NewClient(runner, cfg.GitBin),
		LockfileGenerator: nixClient,
		Formatter:         nixClient,
	}
}

// newUpdateUseCase wires the update pipeline
func newUpdateUseCase(
	ctx context.Context,
	target model.Target,
	githubCfg *config.GitHub,
	toolsCfg *config.Tools,
	updateCfg *config.Update,
	slackCfg *config.Slack,
) (interfaces.UpdateUseCase, error) {
	githubClient, err := newGitHubClient(ctx, githubCfg)
	if err != nil {
		return nil, err
	}

	opts := []usecase.Option{
		usecase.WithScratchRoot(updateCfg.ScratchDir),
		usecase.WithKeepScratch(updateCfg.KeepScratch),
		usecase.WithStrictPatch(updateCfg.StrictPatch),
	}
	if slackCfg != nil && slackCfg.Enabled() {
		opts = append(opts, usecase.WithNotifier(slackinfra.NewNotifier(slackCfg.WebhookURL)))
	}

	return usecase.NewUpdate(
		target,
		githubClient,
		newTools(target, toolsCfg),
		sources.NewFileStore(target.SourcesPath()),
		opts...,
	), nil
}
