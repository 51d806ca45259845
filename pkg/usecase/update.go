package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nixbump/pkg/domain/interfaces"
	"github.com/m-mizutani/nixbump/pkg/domain/model"
	"github.com/m-mizutani/nixbump/pkg/utils/async"
)

const notifyTimeout = 10 * time.Second

// Tools bundles the external programs the update pipeline drives
type Tools struct {
	Prefetcher        interfaces.Prefetcher
	HashConverter     interfaces.HashConverter
	Cloner            interfaces.Cloner
	LockfileGenerator interfaces.LockfileGenerator
	Formatter         interfaces.Formatter
}

type updateUseCase struct {
	target       model.Target
	githubClient interfaces.GitHubClient
	tools        Tools
	store        interfaces.SourcesStore
	notifier     interfaces.Notifier
	scratchRoot  string
	keepScratch  bool
	strictPatch  bool
}

// Option is a functional option for the update use case
type Option func(*updateUseCase)

// WithNotifier announces successful updates through n
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *updateUseCase) {
		uc.notifier = n
	}
}

// WithScratchRoot sets the parent directory of scratch directories. Empty means os.TempDir().
func WithScratchRoot(dir string) Option {
	return func(uc *updateUseCase) {
		uc.scratchRoot = dir
	}
}

// WithKeepScratch leaves the scratch directory on disk for debugging
func WithKeepScratch(keep bool) Option {
	return func(uc *updateUseCase) {
		uc.keepScratch = keep
	}
}

// WithStrictPatch turns a missing lockfile import preamble into an error
func WithStrictPatch(strict bool) Option {
	return func(uc *updateUseCase) {
		uc.strictPatch = strict
	}
}

// NewUpdate creates a new instance of UpdateUseCase
func NewUpdate(
	target model.Target,
	githubClient interfaces.GitHubClient,
	tools Tools,
	store interfaces.SourcesStore,
	opts ...Option,
) interfaces.UpdateUseCase {
	uc := &updateUseCase{
		target:       target,
		githubClient: githubClient,
		tools:        tools,
		store:        store,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Check compares the latest upstream release with the recorded version
func (uc *updateUseCase) Check(ctx context.Context) (*model.CheckResult, error) {
	release, current, err := uc.fetchVersions(ctx)
	if err != nil {
		return nil, err
	}

	latest := NormalizeVersion(release.TagName)
	return &model.CheckResult{
		Current:  current.Version,
		Latest:   latest,
		TagName:  release.TagName,
		UpToDate: latest == current.Version,
	}, nil
}

// Update regenerates the lockfile and sources record when upstream has a
// release different from the recorded version
func (uc *updateUseCase) Update(ctx context.Context) (*model.UpdateResult, error) {
	logger := ctxlog.From(ctx)

	release, current, err := uc.fetchVersions(ctx)
	if err != nil {
		return nil, err
	}

	version := NormalizeVersion(release.TagName)
	if version == current.Version {
		logger.Info("Already up to date", "version", version)
		return &model.UpdateResult{
			Previous: current,
			Current:  current,
			TagName:  release.TagName,
		}, nil
	}

	if IsDowngrade(current.Version, version) {
		logger.Warn("Upstream version is older than recorded",
			"recorded", current.Version,
			"upstream", version,
		)
	}

	logger.Info("Updating",
		"repo", uc.target.FullName(),
		"from", current.Version,
		"to", version,
		"tag", release.TagName,
	)

	logger.Info("Getting commit SHA", "tag", release.TagName)
	rev, err := uc.githubClient.ResolveTagCommit(ctx, uc.target.Owner, uc.target.Repo, release.TagName)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve release commit", goerr.V("tag", release.TagName))
	}

	logger.Info("Calculating hash", "rev", rev)
	hash, err := uc.computeHash(ctx, rev)
	if err != nil {
		return nil, err
	}

	patched, err := uc.regenerateLockfile(ctx, release.TagName)
	if err != nil {
		return nil, err
	}

	next := &model.Sources{
		Version: version,
		Rev:     rev,
		Hash:    hash,
	}
	if err := uc.store.Save(ctx, next); err != nil {
		return nil, goerr.Wrap(err, "failed to write sources")
	}

	result := &model.UpdateResult{
		Previous:        current,
		Current:         next,
		TagName:         release.TagName,
		Updated:         true,
		LockfilePatched: patched,
	}

	logger.Info("Update complete",
		"version", next.Version,
		"rev", next.Rev,
		"hash", next.Hash,
	)

	if uc.notifier != nil {
		if err := async.Detached(ctx, notifyTimeout, func(ctx context.Context) error {
			return uc.notifier.NotifyUpdate(ctx, uc.target, result)
		}); err != nil {
			logger.Warn("Failed to send update notification", "error", err)
		}
	}

	return result, nil
}

// fetchVersions returns the latest upstream release and the recorded sources
func (uc *updateUseCase) fetchVersions(ctx context.Context) (*model.ReleaseInfo, *model.Sources, error) {
	logger := ctxlog.From(ctx)

	logger.Info("Fetching latest release", "repo", uc.target.FullName())
	release, err := uc.githubClient.GetLatestRelease(ctx, uc.target.Owner, uc.target.Repo)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to get latest release", goerr.V("repo", uc.target.FullName()))
	}

	current, err := uc.store.Load(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to read sources")
	}

	return release, current, nil
}

// computeHash prefetches the commit archive and returns its SRI hash
func (uc *updateUseCase) computeHash(ctx context.Context, rev string) (string, error) {
	url := uc.target.ArchiveURL(rev)

	raw, err := uc.tools.Prefetcher.Prefetch(ctx, url)
	if err != nil {
		return "", goerr.Wrap(err, "failed to prefetch source archive", goerr.V("rev", rev))
	}

	sri, err := uc.tools.HashConverter.ConvertHash(ctx, raw)
	if err != nil {
		return "", goerr.Wrap(err, "failed to convert source hash", goerr.V("rev", rev))
	}

	return sri, nil
}
