package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/nixbump/pkg/domain/interfaces"
	"github.com/m-mizutani/nixbump/pkg/domain/model"
	"github.com/m-mizutani/nixbump/pkg/domain/types"
	"github.com/m-mizutani/nixbump/pkg/infra/sources"
	"github.com/m-mizutani/nixbump/pkg/usecase"
)

const (
	testRev     = "0123456789abcdef0123456789abcdef01234567"
	testRawHash = "0v7jmrdbvz0sk2n5a4s9ffbqw0wbj4rl9lx4hd6y4fkkzr8xm9gq"
	testSRI     = "sha256-47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU="
)

// MockGitHubClient is a mock implementation of GitHubClient
type MockGitHubClient struct {
	getLatestReleaseFunc func(ctx context.Context, owner, repo string) (*model.ReleaseInfo, error)
	resolveTagCommitFunc func(ctx context.Context, owner, repo, tag string) (string, error)
	releaseCalls         int
	resolveCalls         []string
}

func (m *MockGitHubClient) GetLatestRelease(ctx context.Context, owner, repo string) (*model.ReleaseInfo, error) {
	m.releaseCalls++
	if m.getLatestReleaseFunc != nil {
		return m.getLatestReleaseFunc(ctx, owner, repo)
	}
	return nil, errors.New("mock not configured")
}

func (m *MockGitHubClient) ResolveTagCommit(ctx context.Context, owner, repo, tag string) (string, error) {
	m.resolveCalls = append(m.resolveCalls, tag)
	if m.resolveTagCommitFunc != nil {
		return m.resolveTagCommitFunc(ctx, owner, repo, tag)
	}
	return "", errors.New("mock not configured")
}

// MockTools implements every external tool interface and records invocations
type MockTools struct {
	prefetchFunc func(ctx context.Context, url string) (string, error)
	convertFunc  func(ctx context.Context, raw string) (string, error)
	cloneFunc    func(ctx context.Context, url, tag, dest string) error
	generateFunc func(ctx context.Context, dir string) (string, error)
	formatFunc   func(ctx context.Context, path string) error

	prefetchURLs []string
	cloneDests   []string
	calls        int
}

func (m *MockTools) Prefetch(ctx context.Context, url string) (string, error) {
	m.calls++
	m.prefetchURLs = append(m.prefetchURLs, url)
	if m.prefetchFunc != nil {
		return m.prefetchFunc(ctx, url)
	}
	return testRawHash, nil
}

func (m *MockTools) ConvertHash(ctx context.Context, raw string) (string, error) {
	m.calls++
	if m.convertFunc != nil {
		return m.convertFunc(ctx, raw)
	}
	return testSRI, nil
}

func (m *MockTools) CloneTag(ctx context.Context, url, tag, dest string) error {
	m.calls++
	m.cloneDests = append(m.cloneDests, dest)
	if m.cloneFunc != nil {
		return m.cloneFunc(ctx, url, tag, dest)
	}
	return os.MkdirAll(dest, 0o755)
}

func (m *MockTools) GenerateLockfile(ctx context.Context, dir string) (string, error) {
	m.calls++
	if m.generateFunc != nil {
		return m.generateFunc(ctx, dir)
	}
	path := filepath.Join(dir, "bun.nix")
	return path, os.WriteFile(path, []byte(generatedLockfile), 0o644)
}

func (m *MockTools) Format(ctx context.Context, path string) error {
	m.calls++
	if m.formatFunc != nil {
		return m.formatFunc(ctx, path)
	}
	return nil
}

func (m *MockTools) Tools() usecase.Tools {
	return usecase.Tools{
		Prefetcher:        m,
		HashConverter:     m,
		Cloner:            m,
		LockfileGenerator: m,
		Formatter:         m,
	}
}

// MockNotifier records notifications
type MockNotifier struct {
	err     error
	panics  bool
	results []*model.UpdateResult
}

func (m *MockNotifier) NotifyUpdate(ctx context.Context, target model.Target, result *model.UpdateResult) error {
	m.results = append(m.results, result)
	if m.panics {
		panic("notifier exploded")
	}
	return m.err
}

type testEnv struct {
	target      model.Target
	github      *MockGitHubClient
	tools       *MockTools
	store       *sources.FileStore
	scratchRoot string
}

func newTestEnv(t *testing.T, recorded, tag string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	target := model.Target{
		Owner:       "subsy",
		Repo:        "ralph-tui",
		Dir:         dir,
		Lockfile:    "bun.nix",
		SourcesFile: "sources.json",
	}

	gt.NoError(t, os.WriteFile(target.SourcesPath(),
		[]byte(`{"version":"`+recorded+`","rev":"oldrev","hash":"sha256-old"}`+"\n"), 0o644))

	return &testEnv{
		target: target,
		github: &MockGitHubClient{
			getLatestReleaseFunc: func(ctx context.Context, owner, repo string) (*model.ReleaseInfo, error) {
				return &model.ReleaseInfo{Owner: owner, Repo: repo, TagName: tag}, nil
			},
			resolveTagCommitFunc: func(ctx context.Context, owner, repo, tag string) (string, error) {
				return testRev, nil
			},
		},
		tools:       &MockTools{},
		store:       sources.NewFileStore(target.SourcesPath()),
		scratchRoot: t.TempDir(),
	}
}

func (e *testEnv) newUseCase(opts ...usecase.Option) interfaces.UpdateUseCase {
	opts = append([]usecase.Option{usecase.WithScratchRoot(e.scratchRoot)}, opts...)
	return usecase.NewUpdate(e.target, e.github, e.tools.Tools(), e.store, opts...)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	return string(data)
}

func scratchEntries(t *testing.T, root string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(root)
	gt.NoError(t, err)
	return entries
}

func TestUpdateUseCase_Update_NewRelease(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "1.4.1", "v1.4.2")

	result, err := env.newUseCase().Update(ctx)
	gt.NoError(t, err)

	gt.True(t, result.Updated)
	gt.True(t, result.LockfilePatched)
	gt.Value(t, result.TagName).Equal("v1.4.2")
	gt.Value(t, result.Previous.Version).Equal("1.4.1")
	gt.Value(t, *result.Current).Equal(model.Sources{Version: "1.4.2", Rev: testRev, Hash: testSRI})
	gt.True(t, strings.HasPrefix(result.Current.Hash, "sha256-"))

	// The raw tag is used for the ref lookup
	gt.Value(t, env.github.resolveCalls).Equal([]string{"v1.4.2"})
	gt.Value(t, env.tools.prefetchURLs).Equal([]string{
		"https://github.com/subsy/ralph-tui/archive/" + testRev + ".tar.gz",
	})

	gt.Value(t, readFile(t, env.target.SourcesPath())).Equal(`{
  "version": "1.4.2",
  "rev": "` + testRev + `",
  "hash": "` + testSRI + `"
}
`)
	gt.Value(t, readFile(t, env.target.LockfilePath())).Equal(patchedLockfile)

	// Scratch directory is removed
	gt.A(t, scratchEntries(t, env.scratchRoot)).Length(0)
	gt.True(t, strings.HasPrefix(filepath.Base(filepath.Dir(env.tools.cloneDests[0])), "ralph-tui-update-"))
}

func TestUpdateUseCase_Update_AlreadyUpToDate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "1.4.2", "v1.4.2")
	before := readFile(t, env.target.SourcesPath())

	result, err := env.newUseCase().Update(ctx)
	gt.NoError(t, err)

	gt.False(t, result.Updated)
	gt.Value(t, result.Current.Version).Equal("1.4.2")
	gt.Value(t, env.github.releaseCalls).Equal(1)
	gt.A(t, env.github.resolveCalls).Length(0)
	gt.Value(t, env.tools.calls).Equal(0)

	gt.Value(t, readFile(t, env.target.SourcesPath())).Equal(before)
	_, err = os.Stat(env.target.LockfilePath())
	gt.True(t, errors.Is(err, os.ErrNotExist))
}

func TestUpdateUseCase_Update_UnprefixedTag(t *testing.T) {
	env := newTestEnv(t, "2.0.0", "2.0.0")

	result, err := env.newUseCase().Update(context.Background())
	gt.NoError(t, err)
	gt.False(t, result.Updated)
}

func TestUpdateUseCase_Update_ReplacesWholeRecord(t *testing.T) {
	env := newTestEnv(t, "1.0.0", "v1.1.0")
	gt.NoError(t, os.WriteFile(env.target.SourcesPath(),
		[]byte(`{"version":"1.0.0","rev":"oldrev","hash":"sha256-old","legacy":"field"}`), 0o644))

	_, err := env.newUseCase().Update(context.Background())
	gt.NoError(t, err)

	content := readFile(t, env.target.SourcesPath())
	gt.False(t, strings.Contains(content, "legacy"))
	gt.False(t, strings.Contains(content, "oldrev"))
	gt.False(t, strings.Contains(content, "sha256-old"))
}

func TestUpdateUseCase_Update_FormatterFailureIsIgnored(t *testing.T) {
	env := newTestEnv(t, "1.4.1", "v1.4.2")
	env.tools.formatFunc = func(ctx context.Context, path string) error {
		return goerr.New("nixfmt exited with 1", goerr.T(types.ErrTagCommand))
	}

	result, err := env.newUseCase().Update(context.Background())
	gt.NoError(t, err)
	gt.True(t, result.Updated)
	gt.Value(t, readFile(t, env.target.LockfilePath())).Equal(patchedLockfile)
	gt.Value(t, result.Current.Version).Equal("1.4.2")
}

func TestUpdateUseCase_Update_StepFailures(t *testing.T) {
	stepErr := errors.New("step failed")

	tests := []struct {
		name  string
		setup func(env *testEnv)
	}{
		{
			name: "resolve commit",
			setup: func(env *testEnv) {
				env.github.resolveTagCommitFunc = func(ctx context.Context, owner, repo, tag string) (string, error) {
					return "", stepErr
				}
			},
		},
		{
			name: "prefetch",
			setup: func(env *testEnv) {
				env.tools.prefetchFunc = func(ctx context.Context, url string) (string, error) { return "", stepErr }
			},
		},
		{
			name: "convert hash",
			setup: func(env *testEnv) {
				env.tools.convertFunc = func(ctx context.Context, raw string) (string, error) { return "", stepErr }
			},
		},
		{
			name: "clone",
			setup: func(env *testEnv) {
				env.tools.cloneFunc = func(ctx context.Context, url, tag, dest string) error { return stepErr }
			},
		},
		{
			name: "generate lockfile",
			setup: func(env *testEnv) {
				env.tools.generateFunc = func(ctx context.Context, dir string) (string, error) { return "", stepErr }
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "1.4.1", "v1.4.2")
			before := readFile(t, env.target.SourcesPath())
			tt.setup(env)

			result, err := env.newUseCase().Update(context.Background())
			gt.Error(t, err)
			gt.Value(t, result).Nil()
			gt.True(t, errors.Is(err, stepErr))

			// Nothing is persisted and no scratch residue is left behind
			gt.Value(t, readFile(t, env.target.SourcesPath())).Equal(before)
			gt.A(t, scratchEntries(t, env.scratchRoot)).Length(0)
		})
	}
}

func TestUpdateUseCase_Update_KeepScratch(t *testing.T) {
	env := newTestEnv(t, "1.4.1", "v1.4.2")

	_, err := env.newUseCase(usecase.WithKeepScratch(true)).Update(context.Background())
	gt.NoError(t, err)
	gt.A(t, scratchEntries(t, env.scratchRoot)).Length(1)
}

func TestUpdateUseCase_Update_PatchMismatch(t *testing.T) {
	otherShape := "{\n  fetchurl,\n  ...\n}: {}\n"

	t.Run("warns by default", func(t *testing.T) {
		env := newTestEnv(t, "1.4.1", "v1.4.2")
		env.tools.generateFunc = func(ctx context.Context, dir string) (string, error) {
			path := filepath.Join(dir, "bun.nix")
			return path, os.WriteFile(path, []byte(otherShape), 0o644)
		}

		result, err := env.newUseCase().Update(context.Background())
		gt.NoError(t, err)
		gt.True(t, result.Updated)
		gt.False(t, result.LockfilePatched)
		gt.Value(t, readFile(t, env.target.LockfilePath())).Equal(otherShape)
	})

	t.Run("fails in strict mode", func(t *testing.T) {
		env := newTestEnv(t, "1.4.1", "v1.4.2")
		before := readFile(t, env.target.SourcesPath())
		installed := "OLD LOCKFILE for 1.4.1\n"
		gt.NoError(t, os.WriteFile(env.target.LockfilePath(), []byte(installed), 0o644))
		env.tools.generateFunc = func(ctx context.Context, dir string) (string, error) {
			path := filepath.Join(dir, "bun.nix")
			return path, os.WriteFile(path, []byte(otherShape), 0o644)
		}

		_, err := env.newUseCase(usecase.WithStrictPatch(true)).Update(context.Background())
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagPatch))
		gt.Value(t, readFile(t, env.target.SourcesPath())).Equal(before)
		gt.Value(t, readFile(t, env.target.LockfilePath())).Equal(installed)
		gt.A(t, scratchEntries(t, env.scratchRoot)).Length(0)
	})
}

func TestUpdateUseCase_Update_Notifier(t *testing.T) {
	t.Run("notified on update", func(t *testing.T) {
		env := newTestEnv(t, "1.4.1", "v1.4.2")
		notifier := &MockNotifier{}

		_, err := env.newUseCase(usecase.WithNotifier(notifier)).Update(context.Background())
		gt.NoError(t, err)
		gt.A(t, notifier.results).Length(1)
		gt.Value(t, notifier.results[0].Current.Version).Equal("1.4.2")
	})

	t.Run("notification failure does not fail the run", func(t *testing.T) {
		env := newTestEnv(t, "1.4.1", "v1.4.2")
		notifier := &MockNotifier{err: errors.New("slack down")}

		result, err := env.newUseCase(usecase.WithNotifier(notifier)).Update(context.Background())
		gt.NoError(t, err)
		gt.True(t, result.Updated)
	})

	t.Run("notifier panic does not fail the run", func(t *testing.T) {
		env := newTestEnv(t, "1.4.1", "v1.4.2")
		notifier := &MockNotifier{panics: true}

		result, err := env.newUseCase(usecase.WithNotifier(notifier)).Update(context.Background())
		gt.NoError(t, err)
		gt.True(t, result.Updated)
	})

	t.Run("not notified when up to date", func(t *testing.T) {
		env := newTestEnv(t, "1.4.2", "v1.4.2")
		notifier := &MockNotifier{}

		_, err := env.newUseCase(usecase.WithNotifier(notifier)).Update(context.Background())
		gt.NoError(t, err)
		gt.A(t, notifier.results).Length(0)
	})
}

func TestUpdateUseCase_Update_ReleaseError(t *testing.T) {
	env := newTestEnv(t, "1.4.1", "v1.4.2")
	releaseErr := goerr.New("404 Not Found", goerr.T(types.ErrTagFetch))
	env.github.getLatestReleaseFunc = func(ctx context.Context, owner, repo string) (*model.ReleaseInfo, error) {
		return nil, releaseErr
	}

	_, err := env.newUseCase().Update(context.Background())
	gt.Error(t, err)
	gt.True(t, errors.Is(err, releaseErr))
	gt.Value(t, env.tools.calls).Equal(0)
}

func TestUpdateUseCase_Update_MissingSources(t *testing.T) {
	env := newTestEnv(t, "1.4.1", "v1.4.2")
	gt.NoError(t, os.Remove(env.target.SourcesPath()))

	_, err := env.newUseCase().Update(context.Background())
	gt.Error(t, err)
	gt.True(t, errors.Is(err, os.ErrNotExist))
}

func TestUpdateUseCase_Check(t *testing.T) {
	t.Run("update available", func(t *testing.T) {
		env := newTestEnv(t, "1.4.1", "v1.4.2")

		result, err := env.newUseCase().Check(context.Background())
		gt.NoError(t, err)
		gt.False(t, result.UpToDate)
		gt.Value(t, result.Current).Equal("1.4.1")
		gt.Value(t, result.Latest).Equal("1.4.2")
		gt.Value(t, result.TagName).Equal("v1.4.2")
		gt.Value(t, env.tools.calls).Equal(0)
		gt.A(t, env.github.resolveCalls).Length(0)
	})

	t.Run("up to date", func(t *testing.T) {
		env := newTestEnv(t, "1.4.2", "v1.4.2")

		result, err := env.newUseCase().Check(context.Background())
		gt.NoError(t, err)
		gt.True(t, result.UpToDate)
	})
}
