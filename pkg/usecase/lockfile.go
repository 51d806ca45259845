package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nixbump/pkg/domain/types"
)

// importPreamble matches the argument set bun2nix emits for every fetcher.
// Only fetchurl is used by the generated lockfile for npm packages.
var importPreamble = regexp.MustCompile(`\{\s*copyPathToStore,\s*fetchFromGitHub,\s*fetchgit,\s*fetchurl,`)

const reducedPreamble = "{\n  fetchurl,"

// PatchImports replaces the first four-fetcher preamble with a fetchurl-only
// one. It reports whether the pattern matched; applying it twice is a no-op.
func PatchImports(content string) (string, bool) {
	loc := importPreamble.FindStringIndex(content)
	if loc == nil {
		return content, false
	}
	return content[:loc[0]] + reducedPreamble + content[loc[1]:], true
}

// regenerateLockfile clones tag into a scratch directory, generates and
// patches the lockfile there, then installs it at the target's lockfile path
// and formats it. It reports whether the import preamble was patched.
func (uc *updateUseCase) regenerateLockfile(ctx context.Context, tag string) (bool, error) {
	logger := ctxlog.From(ctx)

	scratch, err := os.MkdirTemp(uc.scratchRoot, fmt.Sprintf("%s-update-%d-", uc.target.Repo, time.Now().UnixMilli()))
	if err != nil {
		return false, goerr.Wrap(err, "failed to create scratch directory", goerr.V("root", uc.scratchRoot))
	}
	logger.Debug("Created scratch directory", "scratch_dir", scratch)

	defer func() {
		if uc.keepScratch {
			logger.Info("Keeping scratch directory", "scratch_dir", scratch)
			return
		}
		if removeErr := os.RemoveAll(scratch); removeErr != nil {
			logger.Warn("Failed to clean up scratch directory",
				"scratch_dir", scratch,
				"error", removeErr,
			)
		} else {
			logger.Debug("Cleaned up scratch directory", "scratch_dir", scratch)
		}
	}()

	srcDir := filepath.Join(scratch, "src")

	logger.Info("Cloning repository", "url", uc.target.CloneURL(), "tag", tag)
	if err := uc.tools.Cloner.CloneTag(ctx, uc.target.CloneURL(), tag, srcDir); err != nil {
		return false, goerr.Wrap(err, "failed to clone release tag", goerr.V("tag", tag))
	}

	logger.Info("Generating lockfile", "dir", srcDir)
	generated, err := uc.tools.LockfileGenerator.GenerateLockfile(ctx, srcDir)
	if err != nil {
		return false, goerr.Wrap(err, "failed to generate lockfile", goerr.V("tag", tag))
	}

	// Patch in scratch so a strict-mode failure leaves the installed lockfile untouched
	patched, err := uc.patchLockfile(ctx, generated)
	if err != nil {
		return false, err
	}

	dest := uc.target.LockfilePath()
	logger.Info("Copying lockfile", "from", generated, "to", dest)
	if err := copyFile(generated, dest); err != nil {
		return false, err
	}

	if err := uc.tools.Formatter.Format(ctx, dest); err != nil {
		logger.Warn("Failed to format lockfile, keeping unformatted output",
			"path", dest,
			"error", err,
		)
	}

	return patched, nil
}

// patchLockfile applies PatchImports to the file at path
func (uc *updateUseCase) patchLockfile(ctx context.Context, path string) (bool, error) {
	logger := ctxlog.From(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return false, goerr.Wrap(err, "failed to read lockfile", goerr.V("path", path))
	}

	content, matched := PatchImports(string(data))
	if !matched {
		if uc.strictPatch {
			return false, goerr.New("lockfile import preamble not found",
				goerr.T(types.ErrTagPatch),
				goerr.V("path", path),
			)
		}
		logger.Warn("Lockfile import preamble not found, unused fetchers may remain", "path", path)
		return false, nil
	}

	if err := os.WriteFile(path, []byte(content), lockfilePermissions); err != nil {
		return false, goerr.Wrap(err, "failed to write patched lockfile", goerr.V("path", path))
	}

	return true, nil
}

const lockfilePermissions = 0o644

// copyFile copies src to dst, replacing dst
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return goerr.Wrap(err, "failed to open generated lockfile", goerr.V("path", src))
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, lockfilePermissions)
	if err != nil {
		return goerr.Wrap(err, "failed to create lockfile", goerr.V("path", dst))
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return goerr.Wrap(err, "failed to copy lockfile", goerr.V("from", src), goerr.V("to", dst))
	}

	return out.Close()
}
