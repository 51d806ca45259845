package model

import (
	"fmt"
	"path/filepath"
)

const githubURL = "https://github.com"

// Target identifies the upstream repository and where its packaging files live locally
type Target struct {
	Owner       string // Repository owner
	Repo        string // Repository name
	Dir         string // Directory holding the packaging files
	Lockfile    string // Lockfile name relative to Dir
	SourcesFile string // Sources record name relative to Dir
	Attr        string // Flake package attribute used in the next-steps hint
}

// FullName returns "owner/repo"
func (t Target) FullName() string {
	return t.Owner + "/" + t.Repo
}

// ArchiveURL returns the source tarball URL for a commit
func (t Target) ArchiveURL(rev string) string {
	return fmt.Sprintf("%s/%s/%s/archive/%s.tar.gz", githubURL, t.Owner, t.Repo, rev)
}

// CloneURL returns the HTTPS clone URL
func (t Target) CloneURL() string {
	return fmt.Sprintf("%s/%s/%s.git", githubURL, t.Owner, t.Repo)
}

// LockfilePath returns the path of the local lockfile
func (t Target) LockfilePath() string {
	return filepath.Join(t.Dir, t.Lockfile)
}

// SourcesPath returns the path of the local sources record
func (t Target) SourcesPath() string {
	return filepath.Join(t.Dir, t.SourcesFile)
}

// PackageAttr returns Attr, falling back to the repository name
func (t Target) PackageAttr() string {
	if t.Attr != "" {
		return t.Attr
	}
	return t.Repo
}
