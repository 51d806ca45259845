package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nixbump/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Target holds the upstream repository and local packaging layout
type Target struct {
	Owner       string
	Repo        string
	Dir         string
	Lockfile    string
	SourcesFile string
	Attr        string
}

// Flags returns CLI flags for target configuration
func (c *Target) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "owner",
			Usage:       "Upstream repository owner",
			Value:       "subsy",
			Destination: &c.Owner,
			Sources:     cli.EnvVars("NIXBUMP_OWNER"),
		},
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Upstream repository name",
			Value:       "ralph-tui",
			Destination: &c.Repo,
			Sources:     cli.EnvVars("NIXBUMP_REPO"),
		},
		&cli.StringFlag{
			Name:        "dir",
			Aliases:     []string{"d"},
			Usage:       "Directory holding the packaging files",
			Value:       ".",
			Destination: &c.Dir,
			Sources:     cli.EnvVars("NIXBUMP_DIR"),
		},
		&cli.StringFlag{
			Name:        "lockfile",
			Usage:       "Lockfile name inside --dir",
			Value:       "bun.nix",
			Destination: &c.Lockfile,
			Sources:     cli.EnvVars("NIXBUMP_LOCKFILE"),
		},
		&cli.StringFlag{
			Name:        "sources",
			Usage:       "Sources record name inside --dir",
			Value:       "sources.json",
			Destination: &c.SourcesFile,
			Sources:     cli.EnvVars("NIXBUMP_SOURCES"),
		},
		&cli.StringFlag{
			Name:        "attr",
			Usage:       "Flake package attribute shown in next steps (default: repo name)",
			Destination: &c.Attr,
			Sources:     cli.EnvVars("NIXBUMP_ATTR"),
		},
	}
}

// Resolve merges the configuration file into the flag values and returns the target
func (c *Target) Resolve(flags FlagChecker, file *File) (model.Target, error) {
	merge(flags, "owner", &c.Owner, file.Owner)
	merge(flags, "repo", &c.Repo, file.Repo)
	merge(flags, "dir", &c.Dir, file.Dir)
	merge(flags, "lockfile", &c.Lockfile, file.Lockfile)
	merge(flags, "sources", &c.SourcesFile, file.SourcesFile)
	merge(flags, "attr", &c.Attr, file.Attr)

	if c.Owner == "" || c.Repo == "" {
		return model.Target{}, goerr.New("owner and repo are required",
			goerr.V("owner", c.Owner),
			goerr.V("repo", c.Repo),
		)
	}

	return model.Target{
		Owner:       c.Owner,
		Repo:        c.Repo,
		Dir:         c.Dir,
		Lockfile:    c.Lockfile,
		SourcesFile: c.SourcesFile,
		Attr:        c.Attr,
	}, nil
}
