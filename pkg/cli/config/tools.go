package config

import "github.com/urfave/cli/v3"

// Tools holds the external executables used by the update pipeline
type Tools struct {
	PrefetchBin  string
	NixBin       string
	GitBin       string
	NixfmtBin    string
	Bun2NixFlake string
}

// Flags returns CLI flags for tool configuration
func (c *Tools) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "nix-prefetch-url-bin",
			Usage:       "nix-prefetch-url executable",
			Value:       "nix-prefetch-url",
			Destination: &c.PrefetchBin,
			Sources:     cli.EnvVars("NIXBUMP_NIX_PREFETCH_URL_BIN"),
		},
		&cli.StringFlag{
			Name:        "nix-bin",
			Usage:       "nix executable",
			Value:       "nix",
			Destination: &c.NixBin,
			Sources:     cli.EnvVars("NIXBUMP_NIX_BIN"),
		},
		&cli.StringFlag{
			Name:        "git-bin",
			Usage:       "git executable",
			Value:       "git",
			Destination: &c.GitBin,
			Sources:     cli.EnvVars("NIXBUMP_GIT_BIN"),
		},
		&cli.StringFlag{
			Name:        "nixfmt-bin",
			Usage:       "Formatter executable applied to the lockfile",
			Value:       "nixfmt",
			Destination: &c.NixfmtBin,
			Sources:     cli.EnvVars("NIXBUMP_NIXFMT_BIN"),
		},
		&cli.StringFlag{
			Name:        "bun2nix-flake",
			Usage:       "Flake reference of the lockfile generator",
			Value:       "github:nix-community/bun2nix",
			Destination: &c.Bun2NixFlake,
			Sources:     cli.EnvVars("NIXBUMP_BUN2NIX_FLAKE"),
		},
	}
}

// Resolve merges tool overrides from the configuration file
func (c *Tools) Resolve(flags FlagChecker, file *File) {
	merge(flags, "nix-prefetch-url-bin", &c.PrefetchBin, file.Tools.PrefetchBin)
	merge(flags, "nix-bin", &c.NixBin, file.Tools.NixBin)
	merge(flags, "git-bin", &c.GitBin, file.Tools.GitBin)
	merge(flags, "nixfmt-bin", &c.NixfmtBin, file.Tools.NixfmtBin)
	merge(flags, "bun2nix-flake", &c.Bun2NixFlake, file.Tools.Bun2NixFlake)
}
