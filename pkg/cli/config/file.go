package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// FlagChecker reports whether a flag was set explicitly. *cli.Command implements it.
type FlagChecker interface {
	IsSet(name string) bool
}

// File holds the optional TOML configuration file. Values in the file
// override flag defaults; explicitly set flags override the file.
type File struct {
	Path string `toml:"-"`

	Owner       string    `toml:"owner"`
	Repo        string    `toml:"repo"`
	Dir         string    `toml:"dir"`
	Lockfile    string    `toml:"lockfile"`
	SourcesFile string    `toml:"sources"`
	Attr        string    `toml:"attr"`
	Tools       FileTools `toml:"tools"`
}

// FileTools holds tool overrides from the configuration file
type FileTools struct {
	PrefetchBin  string `toml:"nix_prefetch_url"`
	NixBin       string `toml:"nix"`
	GitBin       string `toml:"git"`
	NixfmtBin    string `toml:"nixfmt"`
	Bun2NixFlake string `toml:"bun2nix_flake"`
}

// Flags returns CLI flags for the configuration file
func (c *File) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML configuration file",
			Destination: &c.Path,
			Sources:     cli.EnvVars("NIXBUMP_CONFIG"),
		},
	}
}

// Load decodes the file at Path. An empty Path leaves every value empty.
func (c *File) Load() error {
	if c.Path == "" {
		return nil
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", c.Path))
	}

	if err := toml.Unmarshal(data, c); err != nil {
		return goerr.Wrap(err, "failed to parse config file", goerr.V("path", c.Path))
	}

	return nil
}

// merge assigns fileValue to dst unless the flag was set explicitly or the file value is empty
func merge(flags FlagChecker, name string, dst *string, fileValue string) {
	if fileValue == "" || flags.IsSet(name) {
		return
	}
	*dst = fileValue
}
