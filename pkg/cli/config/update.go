package config

import "github.com/urfave/cli/v3"

// Update holds options of the update command
type Update struct {
	ScratchDir  string
	KeepScratch bool
	StrictPatch bool
}

// Flags returns CLI flags for update configuration
func (c *Update) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "scratch-dir",
			Usage:       "Parent directory for the temporary clone (default: system temp dir)",
			Destination: &c.ScratchDir,
			Sources:     cli.EnvVars("NIXBUMP_SCRATCH_DIR"),
		},
		&cli.BoolFlag{
			Name:        "keep-scratch",
			Usage:       "Leave the temporary clone on disk for debugging",
			Destination: &c.KeepScratch,
			Sources:     cli.EnvVars("NIXBUMP_KEEP_SCRATCH"),
		},
		&cli.BoolFlag{
			Name:        "strict-patch",
			Usage:       "Fail when the lockfile import preamble cannot be patched",
			Destination: &c.StrictPatch,
			Sources:     cli.EnvVars("NIXBUMP_STRICT_PATCH"),
		},
	}
}
