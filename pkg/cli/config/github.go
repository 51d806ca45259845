package config

import "github.com/urfave/cli/v3"

// GitHub holds GitHub API configuration
type GitHub struct {
	Token  string `masq:"secret"`
	APIURL string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token for a higher API rate limit (optional)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("NIXBUMP_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub REST API base URL",
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("NIXBUMP_GITHUB_API_URL"),
		},
	}
}
