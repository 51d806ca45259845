package interfaces

import (
	"context"

	"github.com/m-mizutani/nixbump/pkg/domain/model"
)

// GitHubClient defines read-only operations against the GitHub REST API
type GitHubClient interface {
	// GetLatestRelease returns the latest published release of owner/repo
	GetLatestRelease(ctx context.Context, owner, repo string) (*model.ReleaseInfo, error)

	// ResolveTagCommit returns the commit SHA a tag points to, dereferencing one annotated tag object
	ResolveTagCommit(ctx context.Context, owner, repo, tag string) (string, error)
}
