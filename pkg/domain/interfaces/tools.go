package interfaces

import (
	"context"

	"github.com/m-mizutani/nixbump/pkg/domain/model"
)

// CommandRunner executes an external process and captures its output
type CommandRunner interface {
	Run(ctx context.Context, cmd *model.Command) (*model.CommandResult, error)
}

// Prefetcher downloads and unpacks an archive into the store and returns its raw hash
type Prefetcher interface {
	Prefetch(ctx context.Context, url string) (string, error)
}

// HashConverter converts a raw sha256 hash into an SRI string
type HashConverter interface {
	ConvertHash(ctx context.Context, raw string) (string, error)
}

// Cloner performs a shallow clone of a single tag
type Cloner interface {
	CloneTag(ctx context.Context, url, tag, dest string) error
}

// LockfileGenerator generates a lockfile inside a source tree and returns its path
type LockfileGenerator interface {
	GenerateLockfile(ctx context.Context, dir string) (string, error)
}

// Formatter reformats a file in place
type Formatter interface {
	Format(ctx context.Context, path string) error
}
