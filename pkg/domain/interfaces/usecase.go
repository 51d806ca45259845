package interfaces

import (
	"context"

	"github.com/m-mizutani/nixbump/pkg/domain/model"
)

// UpdateUseCase defines the release update workflow
type UpdateUseCase interface {
	// Update regenerates sources and lockfile when upstream has a new release
	Update(ctx context.Context) (*model.UpdateResult, error)

	// Check compares upstream and recorded versions without side effects
	Check(ctx context.Context) (*model.CheckResult, error)
}
