package interfaces

import (
	"context"

	"github.com/m-mizutani/nixbump/pkg/domain/model"
)

// SourcesStore loads and saves the persisted sources record
type SourcesStore interface {
	Load(ctx context.Context) (*model.Sources, error)
	Save(ctx context.Context, sources *model.Sources) error
}

// Notifier announces a completed update
type Notifier interface {
	NotifyUpdate(ctx context.Context, target model.Target, result *model.UpdateResult) error
}
