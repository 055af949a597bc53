package robot

import (
	"context"
	"time"
)

// Repository provides persistence for robots. Get returns (nil, nil) when the
// robot is absent.
type Repository interface {
	Create(ctx context.Context, in Input) (*Robot, error)
	Update(ctx context.Context, id string, patch Patch) (*Robot, error)
	Delete(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) (*Robot, error)
	Unarchive(ctx context.Context, id string) (*Robot, error)
	Get(ctx context.Context, id string, includeArchived bool) (*Robot, error)
	List(ctx context.Context, opts ListOptions) ([]Robot, error)
	Count(ctx context.Context, includeArchived bool) (int, error)
	IsNameUnique(ctx context.Context, name, excludeID string) (bool, error)
	Export(ctx context.Context, includeArchived bool) ([]Robot, error)
}

// Recorder observes store operations.
type Recorder interface {
	ObserveOperation(store, op, outcome string, elapsed time.Duration)
}

// Outcome is the metric label for err.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(Kind(err))
}
