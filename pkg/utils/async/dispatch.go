package async

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Detached executes handler synchronously with a context that keeps the
// caller's logger but ignores the caller's cancellation. The handler gets
// at most timeout to finish. A panic in handler is recovered and returned
// as an error.
//
// Used for side effects that must still run once the primary work has been
// committed, e.g. announcing an update after sources.json was written.
func Detached(ctx context.Context, timeout time.Duration, handler func(ctx context.Context) error) (err error) {
	newCtx, cancel := context.WithTimeout(newBackgroundContext(ctx), timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			ctxlog.From(newCtx).Error("panic in detached handler",
				"recover", r,
				"stack", string(debug.Stack()))
			err = goerr.New("panic in detached handler", goerr.V("recover", r))
		}
	}()

	return handler(newCtx)
}

// newBackgroundContext creates a new background context preserving the ctxlog logger
func newBackgroundContext(ctx context.Context) context.Context {
	return ctxlog.With(context.Background(), ctxlog.From(ctx))
}
