// Package eventlog writes bus events to a structured logger.
package eventlog

import (
	"context"
	"log/slog"

	eventbus "github.com/hanpama/mongograph/internal/eventbus"
	events "github.com/hanpama/mongograph/internal/events"
	reqid "github.com/hanpama/mongograph/internal/reqid"
)

// Register logs augmentation at info level and resolver and store calls at
// debug level. Failures are logged at error level.
func Register(logger *slog.Logger) (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.AugmentFinish) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "augment failed", "error", e.Err, "duration", e.Duration)
				return
			}
			logger.InfoContext(ctx, "schema augmented",
				"entities", e.Entities,
				"operations", e.Operations,
				"duration", e.Duration)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.ResolveFinish) {
			attrs := []any{
				"request_id", requestID(ctx),
				"object", e.ObjectType,
				"field", e.Field,
				"duration", e.Duration,
			}
			if e.Err != nil {
				logger.ErrorContext(ctx, "resolve failed", append(attrs, "error", e.Err)...)
				return
			}
			logger.DebugContext(ctx, "resolved", attrs...)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.StoreFinish) {
			attrs := []any{
				"request_id", requestID(ctx),
				"collection", e.Collection,
				"method", e.Method,
				"documents", e.Documents,
				"duration", e.Duration,
			}
			if e.Err != nil {
				logger.ErrorContext(ctx, "store call failed", append(attrs, "error", e.Err)...)
				return
			}
			logger.DebugContext(ctx, "store call", attrs...)
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func requestID(ctx context.Context) string {
	id, _ := reqid.FromContext(ctx)
	return id
}
