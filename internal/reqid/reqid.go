package reqid

import (
	"context"

	"github.com/google/uuid"
)

// key is the context key for the request ID.
type key struct{}

// NewContext returns a copy of parent with a new random request ID stored.
// It also returns the generated ID.
func NewContext(parent context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(parent, key{}, id), id
}

// FromContext extracts the request ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(key{})
	id, ok := v.(string)
	return id, ok
}

// Ensure returns ctx unchanged when it already carries a request ID and a
// derived context with a fresh one otherwise.
func Ensure(ctx context.Context) (context.Context, string) {
	if id, ok := FromContext(ctx); ok {
		return ctx, id
	}
	return NewContext(ctx)
}

type callKey struct{}

// NewCall returns a copy of parent carrying a fresh call ID. A call is one
// unit of work inside a request, such as a single field resolution; events
// published for it share the ID so concurrent calls of one request can be
// told apart.
func NewCall(parent context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(parent, callKey{}, id), id
}

// CallFromContext returns the innermost call ID stored by NewCall.
func CallFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callKey{}).(string)
	return id, ok
}
