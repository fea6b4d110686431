// Package augment derives the auxiliary input and page types of every
// @collection entity and appends the generated query and mutation fields to
// the schema roots.
package augment

import (
	"context"
	"log/slog"
	"time"

	eventbus "github.com/hanpama/mongograph/internal/eventbus"
	events "github.com/hanpama/mongograph/internal/events"
	reqid "github.com/hanpama/mongograph/internal/reqid"
	"github.com/hanpama/mongograph/internal/schema"
)

// Result is an augmented graph together with the metadata used to bind
// resolvers to it.
type Result struct {
	Schema       *schema.Schema
	Capabilities *CapabilityMap
	Derived      *DerivedTypes
	// Operations lists the generated root fields. Fields skipped because the
	// base graph already defined them are in Skipped.
	Operations []Operation
	Skipped    []Operation
}

// Operation returns the generated operation of the given root field name.
func (r *Result) Operation(root, name string) (Operation, bool) {
	for _, op := range r.Operations {
		if op.Root == root && op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

// Augment runs scan, build, merge and append over base. Any error aborts the
// whole augmentation; no partial graph is returned.
func Augment(base *schema.Schema) (res *Result, err error) {
	ctx, _ := reqid.NewCall(context.Background())
	start := time.Now()
	eventbus.Publish(ctx, events.AugmentStart{Types: len(base.UserTypes())})
	defer func() {
		finish := events.AugmentFinish{Err: err, Duration: time.Since(start)}
		if res != nil {
			finish.Entities = len(res.Capabilities.Entities)
			finish.Operations = len(res.Operations)
		}
		eventbus.Publish(ctx, finish)
	}()

	g, err := mergePrelude(base)
	if err != nil {
		return nil, err
	}
	caps, err := Scan(g)
	if err != nil {
		return nil, err
	}
	derived, err := Build(caps, g)
	if err != nil {
		return nil, err
	}
	merged, err := Merge(g, derived)
	if err != nil {
		return nil, err
	}
	out, added, skipped := AppendOperations(merged, caps, derived)
	slog.Debug("schema augmented",
		"entities", len(caps.Entities),
		"derived_types", len(derived.Types()),
		"operations", len(added),
		"skipped", len(skipped))
	return &Result{
		Schema:       out,
		Capabilities: caps,
		Derived:      derived,
		Operations:   added,
		Skipped:      skipped,
	}, nil
}
