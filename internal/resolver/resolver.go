// Package resolver binds the generated operations of an augmented schema to
// store calls.
package resolver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hanpama/mongograph/internal/augment"
	eventbus "github.com/hanpama/mongograph/internal/eventbus"
	events "github.com/hanpama/mongograph/internal/events"
	reqid "github.com/hanpama/mongograph/internal/reqid"
	"github.com/hanpama/mongograph/internal/schema"
	"github.com/hanpama/mongograph/internal/store"
)

// Func resolves one field. Generated operations ignore parent.
type Func func(ctx context.Context, parent any, args map[string]any) (any, error)

type fieldKey struct {
	objectType string
	field      string
}

type binding struct {
	fn     Func
	field  *schema.Field
	entity string
}

// Resolvers dispatches field resolution by (object type, field name).
type Resolvers struct {
	schema   *schema.Schema
	bindings map[fieldKey]binding
}

// Build binds every operation listed in res.Operations, the total and data
// fields of each page type, and the id and Date fields of each entity.
func Build(res *augment.Result) *Resolvers {
	r := &Resolvers{schema: res.Schema, bindings: map[fieldKey]binding{}}
	for _, op := range res.Operations {
		root := res.Schema.Type(op.Root)
		field := root.Field(op.Name)
		entity := res.Capabilities.Entity(op.Entity)
		r.bind(op.Root, field, op.Entity, newOperation(op, entity, field, res.Derived).resolve)
	}
	for _, e := range res.Capabilities.Entities {
		if page := res.Derived.Page(e.Name); page != nil {
			if t := res.Schema.Type(page.Name); t != nil {
				r.bind(page.Name, t.Field("total"), e.Name, resolvePageTotal)
				r.bind(page.Name, t.Field("data"), e.Name, resolvePageData)
			}
		}
		t := res.Schema.Type(e.Name)
		if t == nil {
			continue
		}
		if f := t.Field("id"); f != nil {
			r.bind(e.Name, f, e.Name, resolveID)
		}
		for _, f := range t.Fields {
			if f.Type.GetNamedType() == "Date" {
				r.bind(e.Name, f, e.Name, dateResolver(f.Name))
			}
		}
	}
	return r
}

func (r *Resolvers) bind(objectType string, field *schema.Field, entity string, fn Func) {
	if field == nil {
		return
	}
	r.bindings[fieldKey{objectType, field.Name}] = binding{fn: fn, field: field, entity: entity}
}

// Has reports whether a resolver is bound to the field.
func (r *Resolvers) Has(objectType, field string) bool {
	_, ok := r.bindings[fieldKey{objectType, field}]
	return ok
}

// BoundFields lists the fields of objectType that have a resolver, in
// declaration order.
func (r *Resolvers) BoundFields(objectType string) []string {
	t := r.schema.Type(objectType)
	if t == nil {
		return nil
	}
	var out []string
	for _, f := range t.Fields {
		if r.Has(objectType, f.Name) {
			out = append(out, f.Name)
		}
	}
	return out
}

// Fields lists the bound fields as "Type.field", sorted.
func (r *Resolvers) Fields() []string {
	out := make([]string, 0, len(r.bindings))
	for k := range r.bindings {
		out = append(out, k.objectType+"."+k.field)
	}
	sort.Strings(out)
	return out
}

// Resolve coerces args against the field definition and runs the bound
// resolver. ctx must carry the store collections for operations that reach
// the store.
func (r *Resolvers) Resolve(ctx context.Context, objectType, field string, parent any, args map[string]any) (result any, err error) {
	b, ok := r.bindings[fieldKey{objectType, field}]
	if !ok {
		return nil, fmt.Errorf("no resolver for %s.%s", objectType, field)
	}
	ctx, _ = reqid.Ensure(ctx)
	ctx, _ = reqid.NewCall(ctx)
	start := time.Now()
	eventbus.Publish(ctx, events.ResolveStart{ObjectType: objectType, Field: field, Entity: b.entity})
	defer func() {
		eventbus.Publish(ctx, events.ResolveFinish{
			ObjectType: objectType,
			Field:      field,
			Entity:     b.entity,
			Err:        err,
			Duration:   time.Since(start),
		})
	}()

	coerced, err := CoerceArguments(r.schema, b.field, args)
	if err != nil {
		return nil, err
	}
	return b.fn(ctx, parent, coerced)
}

func collectionFromContext(ctx context.Context, name string) (store.Collection, error) {
	colls, ok := store.FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("no collections in context")
	}
	return colls.Get(name)
}
