// Package store is the document store seam: a Collection interface with a
// MongoDB implementation and an in-memory one for tests.
package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/hanpama/mongograph/internal/mongoquery"
	"go.mongodb.org/mongo-driver/bson"
)

// Collection executes query and update documents against one collection.
// Single document lookups return (nil, nil) when nothing matches.
type Collection interface {
	Name() string
	Find(filter bson.M) mongoquery.Cursor
	CountDocuments(ctx context.Context, filter bson.M) (int64, error)
	FindOne(ctx context.Context, filter bson.M) (bson.M, error)
	InsertOne(ctx context.Context, doc bson.M) (any, error)
	InsertMany(ctx context.Context, docs []bson.M) ([]any, error)
	// FindOneAndUpdate returns the document after the update.
	FindOneAndUpdate(ctx context.Context, filter, update bson.M) (bson.M, error)
	UpdateMany(ctx context.Context, filter, update bson.M) (int64, error)
	FindOneAndDelete(ctx context.Context, filter bson.M) (bson.M, error)
	DeleteMany(ctx context.Context, filter bson.M) (int64, error)
}

// Collections is a set of collection handles keyed by collection name.
type Collections map[string]Collection

// Get returns the named handle.
func (c Collections) Get(name string) (Collection, error) {
	coll, ok := c[name]
	if !ok {
		return nil, fmt.Errorf("collection %q is not registered", name)
	}
	return coll, nil
}

// Names lists the registered collection names in lexical order.
func (c Collections) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type collectionsKey struct{}

// WithCollections returns a copy of ctx carrying the handles.
func WithCollections(ctx context.Context, c Collections) context.Context {
	return context.WithValue(ctx, collectionsKey{}, c)
}

// FromContext returns the handles stored by WithCollections.
func FromContext(ctx context.Context) (Collections, bool) {
	c, ok := ctx.Value(collectionsKey{}).(Collections)
	return c, ok
}
