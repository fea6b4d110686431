package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hanpama/mongograph/internal/mongoquery"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockCollection is an in-memory Collection. Documents keep insertion order
// and are copied on the way in and out.
type MockCollection struct {
	name string

	mu   sync.Mutex
	docs []bson.M
}

// NewMockCollection creates a collection seeded with docs.
func NewMockCollection(name string, docs ...bson.M) *MockCollection {
	m := &MockCollection{name: name}
	for _, d := range docs {
		m.docs = append(m.docs, withID(copyDoc(d)))
	}
	return m
}

// NewMockCollections creates one empty MockCollection per name.
func NewMockCollections(names ...string) Collections {
	out := make(Collections, len(names))
	for _, name := range names {
		out[name] = NewMockCollection(name)
	}
	return out
}

func (m *MockCollection) Name() string { return m.name }

// Docs returns a copy of the stored documents.
func (m *MockCollection) Docs() []bson.M {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyDocs(m.docs)
}

func (m *MockCollection) matching(filter bson.M) ([]int, error) {
	var idx []int
	for i, d := range m.docs {
		ok, err := Matches(d, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			idx = append(idx, i)
		}
	}
	return idx, nil
}

func (m *MockCollection) Find(filter bson.M) mongoquery.Cursor {
	return &mockCursor{coll: m, filter: filter}
}

func (m *MockCollection) CountDocuments(ctx context.Context, filter bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, err := m.matching(filter)
	return int64(len(idx)), err
}

func (m *MockCollection) FindOne(ctx context.Context, filter bson.M) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, err := m.matching(filter)
	if err != nil || len(idx) == 0 {
		return nil, err
	}
	return copyDoc(m.docs[idx[0]]), nil
}

func (m *MockCollection) InsertOne(ctx context.Context, doc bson.M) (any, error) {
	ids, err := m.InsertMany(ctx, []bson.M{doc})
	if err != nil {
		return nil, err
	}
	return ids[0], nil
}

func (m *MockCollection) InsertMany(ctx context.Context, docs []bson.M) ([]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]any, 0, len(docs))
	for _, d := range docs {
		stored := withID(copyDoc(d))
		for _, existing := range m.docs {
			if valuesEqual(existing["_id"], stored["_id"]) {
				return ids, fmt.Errorf("duplicate key _id %v in %s", stored["_id"], m.name)
			}
		}
		m.docs = append(m.docs, stored)
		ids = append(ids, stored["_id"])
	}
	return ids, nil
}

func (m *MockCollection) FindOneAndUpdate(ctx context.Context, filter, update bson.M) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, err := m.matching(filter)
	if err != nil || len(idx) == 0 {
		return nil, err
	}
	updated, err := ApplyUpdate(m.docs[idx[0]], update)
	if err != nil {
		return nil, err
	}
	m.docs[idx[0]] = updated
	return copyDoc(updated), nil
}

func (m *MockCollection) UpdateMany(ctx context.Context, filter, update bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, err := m.matching(filter)
	if err != nil {
		return 0, err
	}
	for _, i := range idx {
		updated, err := ApplyUpdate(m.docs[i], update)
		if err != nil {
			return 0, err
		}
		m.docs[i] = updated
	}
	return int64(len(idx)), nil
}

func (m *MockCollection) FindOneAndDelete(ctx context.Context, filter bson.M) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, err := m.matching(filter)
	if err != nil || len(idx) == 0 {
		return nil, err
	}
	doc := m.docs[idx[0]]
	m.docs = append(m.docs[:idx[0]:idx[0]], m.docs[idx[0]+1:]...)
	return doc, nil
}

func (m *MockCollection) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, err := m.matching(filter)
	if err != nil {
		return 0, err
	}
	drop := make(map[int]bool, len(idx))
	for _, i := range idx {
		drop[i] = true
	}
	kept := m.docs[:0:0]
	for i, d := range m.docs {
		if !drop[i] {
			kept = append(kept, d)
		}
	}
	m.docs = kept
	return int64(len(idx)), nil
}

// mockCursor snapshots the matching documents when All runs and replays
// the chained operations on them.
type mockCursor struct {
	coll   *MockCollection
	filter bson.M
	chain  []func(mongoquery.Cursor) mongoquery.Cursor
}

func (c *mockCursor) with(op func(mongoquery.Cursor) mongoquery.Cursor) *mockCursor {
	chain := append(append([]func(mongoquery.Cursor) mongoquery.Cursor(nil), c.chain...), op)
	return &mockCursor{coll: c.coll, filter: c.filter, chain: chain}
}

func (c *mockCursor) Sort(field string, order int) mongoquery.Cursor {
	return c.with(func(cur mongoquery.Cursor) mongoquery.Cursor { return cur.Sort(field, order) })
}

func (c *mockCursor) Skip(n int64) mongoquery.Cursor {
	return c.with(func(cur mongoquery.Cursor) mongoquery.Cursor { return cur.Skip(n) })
}

func (c *mockCursor) Limit(n int64) mongoquery.Cursor {
	return c.with(func(cur mongoquery.Cursor) mongoquery.Cursor { return cur.Limit(n) })
}

func (c *mockCursor) All(ctx context.Context) ([]bson.M, error) {
	c.coll.mu.Lock()
	idx, err := c.coll.matching(c.filter)
	docs := make([]bson.M, len(idx))
	for i, j := range idx {
		docs[i] = copyDoc(c.coll.docs[j])
	}
	c.coll.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var cur mongoquery.Cursor = mongoquery.NewSliceCursor(docs)
	for _, op := range c.chain {
		cur = op(cur)
	}
	return cur.All(ctx)
}

// ApplyUpdate returns a copy of doc with $set, $unset and $inc applied.
func ApplyUpdate(doc bson.M, update bson.M) (bson.M, error) {
	out := copyDoc(doc)
	for op, arg := range update {
		fields, ok := asDoc(arg)
		if !ok {
			return nil, fmt.Errorf("%s requires a document", op)
		}
		for path, v := range fields {
			switch op {
			case "$set":
				setPath(out, path, copyValue(v))
			case "$unset":
				unsetPath(out, path)
			case "$inc":
				cur := mongoquery.Lookup(out, path)
				if cur == nil {
					setPath(out, path, v)
					continue
				}
				sum, err := addValues(cur, v)
				if err != nil {
					return nil, fmt.Errorf("$inc %s: %w", path, err)
				}
				setPath(out, path, sum)
			default:
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedOperator, op)
			}
		}
	}
	return out, nil
}

func addValues(a, b any) (any, error) {
	ai, aInt := toInt64(a)
	bi, bInt := toInt64(b)
	if aInt && bInt {
		return ai + bi, nil
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return nil, fmt.Errorf("cannot increment %T by %T", a, b)
	}
	return af + bf, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	if n, ok := toInt64(v); ok {
		return float64(n), true
	}
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func setPath(doc bson.M, path string, v any) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := asDoc(cur[p])
		if !ok {
			next = bson.M{}
		}
		nm := bson.M(next)
		cur[p] = nm
		cur = nm
	}
	cur[parts[len(parts)-1]] = v
}

func unsetPath(doc bson.M, path string) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := asDoc(cur[p])
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, parts[len(parts)-1])
}

func withID(doc bson.M) bson.M {
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = primitive.NewObjectID()
	}
	return doc
}

func copyDocs(docs []bson.M) []bson.M {
	out := make([]bson.M, len(docs))
	for i, d := range docs {
		out[i] = copyDoc(d)
	}
	return out
}

func copyDoc(doc bson.M) bson.M {
	if doc == nil {
		return nil
	}
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	if m, ok := asDoc(v); ok {
		return copyDoc(m)
	}
	if s, ok := asSlice(v); ok {
		out := make(bson.A, len(s))
		for i, x := range s {
			out[i] = copyValue(x)
		}
		return out
	}
	return v
}

var _ Collection = (*MockCollection)(nil)
