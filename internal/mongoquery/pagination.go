package mongoquery

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
)

// Pagination selects a 1-indexed page of PerPage documents.
type Pagination struct {
	Page    *int64
	PerPage *int64
}

// Sort orders by a single field; Order -1 is descending, anything else
// ascending.
type Sort struct {
	Field *string
	Order *int64
}

// Cursor is a lazily executed query result.
type Cursor interface {
	Sort(field string, order int) Cursor
	Skip(n int64) Cursor
	Limit(n int64) Cursor
	All(ctx context.Context) ([]bson.M, error)
}

// Apply sorts, then skips and limits c. Skip requires both page and perPage;
// perPage alone limits. perPage values below 1 are ignored.
func Apply(c Cursor, p *Pagination, s *Sort) Cursor {
	if s != nil && s.Field != nil && *s.Field != "" {
		order := 1
		if s.Order != nil && *s.Order == -1 {
			order = -1
		}
		c = c.Sort(*s.Field, order)
	}
	if p == nil || p.PerPage == nil || *p.PerPage < 1 {
		return c
	}
	perPage := *p.PerPage
	if p.Page != nil {
		if skip := max(*p.Page-1, 0) * perPage; skip > 0 {
			c = c.Skip(skip)
		}
	}
	return c.Limit(perPage)
}

// SliceCursor is an in-memory Cursor. Operations run in the order they were
// chained when All is called; sorting is stable.
type SliceCursor struct {
	docs []bson.M
	ops  []func([]bson.M) []bson.M
}

func NewSliceCursor(docs []bson.M) *SliceCursor {
	return &SliceCursor{docs: docs}
}

func (c *SliceCursor) with(op func([]bson.M) []bson.M) *SliceCursor {
	ops := append(append([]func([]bson.M) []bson.M(nil), c.ops...), op)
	return &SliceCursor{docs: c.docs, ops: ops}
}

func (c *SliceCursor) Sort(field string, order int) Cursor {
	return c.with(func(docs []bson.M) []bson.M {
		sorted := append([]bson.M(nil), docs...)
		sort.SliceStable(sorted, func(i, j int) bool {
			cmp, ok := CompareValues(Lookup(sorted[i], field), Lookup(sorted[j], field))
			if !ok {
				return false
			}
			if order == -1 {
				return cmp > 0
			}
			return cmp < 0
		})
		return sorted
	})
}

func (c *SliceCursor) Skip(n int64) Cursor {
	return c.with(func(docs []bson.M) []bson.M {
		if n >= int64(len(docs)) {
			return nil
		}
		return docs[n:]
	})
}

func (c *SliceCursor) Limit(n int64) Cursor {
	return c.with(func(docs []bson.M) []bson.M {
		if n > 0 && n < int64(len(docs)) {
			return docs[:n]
		}
		return docs
	})
}

func (c *SliceCursor) All(ctx context.Context) ([]bson.M, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs := append([]bson.M(nil), c.docs...)
	for _, op := range c.ops {
		docs = op(docs)
	}
	return docs, nil
}

// Lookup resolves a dotted path inside a document.
func Lookup(doc bson.M, path string) any {
	var cur any = doc
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) && path[i] != '.' {
			continue
		}
		m, ok := asMap(cur)
		if !ok {
			return nil
		}
		cur = m[path[start:i]]
		start = i + 1
	}
	return cur
}
