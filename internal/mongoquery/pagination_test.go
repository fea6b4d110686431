package mongoquery

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func ranked(n int) []bson.M {
	docs := make([]bson.M, n)
	for i := range docs {
		// Inserted in reverse so sorting is observable.
		docs[i] = bson.M{"rank": int64(n - i), "meta": bson.M{"group": int64((n - i) % 2)}}
	}
	return docs
}

func ranks(t *testing.T, docs []bson.M) []int64 {
	t.Helper()
	out := make([]int64, len(docs))
	for i, d := range docs {
		out[i] = d["rank"].(int64)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func TestApply(t *testing.T) {
	ctx := context.Background()
	for name, tc := range map[string]struct {
		p    *Pagination
		s    *Sort
		want []int64
	}{
		"second page of three": {
			p:    &Pagination{Page: ptr[int64](2), PerPage: ptr[int64](3)},
			s:    &Sort{Field: ptr("rank")},
			want: []int64{4, 5, 6},
		},
		"descending": {
			p:    &Pagination{PerPage: ptr[int64](2)},
			s:    &Sort{Field: ptr("rank"), Order: ptr[int64](-1)},
			want: []int64{10, 9},
		},
		"page below one skips nothing": {
			p:    &Pagination{Page: ptr[int64](0), PerPage: ptr[int64](2)},
			s:    &Sort{Field: ptr("rank"), Order: ptr[int64](1)},
			want: []int64{1, 2},
		},
		"page without perPage": {
			p:    &Pagination{Page: ptr[int64](3)},
			s:    &Sort{Field: ptr("rank")},
			want: []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
		"perPage below one is ignored": {
			p:    &Pagination{Page: ptr[int64](2), PerPage: ptr[int64](0)},
			want: []int64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
		},
		"past the end": {
			p:    &Pagination{Page: ptr[int64](5), PerPage: ptr[int64](3)},
			s:    &Sort{Field: ptr("rank")},
			want: []int64{},
		},
		"nested sort field is stable": {
			s:    &Sort{Field: ptr("meta.group")},
			want: []int64{10, 8, 6, 4, 2, 9, 7, 5, 3, 1},
		},
	} {
		t.Run(name, func(t *testing.T) {
			docs, err := Apply(NewSliceCursor(ranked(10)), tc.p, tc.s).All(ctx)
			require.NoError(t, err)
			require.Equal(t, tc.want, ranks(t, docs))
		})
	}
}

// recorder captures the order in which cursor operations are chained.
type recorder struct{ calls *[]string }

func (r recorder) Sort(field string, order int) Cursor {
	*r.calls = append(*r.calls, "sort")
	return r
}

func (r recorder) Skip(n int64) Cursor {
	*r.calls = append(*r.calls, "skip")
	return r
}

func (r recorder) Limit(n int64) Cursor {
	*r.calls = append(*r.calls, "limit")
	return r
}

func (r recorder) All(context.Context) ([]bson.M, error) { return nil, nil }

func TestApplySortsBeforePaging(t *testing.T) {
	var calls []string
	Apply(recorder{&calls}, &Pagination{Page: ptr[int64](3), PerPage: ptr[int64](5)}, &Sort{Field: ptr("title")})
	require.Equal(t, []string{"sort", "skip", "limit"}, calls)
}

func TestSliceCursorIsImmutable(t *testing.T) {
	ctx := context.Background()
	base := NewSliceCursor(ranked(4))
	limited := base.Limit(1)

	all, err := base.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	one, err := limited.All(ctx)
	require.NoError(t, err)
	require.Len(t, one, 1)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = base.All(cancelled)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPageThunksAreIndependent(t *testing.T) {
	ctx := context.Background()
	var counts, cursors atomic.Int32
	page := NewPage(
		func(context.Context) (int64, error) {
			counts.Add(1)
			return 10, nil
		},
		func() Cursor {
			cursors.Add(1)
			return NewSliceCursor(ranked(10))
		},
		&Pagination{Page: ptr[int64](2), PerPage: ptr[int64](3)},
		&Sort{Field: ptr("rank")},
	)

	docs, err := page.Data(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{4, 5, 6}, ranks(t, docs))
	require.EqualValues(t, 0, counts.Load())

	total, err := page.Total(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 10, total)
	require.EqualValues(t, 1, cursors.Load())

	_, err = page.Data(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, cursors.Load())
}

func TestPageResolve(t *testing.T) {
	ctx := context.Background()
	var counted atomic.Bool
	page := NewPage(
		func(context.Context) (int64, error) {
			counted.Store(true)
			return 10, nil
		},
		func() Cursor { return NewSliceCursor(ranked(10)) },
		&Pagination{PerPage: ptr[int64](2)},
		nil,
	)

	res, err := page.Resolve(ctx, false, true)
	require.NoError(t, err)
	require.Nil(t, res.Total)
	require.Len(t, res.Data, 2)
	require.False(t, counted.Load())

	res, err = page.Resolve(ctx, true, true)
	require.NoError(t, err)
	require.EqualValues(t, 10, *res.Total)
	require.Len(t, res.Data, 2)
}

func TestPageResolveError(t *testing.T) {
	boom := errors.New("count failed")
	page := NewPage(
		func(context.Context) (int64, error) { return 0, boom },
		func() Cursor { return NewSliceCursor(nil) },
		nil, nil,
	)
	_, err := page.Resolve(context.Background(), true, true)
	require.ErrorIs(t, err, boom)
}

func TestLookup(t *testing.T) {
	doc := bson.M{"a": bson.M{"b": map[string]any{"c": 1}}}
	require.Equal(t, 1, Lookup(doc, "a.b.c"))
	require.Nil(t, Lookup(doc, "a.x.c"))
	require.Nil(t, Lookup(doc, "a.b.c.d"))
}
