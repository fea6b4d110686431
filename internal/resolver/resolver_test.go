package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hanpama/mongograph/internal/augment"
	"github.com/hanpama/mongograph/internal/eventbus"
	"github.com/hanpama/mongograph/internal/events"
	"github.com/hanpama/mongograph/internal/mongoquery"
	"github.com/hanpama/mongograph/internal/reqid"
	"github.com/hanpama/mongograph/internal/schema"
	"github.com/hanpama/mongograph/internal/store"
)

const bookSDL = `
type Book @collection(name: "books", crud: true) {
  id: ObjectId @filter
  title: String! @filter @insert @set
  stock: Int @insert @inc @dec
}
`

type fixture struct {
	r    *Resolvers
	coll *store.MockCollection
	ctx  context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base, err := schema.BuildFromSDL("book.graphql", bookSDL)
	require.NoError(t, err)
	res, err := augment.Augment(base)
	require.NoError(t, err)
	coll := store.NewMockCollection("books")
	return &fixture{
		r:    Build(res),
		coll: coll,
		ctx:  store.WithCollections(context.Background(), store.Collections{"books": coll}),
	}
}

func (f *fixture) call(t *testing.T, root, field string, args map[string]any) any {
	t.Helper()
	out, err := f.r.Resolve(f.ctx, root, field, nil, args)
	require.NoError(t, err)
	return out
}

// seed inserts Dune, Emma and Ulysses and returns their ids in hex.
func (f *fixture) seed(t *testing.T) (dune, emma, ulysses string) {
	t.Helper()
	out := f.call(t, "Mutation", "insertManyBooks", map[string]any{"books": []any{
		map[string]any{"title": "Dune", "stock": 3},
		map[string]any{"title": "Emma", "stock": 1},
		map[string]any{"title": "Ulysses"},
	}})
	docs := out.([]any)
	require.Len(t, docs, 3)
	hex := func(i int) string { return docs[i].(bson.M)["_id"].(primitive.ObjectID).Hex() }
	return hex(0), hex(1), hex(2)
}

func titles(t *testing.T, items []any) []any {
	t.Helper()
	out := make([]any, len(items))
	for i, item := range items {
		if item == nil {
			continue
		}
		out[i] = item.(bson.M)["title"]
	}
	return out
}

func TestBindings(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.r.Has("Query", "findBooks"))
	assert.True(t, f.r.Has("BookPage", "total"))
	assert.True(t, f.r.Has("Book", "id"))
	assert.False(t, f.r.Has("Book", "title"))
	assert.Contains(t, f.r.Fields(), "Mutation.removeManyBooks")

	_, err := f.r.Resolve(f.ctx, "Query", "nope", nil, nil)
	require.EqualError(t, err, "no resolver for Query.nope")
}

func TestInsertOne(t *testing.T) {
	f := newFixture(t)
	out := f.call(t, "Mutation", "insertBook", map[string]any{
		"book": map[string]any{"title": "Dune", "stock": json.Number("3")},
	})
	doc := out.(bson.M)
	assert.Equal(t, "Dune", doc["title"])
	assert.Equal(t, int64(3), doc["stock"])
	require.IsType(t, primitive.ObjectID{}, doc["_id"])

	stored := f.coll.Docs()
	require.Len(t, stored, 1)
	assert.Equal(t, doc["_id"], stored[0]["_id"])
}

func TestFindMany(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	out := f.call(t, "Query", "findBooks", map[string]any{
		"filter": map[string]any{"title": map[string]any{"NE": "Dune"}},
	})
	page, ok := out.(*mongoquery.Page)
	require.True(t, ok)

	total, err := f.r.Resolve(f.ctx, "BookPage", "total", page, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	data, err := f.r.Resolve(f.ctx, "BookPage", "data", page, nil)
	require.NoError(t, err)
	assert.Len(t, data, 2)

	out = f.call(t, "Query", "findBooks", map[string]any{
		"sort":       map[string]any{"field": "title", "order": -1},
		"pagination": map[string]any{"page": 2, "perPage": 1},
	})
	res, err := out.(*mongoquery.Page).Resolve(f.ctx, true, true)
	require.NoError(t, err)
	require.NotNil(t, res.Total)
	assert.Equal(t, int64(3), *res.Total, "total ignores pagination")
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Emma", res.Data[0]["title"])
}

func TestFindByID(t *testing.T) {
	f := newFixture(t)
	dune, emma, _ := f.seed(t)

	out := f.call(t, "Query", "findBookById", map[string]any{"id": dune})
	assert.Equal(t, "Dune", out.(bson.M)["title"])

	out = f.call(t, "Query", "findBookById", map[string]any{
		"id":     dune,
		"filter": map[string]any{"title": map[string]any{"EQ": "Emma"}},
	})
	assert.Nil(t, out)

	missing := primitive.NewObjectID().Hex()
	out = f.call(t, "Query", "findBooksByIds", map[string]any{"ids": []any{emma, missing, dune}})
	assert.Equal(t, []any{"Emma", nil, "Dune"}, titles(t, out.([]any)))
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	dune, emma, _ := f.seed(t)

	out := f.call(t, "Mutation", "updateBook", map[string]any{
		"id":      dune,
		"bookSet": map[string]any{"title": "Dune Messiah"},
		"bookInc": map[string]any{"stock": 2},
		"bookDec": map[string]any{"stock": 1},
	})
	doc := out.(bson.M)
	assert.Equal(t, "Dune Messiah", doc["title"])
	assert.Equal(t, int64(4), doc["stock"])

	out = f.call(t, "Mutation", "updateBook", map[string]any{"id": emma})
	assert.Equal(t, "Emma", out.(bson.M)["title"], "an empty update returns the current document")

	out = f.call(t, "Mutation", "updateBook", map[string]any{
		"id":      emma,
		"filter":  map[string]any{"title": map[string]any{"EQ": "Dune"}},
		"bookSet": map[string]any{"title": "Persuasion"},
	})
	assert.Nil(t, out)

	missing := primitive.NewObjectID().Hex()
	out = f.call(t, "Mutation", "updateManyBooks", map[string]any{
		"ids":     []any{emma, missing, dune},
		"bookDec": map[string]any{"stock": 1},
	})
	items := out.([]any)
	assert.Equal(t, []any{"Emma", "Dune Messiah"}, titles(t, items))
	assert.Equal(t, int64(0), items[0].(bson.M)["stock"])
	assert.Equal(t, int64(3), items[1].(bson.M)["stock"])
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	dune, emma, ulysses := f.seed(t)

	out := f.call(t, "Mutation", "removeBook", map[string]any{"id": emma})
	assert.Equal(t, "Emma", out.(bson.M)["title"])

	out = f.call(t, "Mutation", "removeBook", map[string]any{"id": emma})
	assert.Nil(t, out)

	out = f.call(t, "Mutation", "removeManyBooks", map[string]any{"ids": []any{ulysses, emma, dune}})
	assert.Equal(t, []any{"Ulysses", "Dune"}, titles(t, out.([]any)))
	assert.Empty(t, f.coll.Docs())
}

func TestResolveID(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()

	out, err := f.r.Resolve(f.ctx, "Book", "id", bson.M{"_id": id}, nil)
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), out)

	_, err = f.r.Resolve(f.ctx, "Book", "id", "not a document", nil)
	require.EqualError(t, err, "id: unexpected parent string")
}

func TestResolveDate(t *testing.T) {
	base, err := schema.BuildFromSDL("event.graphql", `
type Event @collection(name: "events") {
  startsAt: Date
  reminders: [Date]
}
`)
	require.NoError(t, err)
	res, err := augment.Augment(base)
	require.NoError(t, err)
	r := Build(res)
	require.Equal(t, []string{"startsAt", "reminders"}, r.BoundFields("Event"))

	at := time.Date(2024, 5, 1, 12, 30, 0, 123_000_000, time.FixedZone("KST", 9*3600))
	doc := bson.M{
		"startsAt":  primitive.NewDateTimeFromTime(at),
		"reminders": bson.A{at, nil},
	}
	ctx := context.Background()

	out, err := r.Resolve(ctx, "Event", "startsAt", doc, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T03:30:00.123Z", out)

	out, err = r.Resolve(ctx, "Event", "reminders", doc, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"2024-05-01T03:30:00.123Z", nil}, out)

	out, err = r.Resolve(ctx, "Event", "startsAt", bson.M{}, nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = r.Resolve(ctx, "Event", "startsAt", bson.M{"startsAt": 42}, nil)
	require.EqualError(t, err, "serialize Date: unexpected int")
}

func TestMissingCollections(t *testing.T) {
	f := newFixture(t)
	_, err := f.r.Resolve(context.Background(), "Query", "findBookById", nil, map[string]any{
		"id": primitive.NewObjectID().Hex(),
	})
	require.EqualError(t, err, "no collections in context")
}

func TestCoercionErrors(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name  string
		field string
		args  map[string]any
		path  string
	}{
		{"unknown argument", "findBookById", map[string]any{"id": primitive.NewObjectID().Hex(), "bogus": 1}, "bogus"},
		{"malformed object id", "findBookById", map[string]any{"id": "nope"}, "id"},
		{"missing required argument", "findBookById", map[string]any{}, "id"},
		{"wrong list item", "findBooksByIds", map[string]any{"ids": []any{"nope"}}, "ids[0]"},
		{"unknown input field", "findBooks", map[string]any{"filter": map[string]any{"stock": map[string]any{}}}, "filter.stock"},
		{"unknown filter operator", "findBooks", map[string]any{"filter": map[string]any{"title": map[string]any{"LIKE": "D"}}}, "filter.title.LIKE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.r.Resolve(f.ctx, "Query", tt.field, nil, tt.args)
			var cerr *CoercionError
			require.True(t, errors.As(err, &cerr), "got %v", err)
			assert.Equal(t, tt.path, cerr.Path)
		})
	}
}

func TestCoerceScalar(t *testing.T) {
	tests := []struct {
		name   string
		scalar string
		in     any
		want   any
		fail   bool
	}{
		{"int from json number", "Int", json.Number("7"), int64(7), false},
		{"int from integral float", "Int", 7.0, int64(7), false},
		{"int overflow", "Int", int64(1) << 40, nil, true},
		{"int from fraction", "Int", 1.5, nil, true},
		{"float from int", "Float", 2, 2.0, false},
		{"float from json number", "Float", json.Number("2.5"), 2.5, false},
		{"id from number", "ID", 12, "12", false},
		{"string rejects number", "String", 1, nil, true},
		{"boolean", "Boolean", true, true, false},
		{"unset flag", "UnsetFlag", json.Number("1"), int32(1), false},
		{"unset flag other number", "UnsetFlag", 2, nil, true},
		{"custom scalar passes through", "JSON", bson.M{"a": 1}, bson.M{"a": 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerceScalar(tt.scalar, tt.in, "x")
			if tt.fail {
				var cerr *CoercionError
				require.ErrorAs(t, err, &cerr)
				assert.Equal(t, "x", cerr.Path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var started []events.ResolveStart
	var finished []events.ResolveFinish
	var calls []string
	defer eventbus.Subscribe(func(ctx context.Context, e events.ResolveStart) {
		started = append(started, e)
		id, _ := reqid.CallFromContext(ctx)
		calls = append(calls, id)
	})()
	defer eventbus.Subscribe(func(_ context.Context, e events.ResolveFinish) { finished = append(finished, e) })()

	f := newFixture(t)
	_, err := f.r.Resolve(f.ctx, "Query", "findBookById", nil, map[string]any{"id": "nope"})
	require.Error(t, err)

	require.Len(t, started, 1)
	assert.Equal(t, events.ResolveStart{ObjectType: "Query", Field: "findBookById", Entity: "Book"}, started[0])
	require.Len(t, finished, 1)
	assert.Equal(t, "Book", finished[0].Entity)
	require.Error(t, finished[0].Err)

	ctx, _ := reqid.NewContext(f.ctx)
	_, _ = f.r.Resolve(ctx, "Book", "id", bson.M{"_id": primitive.NewObjectID()}, nil)
	_, _ = f.r.Resolve(ctx, "Book", "id", bson.M{"_id": primitive.NewObjectID()}, nil)
	require.Len(t, calls, 3)
	assert.NotEmpty(t, calls[1])
	assert.NotEqual(t, calls[1], calls[2], "each resolve of one request gets its own call id")
}
