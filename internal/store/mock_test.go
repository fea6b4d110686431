package store

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMockCollectionCRUD(t *testing.T) {
	ctx := context.Background()
	coll := NewMockCollection("books")

	input := bson.M{"title": "Dune", "stock": 3}
	id, err := coll.InsertOne(ctx, input)
	require.NoError(t, err)
	require.IsType(t, primitive.ObjectID{}, id)
	_, mutated := input["_id"]
	assert.False(t, mutated, "caller document gains no _id")

	ids, err := coll.InsertMany(ctx, []bson.M{
		{"_id": "emma", "title": "Emma", "stock": 1},
		{"_id": "ulysses", "title": "Ulysses", "stock": 0},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"emma", "ulysses"}, ids)

	_, err = coll.InsertOne(ctx, bson.M{"_id": "emma"})
	require.ErrorContains(t, err, "duplicate key")

	n, err := coll.CountDocuments(ctx, bson.M{"stock": bson.M{"$gt": 0}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	found, err := coll.FindOne(ctx, bson.M{"_id": id})
	require.NoError(t, err)
	assert.Equal(t, "Dune", found["title"])
	found["title"] = "changed"
	again, err := coll.FindOne(ctx, bson.M{"_id": id})
	require.NoError(t, err)
	assert.Equal(t, "Dune", again["title"], "returned documents are copies")

	missing, err := coll.FindOne(ctx, bson.M{"title": "Nope"})
	require.NoError(t, err)
	assert.Nil(t, missing)

	updated, err := coll.FindOneAndUpdate(ctx, bson.M{"_id": "emma"}, bson.M{"$inc": bson.M{"stock": -1}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated["stock"])

	count, err := coll.UpdateMany(ctx, bson.M{"stock": 0}, bson.M{"$set": bson.M{"soldOut": true}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	removed, err := coll.FindOneAndDelete(ctx, bson.M{"_id": "ulysses"})
	require.NoError(t, err)
	assert.Equal(t, "Ulysses", removed["title"])

	count, err = coll.DeleteMany(ctx, bson.M{"soldOut": true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	docs := coll.Docs()
	require.Len(t, docs, 1)
	assert.Equal(t, "Dune", docs[0]["title"])
}

func TestMockCursor(t *testing.T) {
	ctx := context.Background()
	coll := NewMockCollection("books",
		bson.M{"_id": 1, "rank": 3},
		bson.M{"_id": 2, "rank": 1},
		bson.M{"_id": 3, "rank": 2},
		bson.M{"_id": 4, "rank": 5},
	)

	base := coll.Find(bson.M{"rank": bson.M{"$lt": 5}})
	docs, err := base.Sort("rank", -1).Skip(1).Limit(1).All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []bson.M{{"_id": 3, "rank": 2}}, docs)

	all, err := base.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3, "chained calls leave the base cursor untouched")

	_, err = coll.Find(bson.M{"$text": bson.M{"$search": "x"}}).All(ctx)
	require.ErrorIs(t, err, ErrUnsupportedOperator)
}

func TestApplyUpdate(t *testing.T) {
	doc := bson.M{
		"title": "Dune",
		"stock": int32(2),
		"price": 9.5,
		"meta":  bson.M{"rank": 1, "note": "x"},
	}

	got, err := ApplyUpdate(doc, bson.M{
		"$set":   bson.M{"title": "Dune Messiah", "meta.rank": 2, "extra.flag": true},
		"$unset": bson.M{"meta.note": 1},
		"$inc":   bson.M{"stock": int64(3), "price": 0.5, "fresh": 1},
	})
	require.NoError(t, err)

	want := bson.M{
		"title": "Dune Messiah",
		"stock": int64(5),
		"price": 10.0,
		"fresh": 1,
		"meta":  bson.M{"rank": 2},
		"extra": bson.M{"flag": true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ApplyUpdate mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, bson.M{"rank": 1, "note": "x"}, doc["meta"], "input document is not mutated")

	_, err = ApplyUpdate(doc, bson.M{"$inc": bson.M{"title": 1}})
	require.ErrorContains(t, err, "cannot increment string")

	_, err = ApplyUpdate(doc, bson.M{"$push": bson.M{"tags": "x"}})
	require.ErrorIs(t, err, ErrUnsupportedOperator)

	_, err = ApplyUpdate(doc, bson.M{"$set": "title"})
	require.EqualError(t, err, "$set requires a document")
}

func TestCollectionsRegistry(t *testing.T) {
	colls := NewMockCollections("books", "authors")
	assert.Equal(t, []string{"authors", "books"}, colls.Names())

	_, err := colls.Get("reviews")
	require.EqualError(t, err, `collection "reviews" is not registered`)

	ctx := WithCollections(context.Background(), colls)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "books", got["books"].Name())
}
