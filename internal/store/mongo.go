package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	eventbus "github.com/hanpama/mongograph/internal/eventbus"
	events "github.com/hanpama/mongograph/internal/events"
	"github.com/hanpama/mongograph/internal/mongoquery"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client owns one MongoDB connection. It is created once at startup and
// passed explicitly; there is no package level connection.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string) (*Client, error) {
	if database == "" {
		return nil, fmt.Errorf("database name cannot be empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping %s: %w", uri, err)
	}
	return &Client{client: client, db: client.Database(database)}, nil
}

func (c *Client) Disconnect(ctx context.Context) error { return c.client.Disconnect(ctx) }

// Database returns the underlying database handle.
func (c *Client) Database() *mongo.Database { return c.db }

// Collection returns a handle for the named collection.
func (c *Client) Collection(name string) Collection {
	return NewMongoCollection(c.db.Collection(name))
}

// Collections returns handles for every name.
func (c *Client) Collections(names ...string) Collections {
	out := make(Collections, len(names))
	for _, name := range names {
		out[name] = c.Collection(name)
	}
	return out
}

type mongoCollection struct {
	coll *mongo.Collection
}

// NewMongoCollection adapts a driver collection.
func NewMongoCollection(coll *mongo.Collection) Collection {
	return &mongoCollection{coll: coll}
}

func (m *mongoCollection) Name() string { return m.coll.Name() }

func (m *mongoCollection) observe(ctx context.Context, method string, fn func() (int64, error)) error {
	start := time.Now()
	call := uuid.NewString()
	eventbus.Publish(ctx, events.StoreStart{Call: call, Collection: m.coll.Name(), Method: method})
	n, err := fn()
	eventbus.Publish(ctx, events.StoreFinish{
		Call:       call,
		Collection: m.coll.Name(),
		Method:     method,
		Documents:  n,
		Err:        err,
		Duration:   time.Since(start),
	})
	return err
}

func (m *mongoCollection) Find(filter bson.M) mongoquery.Cursor {
	return &mongoCursor{coll: m, filter: filter, opts: options.Find()}
}

func (m *mongoCollection) CountDocuments(ctx context.Context, filter bson.M) (int64, error) {
	var n int64
	err := m.observe(ctx, "countDocuments", func() (int64, error) {
		var err error
		n, err = m.coll.CountDocuments(ctx, filter)
		return n, err
	})
	return n, err
}

func (m *mongoCollection) FindOne(ctx context.Context, filter bson.M) (bson.M, error) {
	var doc bson.M
	err := m.observe(ctx, "findOne", func() (int64, error) {
		var err error
		doc, err = decodeSingle(m.coll.FindOne(ctx, filter))
		return countOf(doc), err
	})
	return doc, err
}

func (m *mongoCollection) InsertOne(ctx context.Context, doc bson.M) (any, error) {
	var id any
	err := m.observe(ctx, "insertOne", func() (int64, error) {
		res, err := m.coll.InsertOne(ctx, doc)
		if err != nil {
			return 0, err
		}
		id = res.InsertedID
		return 1, nil
	})
	return id, err
}

func (m *mongoCollection) InsertMany(ctx context.Context, docs []bson.M) ([]any, error) {
	var ids []any
	err := m.observe(ctx, "insertMany", func() (int64, error) {
		batch := make([]any, len(docs))
		for i, d := range docs {
			batch[i] = d
		}
		res, err := m.coll.InsertMany(ctx, batch)
		if err != nil {
			return 0, err
		}
		ids = res.InsertedIDs
		return int64(len(ids)), nil
	})
	return ids, err
}

func (m *mongoCollection) FindOneAndUpdate(ctx context.Context, filter, update bson.M) (bson.M, error) {
	var doc bson.M
	err := m.observe(ctx, "findOneAndUpdate", func() (int64, error) {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var err error
		doc, err = decodeSingle(m.coll.FindOneAndUpdate(ctx, filter, update, opts))
		return countOf(doc), err
	})
	return doc, err
}

func (m *mongoCollection) UpdateMany(ctx context.Context, filter, update bson.M) (int64, error) {
	var n int64
	err := m.observe(ctx, "updateMany", func() (int64, error) {
		res, err := m.coll.UpdateMany(ctx, filter, update)
		if err != nil {
			return 0, err
		}
		n = res.MatchedCount
		return n, nil
	})
	return n, err
}

func (m *mongoCollection) FindOneAndDelete(ctx context.Context, filter bson.M) (bson.M, error) {
	var doc bson.M
	err := m.observe(ctx, "findOneAndDelete", func() (int64, error) {
		var err error
		doc, err = decodeSingle(m.coll.FindOneAndDelete(ctx, filter))
		return countOf(doc), err
	})
	return doc, err
}

func (m *mongoCollection) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	var n int64
	err := m.observe(ctx, "deleteMany", func() (int64, error) {
		res, err := m.coll.DeleteMany(ctx, filter)
		if err != nil {
			return 0, err
		}
		n = res.DeletedCount
		return n, nil
	})
	return n, err
}

func decodeSingle(res *mongo.SingleResult) (bson.M, error) {
	var doc bson.M
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

func countOf(doc bson.M) int64 {
	if doc == nil {
		return 0
	}
	return 1
}

// mongoCursor accumulates find options until All runs the query.
type mongoCursor struct {
	coll   *mongoCollection
	filter bson.M
	opts   *options.FindOptions
}

func (c *mongoCursor) with(set func(*options.FindOptions)) *mongoCursor {
	opts := *c.opts
	set(&opts)
	return &mongoCursor{coll: c.coll, filter: c.filter, opts: &opts}
}

func (c *mongoCursor) Sort(field string, order int) mongoquery.Cursor {
	return c.with(func(o *options.FindOptions) { o.SetSort(bson.D{{Key: field, Value: order}}) })
}

func (c *mongoCursor) Skip(n int64) mongoquery.Cursor {
	return c.with(func(o *options.FindOptions) { o.SetSkip(n) })
}

func (c *mongoCursor) Limit(n int64) mongoquery.Cursor {
	return c.with(func(o *options.FindOptions) { o.SetLimit(n) })
}

func (c *mongoCursor) All(ctx context.Context) ([]bson.M, error) {
	var docs []bson.M
	err := c.coll.observe(ctx, "find", func() (int64, error) {
		cur, err := c.coll.coll.Find(ctx, c.filter, c.opts)
		if err != nil {
			return 0, err
		}
		if err := cur.All(ctx, &docs); err != nil {
			return 0, err
		}
		return int64(len(docs)), nil
	})
	return docs, err
}
