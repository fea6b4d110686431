package resolver

import (
	"context"
	"fmt"

	"github.com/hanpama/mongograph/internal/augment"
	"github.com/hanpama/mongograph/internal/mongoquery"
	"github.com/hanpama/mongograph/internal/scalar"
	"github.com/hanpama/mongograph/internal/schema"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// operation resolves one generated root field against the entity's
// collection.
type operation struct {
	op augment.Operation
	// Payload argument names, read from the field definition.
	insertArg  string
	updateArgs map[augment.Capability]string
}

func newOperation(op augment.Operation, e *augment.Entity, field *schema.Field, d *augment.DerivedTypes) *operation {
	o := &operation{op: op, updateArgs: map[augment.Capability]string{}}
	for _, arg := range field.Arguments {
		named := arg.Type.GetNamedType()
		for _, c := range []augment.Capability{augment.Insert, augment.Set, augment.Inc, augment.Dec} {
			t := d.Type(c, e.Name)
			if t == nil || t.Name != named {
				continue
			}
			if c == augment.Insert {
				o.insertArg = arg.Name
			} else {
				o.updateArgs[c] = arg.Name
			}
		}
	}
	return o
}

func (o *operation) resolve(ctx context.Context, _ any, args map[string]any) (any, error) {
	coll, err := collectionFromContext(ctx, o.op.Collection)
	if err != nil {
		return nil, err
	}
	filter := storeFilter(mapArg(args, "filter"))

	switch o.op.Kind {
	case augment.FindMany:
		q := mongoquery.FindQuery(filter, mapArg(args, "textsearch"))
		p, s := paginationArg(args), sortArg(args)
		return mongoquery.NewPage(
			func(ctx context.Context) (int64, error) { return coll.CountDocuments(ctx, q) },
			func() mongoquery.Cursor { return coll.Find(q) },
			p, s,
		), nil

	case augment.FindByID:
		return nullable(coll.FindOne(ctx, mongoquery.ByID(idArg(args), filter)))

	case augment.FindByIDs:
		ids := idsArg(args)
		docs, err := coll.Find(mongoquery.ByIDs(ids, filter)).All(ctx)
		if err != nil {
			return nil, err
		}
		return alignByID(ids, docs, true), nil

	case augment.InsertOne:
		doc := storeDocument(mapArg(args, o.insertArg))
		id, err := coll.InsertOne(ctx, doc)
		if err != nil {
			return nil, err
		}
		doc["_id"] = id
		return doc, nil

	case augment.InsertMany:
		items, _ := args[o.insertArg].([]any)
		docs := make([]bson.M, len(items))
		for i, item := range items {
			m, _ := item.(map[string]any)
			docs[i] = storeDocument(m)
		}
		ids, err := coll.InsertMany(ctx, docs)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(docs))
		for i, doc := range docs {
			doc["_id"] = ids[i]
			out[i] = doc
		}
		return out, nil

	case augment.UpdateOne:
		byID := mongoquery.ByID(idArg(args), filter)
		update, err := o.update(args)
		if err != nil {
			return nil, err
		}
		if len(update) == 0 {
			return nullable(coll.FindOne(ctx, byID))
		}
		return nullable(coll.FindOneAndUpdate(ctx, byID, update))

	case augment.UpdateMany:
		ids := idsArg(args)
		matched, err := matchingIDs(ctx, coll.Find(mongoquery.ByIDs(ids, filter)))
		if err != nil {
			return nil, err
		}
		update, err := o.update(args)
		if err != nil {
			return nil, err
		}
		if len(update) > 0 && len(matched) > 0 {
			if _, err := coll.UpdateMany(ctx, mongoquery.ByIDs(matched, nil), update); err != nil {
				return nil, err
			}
		}
		docs, err := coll.Find(mongoquery.ByIDs(matched, nil)).All(ctx)
		if err != nil {
			return nil, err
		}
		return alignByID(ids, docs, false), nil

	case augment.RemoveOne:
		return nullable(coll.FindOneAndDelete(ctx, mongoquery.ByID(idArg(args), filter)))

	case augment.RemoveMany:
		ids := idsArg(args)
		docs, err := coll.Find(mongoquery.ByIDs(ids, filter)).All(ctx)
		if err != nil {
			return nil, err
		}
		if len(docs) > 0 {
			if _, err := coll.DeleteMany(ctx, mongoquery.ByIDs(documentIDs(docs), nil)); err != nil {
				return nil, err
			}
		}
		return alignByID(ids, docs, false), nil
	}
	return nil, fmt.Errorf("unsupported operation kind %s", o.op.Kind)
}

// update builds the update document from the set, inc and dec payloads.
func (o *operation) update(args map[string]any) (bson.M, error) {
	tree := map[string]any{}
	for c, key := range map[augment.Capability]string{augment.Set: "SET", augment.Inc: "INC", augment.Dec: "DEC"} {
		name, ok := o.updateArgs[c]
		if !ok {
			continue
		}
		if payload := mapArg(args, name); len(payload) > 0 {
			tree[key] = payload
		}
	}
	if len(tree) == 0 {
		return nil, nil
	}
	return mongoquery.TranslateUpdate(tree)
}

func matchingIDs(ctx context.Context, cur mongoquery.Cursor) ([]primitive.ObjectID, error) {
	docs, err := cur.All(ctx)
	if err != nil {
		return nil, err
	}
	return documentIDs(docs), nil
}

func documentIDs(docs []bson.M) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		if id, ok := d["_id"].(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// alignByID orders docs like ids. Misses become nil entries when keepMisses
// is set and are dropped otherwise.
func alignByID(ids []primitive.ObjectID, docs []bson.M, keepMisses bool) []any {
	byID := make(map[primitive.ObjectID]bson.M, len(docs))
	for _, d := range docs {
		if id, ok := d["_id"].(primitive.ObjectID); ok {
			byID[id] = d
		}
	}
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		doc, ok := byID[id]
		switch {
		case ok:
			out = append(out, doc)
		case keepMisses:
			out = append(out, nil)
		}
	}
	return out
}

// nullable turns a missing document into an untyped nil result.
func nullable(doc bson.M, err error) (any, error) {
	if err != nil || doc == nil {
		return nil, err
	}
	return doc, nil
}

// storeFilter maps the entity id field onto the document key.
func storeFilter(filter map[string]any) map[string]any {
	if filter == nil {
		return nil
	}
	if _, ok := filter["id"]; !ok {
		return filter
	}
	out := make(map[string]any, len(filter))
	for k, v := range filter {
		if k == "id" {
			k = "_id"
		}
		out[k] = v
	}
	return out
}

func storeDocument(payload map[string]any) bson.M {
	doc := make(bson.M, len(payload))
	for k, v := range payload {
		if k == "id" {
			k = "_id"
		}
		doc[k] = v
	}
	return doc
}

func mapArg(args map[string]any, name string) map[string]any {
	m, _ := args[name].(map[string]any)
	return m
}

func idArg(args map[string]any) primitive.ObjectID {
	id, _ := args["id"].(primitive.ObjectID)
	return id
}

func idsArg(args map[string]any) []primitive.ObjectID {
	items, _ := args["ids"].([]any)
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		if id, ok := item.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func paginationArg(args map[string]any) *mongoquery.Pagination {
	m := mapArg(args, "pagination")
	if m == nil {
		return nil
	}
	return &mongoquery.Pagination{Page: int64Field(m, "page"), PerPage: int64Field(m, "perPage")}
}

func sortArg(args map[string]any) *mongoquery.Sort {
	m := mapArg(args, "sort")
	if m == nil {
		return nil
	}
	s := &mongoquery.Sort{Order: int64Field(m, "order")}
	if field, ok := m["field"].(string); ok {
		if field == "id" {
			field = "_id"
		}
		s.Field = &field
	}
	return s
}

func int64Field(m map[string]any, key string) *int64 {
	n, ok := m[key].(int64)
	if !ok {
		return nil
	}
	return &n
}

func resolvePageTotal(ctx context.Context, parent any, _ map[string]any) (any, error) {
	page, ok := parent.(*mongoquery.Page)
	if !ok {
		return nil, fmt.Errorf("page total: unexpected parent %T", parent)
	}
	return page.Total(ctx)
}

func resolvePageData(ctx context.Context, parent any, _ map[string]any) (any, error) {
	page, ok := parent.(*mongoquery.Page)
	if !ok {
		return nil, fmt.Errorf("page data: unexpected parent %T", parent)
	}
	return page.Data(ctx)
}

// resolveID exposes the document _id as the entity id in hex form.
func resolveID(_ context.Context, parent any, _ map[string]any) (any, error) {
	doc, err := parentDocument("id", parent)
	if err != nil {
		return nil, err
	}
	id, ok := doc["_id"]
	if !ok || id == nil {
		return doc["id"], nil
	}
	return scalar.SerializeObjectID(id)
}

// dateResolver serializes the named Date field, or each element of a Date
// list, in ISO-8601 form.
func dateResolver(field string) Func {
	return func(_ context.Context, parent any, _ map[string]any) (any, error) {
		doc, err := parentDocument(field, parent)
		if err != nil {
			return nil, err
		}
		v := doc[field]
		items, ok := listItems(v)
		if !ok {
			if a, isArray := v.(bson.A); isArray {
				items, ok = a, true
			}
		}
		if !ok {
			return scalar.SerializeDate(v)
		}
		out := make([]any, len(items))
		for i, item := range items {
			if out[i], err = scalar.SerializeDate(item); err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
			}
		}
		return out, nil
	}
}

func parentDocument(field string, parent any) (map[string]any, error) {
	switch p := parent.(type) {
	case bson.M:
		return p, nil
	case map[string]any:
		return p, nil
	}
	return nil, fmt.Errorf("%s: unexpected parent %T", field, parent)
}
