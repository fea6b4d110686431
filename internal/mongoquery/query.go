package mongoquery

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FindQuery builds the query document of a find-many operation. $text is
// added only when at least one text search argument is set.
func FindQuery(filter, textsearch map[string]any) bson.M {
	q := TranslateFilter(filter)
	if ts := TranslateTextSearch(textsearch); ts != nil {
		q["$text"] = ts
	}
	return q
}

// ByID matches the document with the given _id that also satisfies filter.
func ByID(id primitive.ObjectID, filter map[string]any) bson.M {
	return and(bson.M{"_id": id}, TranslateFilter(filter))
}

// ByIDs matches the documents whose _id is in ids and that also satisfy
// filter.
func ByIDs(ids []primitive.ObjectID, filter map[string]any) bson.M {
	in := make(bson.A, len(ids))
	for i, id := range ids {
		in[i] = id
	}
	return and(bson.M{"_id": bson.M{"$in": in}}, TranslateFilter(filter))
}

// and merges two query documents, falling back to $and when they share a
// key.
func and(a, b bson.M) bson.M {
	if len(b) == 0 {
		return a
	}
	out := make(bson.M, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if _, clash := out[k]; clash {
			return bson.M{"$and": bson.A{a, b}}
		}
		out[k] = v
	}
	return out
}
