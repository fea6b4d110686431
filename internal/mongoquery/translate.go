// Package mongoquery translates the structured arguments of the generated
// operations into MongoDB query and update documents and applies pagination
// to result cursors.
package mongoquery

import (
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
)

// RenameTable maps argument keys to MongoDB operators. Keys missing from the
// table are kept verbatim.
type RenameTable map[string]string

var FilterOperators = RenameTable{
	"EQ":     "$eq",
	"GT":     "$gt",
	"GTE":    "$gte",
	"IN":     "$in",
	"ALL":    "$all",
	"LT":     "$lt",
	"LTE":    "$lte",
	"NE":     "$ne",
	"NIN":    "$nin",
	"OR":     "$or",
	"AND":    "$and",
	"NOR":    "$nor",
	"NOT":    "$not",
	"TEXT":   "$text",
	"SEARCH": "$search",
}

var UpdateOperators = RenameTable{
	"SET":   "$set",
	"INC":   "$inc",
	"UNSET": "$unset",
}

var TextSearchFields = RenameTable{
	"search":              "$search",
	"language":            "$language",
	"caseSensitive":       "$caseSensitive",
	"diacriticSensitive":  "$diacriticSensitive",
	"SEARCH":              "$search",
	"LANGUAGE":            "$language",
	"CASE_SENSITIVE":      "$caseSensitive",
	"DIACRITIC_SENSITIVE": "$diacriticSensitive",
}

// DeepKeyRename renames the keys of every map in v, at every depth and
// inside slices. Values are never changed: scalars, dates, ObjectIDs and
// other non-map values are returned as they are. Maps become bson.M, slices
// bson.A and bson.D keeps its order.
func DeepKeyRename(table RenameTable, v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bson.M:
		return renameMap(table, x)
	case map[string]any:
		return renameMap(table, x)
	case bson.D:
		out := make(bson.D, len(x))
		for i, e := range x {
			out[i] = bson.E{Key: table.rename(e.Key), Value: DeepKeyRename(table, e.Value)}
		}
		return out
	case bson.A:
		return renameSlice(table, x)
	case []any:
		return renameSlice(table, x)
	case []byte:
		return x
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		out := make(bson.A, rv.Len())
		for i := range out {
			out[i] = DeepKeyRename(table, rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(bson.M, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[table.rename(iter.Key().String())] = DeepKeyRename(table, iter.Value().Interface())
		}
		return out
	}
	return v
}

func (t RenameTable) rename(key string) string {
	if op, ok := t[key]; ok {
		return op
	}
	return key
}

func renameMap(table RenameTable, m map[string]any) bson.M {
	out := make(bson.M, len(m))
	for k, v := range m {
		out[table.rename(k)] = DeepKeyRename(table, v)
	}
	return out
}

func renameSlice(table RenameTable, s []any) bson.A {
	out := make(bson.A, len(s))
	for i, v := range s {
		out[i] = DeepKeyRename(table, v)
	}
	return out
}

// TranslateFilter converts a filter tree into a query document. A nil tree
// yields an empty document.
func TranslateFilter(tree map[string]any) bson.M {
	if tree == nil {
		return bson.M{}
	}
	return renameMap(FilterOperators, tree)
}

// TranslateTextSearch converts text search arguments into the body of a
// $text operator. Unset arguments are dropped; nil means no text search.
func TranslateTextSearch(tree map[string]any) bson.M {
	if tree == nil {
		return nil
	}
	out := bson.M{}
	for k, v := range tree {
		if v == nil {
			continue
		}
		out[TextSearchFields.rename(k)] = DeepKeyRename(TextSearchFields, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// TranslateUpdate converts an update tree into an update document. DEC has
// no MongoDB counterpart: its numeric leaves are negated and merged into INC
// before renaming. An INC and a DEC of the same field are summed; a pair that
// cannot be summed is an error.
func TranslateUpdate(tree map[string]any) (bson.M, error) {
	if tree == nil {
		return bson.M{}, nil
	}
	folded, err := foldDec(tree)
	if err != nil {
		return nil, err
	}
	return renameMap(UpdateOperators, folded), nil
}

func foldDec(tree map[string]any) (map[string]any, error) {
	dec, ok := asMap(tree["DEC"])
	if !ok {
		return tree, nil
	}
	out := make(map[string]any, len(tree))
	for k, v := range tree {
		if k != "DEC" && k != "INC" {
			out[k] = v
		}
	}
	inc := map[string]any{}
	if existing, ok := asMap(tree["INC"]); ok {
		for k, v := range existing {
			inc[k] = v
		}
	}
	if err := mergeIncrements(inc, negate(dec).(map[string]any), ""); err != nil {
		return nil, err
	}
	if len(inc) > 0 {
		out["INC"] = inc
	}
	return out, nil
}

// mergeIncrements adds the leaves of delta into inc, descending into nested
// documents present on both sides.
func mergeIncrements(inc, delta map[string]any, prefix string) error {
	for k, v := range delta {
		cur, ok := inc[k]
		if !ok {
			inc[k] = v
			continue
		}
		if sum, ok := addNumbers(cur, v); ok {
			inc[k] = sum
			continue
		}
		curDoc, curOK := asMap(cur)
		vDoc, vOK := v.(map[string]any)
		if !curOK || !vOK {
			return fmt.Errorf("INC and DEC of %s cannot be combined: %T and %T", prefix+k, cur, v)
		}
		merged := make(map[string]any, len(curDoc))
		for ck, cv := range curDoc {
			merged[ck] = cv
		}
		if err := mergeIncrements(merged, vDoc, prefix+k+"."); err != nil {
			return err
		}
		inc[k] = merged
	}
	return nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case bson.M:
		return m, true
	}
	return nil, false
}

func negate(v any) any {
	switch n := v.(type) {
	case int:
		return -n
	case int32:
		return -n
	case int64:
		return -n
	case float32:
		return -n
	case float64:
		return -n
	}
	if m, ok := asMap(v); ok {
		out := make(map[string]any, len(m))
		for k, x := range m {
			out[k] = negate(x)
		}
		return out
	}
	return v
}

func addNumbers(a, b any) (any, bool) {
	fa, aInt, okA := number(a)
	fb, bInt, okB := number(b)
	if !okA || !okB {
		return nil, false
	}
	if aInt && bInt {
		return int64(fa) + int64(fb), true
	}
	return fa + fb, true
}

func number(v any) (f float64, isInt, ok bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true, true
	case int32:
		return float64(n), true, true
	case int64:
		return float64(n), true, true
	case float32:
		return float64(n), false, true
	case float64:
		return n, false, true
	}
	return 0, false, false
}
