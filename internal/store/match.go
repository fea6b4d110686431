package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/hanpama/mongograph/internal/mongoquery"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrUnsupportedOperator is returned by the in-memory collection for
// operators it does not evaluate, such as $text.
var ErrUnsupportedOperator = errors.New("unsupported operator")

// Matches evaluates a query document against doc using the operator subset
// produced by mongoquery.
func Matches(doc bson.M, filter bson.M) (bool, error) {
	for key, cond := range filter {
		var (
			ok  bool
			err error
		)
		switch key {
		case "$and", "$or", "$nor":
			ok, err = matchLogical(doc, key, cond)
		default:
			if strings.HasPrefix(key, "$") {
				return false, fmt.Errorf("%w: %s", ErrUnsupportedOperator, key)
			}
			ok, err = matchField(mongoquery.Lookup(doc, key), cond)
		}
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchLogical(doc bson.M, op string, cond any) (bool, error) {
	clauses, ok := asSlice(cond)
	if !ok {
		return false, fmt.Errorf("%s requires an array", op)
	}
	for _, c := range clauses {
		sub, ok := asDoc(c)
		if !ok {
			return false, fmt.Errorf("%s clauses must be documents", op)
		}
		matched, err := Matches(doc, sub)
		if err != nil {
			return false, err
		}
		switch {
		case op == "$and" && !matched:
			return false, nil
		case op == "$or" && matched:
			return true, nil
		case op == "$nor" && matched:
			return false, nil
		}
	}
	return op != "$or", nil
}

func matchField(value, cond any) (bool, error) {
	ops, ok := asDoc(cond)
	if !ok || !isOperatorDoc(ops) {
		return equalsOrContains(value, cond), nil
	}
	for op, operand := range ops {
		ok, err := matchOperator(value, op, operand)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchOperator(value any, op string, operand any) (bool, error) {
	switch op {
	case "$eq":
		return equalsOrContains(value, operand), nil
	case "$ne":
		return !equalsOrContains(value, operand), nil
	case "$gt", "$gte", "$lt", "$lte":
		return anyElement(value, func(v any) bool {
			if kindMismatch(v, operand) {
				return false
			}
			cmp, ok := mongoquery.CompareValues(v, operand)
			if !ok {
				return false
			}
			switch op {
			case "$gt":
				return cmp > 0
			case "$gte":
				return cmp >= 0
			case "$lt":
				return cmp < 0
			}
			return cmp <= 0
		}), nil
	case "$in", "$nin":
		candidates, ok := asSlice(operand)
		if !ok {
			return false, fmt.Errorf("%s requires an array", op)
		}
		found := false
		for _, c := range candidates {
			if equalsOrContains(value, c) {
				found = true
				break
			}
		}
		return found == (op == "$in"), nil
	case "$all":
		required, ok := asSlice(operand)
		if !ok {
			return false, fmt.Errorf("$all requires an array")
		}
		if _, isArray := asSlice(value); !isArray {
			return false, nil
		}
		for _, r := range required {
			if !equalsOrContains(value, r) {
				return false, nil
			}
		}
		return len(required) > 0, nil
	case "$not":
		ok, err := matchField(value, operand)
		return !ok, err
	}
	return false, fmt.Errorf("%w: %s", ErrUnsupportedOperator, op)
}

// equalsOrContains is MongoDB equality: an array field matches when it
// equals the operand or one of its elements does.
func equalsOrContains(value, operand any) bool {
	if valuesEqual(value, operand) {
		return true
	}
	if items, ok := asSlice(value); ok {
		for _, item := range items {
			if valuesEqual(item, operand) {
				return true
			}
		}
	}
	return false
}

func anyElement(value any, pred func(any) bool) bool {
	if items, ok := asSlice(value); ok {
		for _, item := range items {
			if pred(item) {
				return true
			}
		}
		return false
	}
	return pred(value)
}

// kindMismatch reports whether range operators must not compare a and b.
// MongoDB only compares values of the same type bracket.
func kindMismatch(a, b any) bool { return bracket(a) != bracket(b) }

func bracket(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case int, int32, int64, float32, float64:
		return "number"
	case string:
		return "string"
	case primitive.ObjectID:
		return "objectId"
	case bool:
		return "bool"
	case time.Time, primitive.DateTime:
		return "date"
	}
	return fmt.Sprintf("%T", v)
}

func valuesEqual(a, b any) bool {
	if cmp, ok := mongoquery.CompareValues(a, b); ok {
		return cmp == 0
	}
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func isOperatorDoc(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

func asDoc(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]any:
		return m, true
	case bson.D:
		out := make(map[string]any, len(m))
		for _, e := range m {
			out[e.Key] = e.Value
		}
		return out, true
	}
	return nil, false
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case bson.A:
		return s, true
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, true
	case []primitive.ObjectID:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, true
	}
	return nil, false
}

// normalize converts nested bson containers to plain maps and slices so
// reflect.DeepEqual ignores the named types.
func normalize(v any) any {
	if m, ok := asDoc(v); ok {
		out := make(map[string]any, len(m))
		for k, x := range m {
			out[k] = normalize(x)
		}
		return out
	}
	if s, ok := asSlice(v); ok {
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = normalize(x)
		}
		return out
	}
	return v
}
