package resolver

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/hanpama/mongograph/internal/scalar"
	"github.com/hanpama/mongograph/internal/schema"
)

// CoercionError reports an argument value that does not fit its declared
// type.
type CoercionError struct {
	Path    string
	Message string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("argument %s: %s", e.Path, e.Message)
}

// CoerceArguments decodes raw argument values against the argument
// definitions of f. ObjectId strings become primitive.ObjectID, Date strings
// time.Time, Int int64 and Float float64. Missing arguments take their
// default value when one is declared.
func CoerceArguments(s *schema.Schema, f *schema.Field, raw map[string]any) (map[string]any, error) {
	c := &coercer{schema: s}
	out := make(map[string]any, len(raw))
	for name := range raw {
		if f.Argument(name) == nil {
			return nil, &CoercionError{Path: name, Message: fmt.Sprintf("unknown argument on field %q", f.Name)}
		}
	}
	for _, arg := range f.Arguments {
		v, present := raw[arg.Name]
		if !present {
			if arg.DefaultValue != nil {
				v, present = arg.DefaultValue.Interface(), true
			} else if arg.Type.IsNonNull() {
				return nil, &CoercionError{Path: arg.Name, Message: "required argument missing"}
			} else {
				continue
			}
		}
		coerced, err := c.value(arg.Type, v, arg.Name)
		if err != nil {
			return nil, err
		}
		out[arg.Name] = coerced
	}
	return out, nil
}

type coercer struct {
	schema *schema.Schema
}

func (c *coercer) value(ref *schema.TypeRef, v any, path string) (any, error) {
	if v == nil {
		if ref.IsNonNull() {
			return nil, &CoercionError{Path: path, Message: "must not be null"}
		}
		return nil, nil
	}
	switch ref.Kind {
	case schema.TypeRefKindNonNull:
		return c.value(ref.OfType, v, path)
	case schema.TypeRefKindList:
		items, ok := listItems(v)
		if !ok {
			// A single value is coerced to a list of one.
			item, err := c.value(ref.OfType, v, path+"[0]")
			if err != nil {
				return nil, err
			}
			return []any{item}, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			coerced, err := c.value(ref.OfType, item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = coerced
		}
		return out, nil
	}

	t := c.schema.Type(ref.Named)
	if t == nil {
		return nil, &CoercionError{Path: path, Message: fmt.Sprintf("unknown type %q", ref.Named)}
	}
	switch t.Kind {
	case schema.TypeKindScalar:
		return coerceScalar(t.Name, v, path)
	case schema.TypeKindEnum:
		s, ok := v.(string)
		if !ok {
			return nil, &CoercionError{Path: path, Message: fmt.Sprintf("enum %s expects a string, got %T", t.Name, v)}
		}
		for _, ev := range t.EnumValues {
			if ev.Name == s {
				return s, nil
			}
		}
		return nil, &CoercionError{Path: path, Message: fmt.Sprintf("%q is not a value of enum %s", s, t.Name)}
	case schema.TypeKindInputObject:
		return c.inputObject(t, v, path)
	}
	return nil, &CoercionError{Path: path, Message: fmt.Sprintf("%s is not an input type", t.Name)}
}

func (c *coercer) inputObject(t *schema.Type, v any, path string) (map[string]any, error) {
	fields, ok := v.(map[string]any)
	if !ok {
		return nil, &CoercionError{Path: path, Message: fmt.Sprintf("input %s expects an object, got %T", t.Name, v)}
	}
	for name := range fields {
		if t.InputField(name) == nil {
			return nil, &CoercionError{Path: path + "." + name, Message: fmt.Sprintf("unknown field of input %s", t.Name)}
		}
	}
	out := make(map[string]any, len(fields))
	for _, f := range t.InputFields {
		fv, present := fields[f.Name]
		if !present {
			if f.DefaultValue != nil {
				fv, present = f.DefaultValue.Interface(), true
			} else if f.Type.IsNonNull() {
				return nil, &CoercionError{Path: path + "." + f.Name, Message: "required field missing"}
			} else {
				continue
			}
		}
		coerced, err := c.value(f.Type, fv, path+"."+f.Name)
		if err != nil {
			return nil, err
		}
		out[f.Name] = coerced
	}
	return out, nil
}

func coerceScalar(name string, v any, path string) (any, error) {
	fail := func(err error) (any, error) {
		return nil, &CoercionError{Path: path, Message: err.Error()}
	}
	switch name {
	case "ObjectId":
		id, err := scalar.ParseObjectID(v)
		if err != nil {
			return fail(err)
		}
		return id, nil
	case "Date":
		t, ok, err := scalar.ParseDate(v)
		if err != nil {
			return fail(err)
		}
		if !ok {
			return nil, nil
		}
		return t, nil
	case "UnsetFlag":
		flag, err := scalar.ParseUnsetFlag(normalizeNumber(v))
		if err != nil {
			return fail(err)
		}
		return flag, nil
	case "Int":
		n, ok := toInt(normalizeNumber(v))
		if !ok {
			return fail(fmt.Errorf("Int cannot represent %v", v))
		}
		return n, nil
	case "Float":
		switch f := normalizeNumber(v).(type) {
		case int64:
			return float64(f), nil
		case float64:
			return f, nil
		}
		return fail(fmt.Errorf("Float cannot represent %v", v))
	case "String":
		s, ok := v.(string)
		if !ok {
			return fail(fmt.Errorf("String cannot represent %T", v))
		}
		return s, nil
	case "ID":
		switch id := normalizeNumber(v).(type) {
		case string:
			return id, nil
		case int64:
			return strconv.FormatInt(id, 10), nil
		}
		return fail(fmt.Errorf("ID cannot represent %T", v))
	case "Boolean":
		b, ok := v.(bool)
		if !ok {
			return fail(fmt.Errorf("Boolean cannot represent %T", v))
		}
		return b, nil
	}
	// Custom scalars pass through.
	return v, nil
}

// normalizeNumber maps the numeric types produced by decoders onto int64
// (integral values) and float64.
func normalizeNumber(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float32:
		return normalizeNumber(float64(n))
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int64(n)
		}
		return n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return v
}

func toInt(v any) (int64, bool) {
	n, ok := v.(int64)
	if !ok || n > math.MaxInt32 || n < math.MinInt32 {
		return 0, false
	}
	return n, true
}

func listItems(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, true
	}
	return nil, false
}
