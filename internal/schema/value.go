package schema

import "strconv"

type ValueKind string

const (
	ValueKindVariable ValueKind = "VARIABLE"
	ValueKindInt      ValueKind = "INT"
	ValueKindFloat    ValueKind = "FLOAT"
	ValueKindString   ValueKind = "STRING"
	ValueKindBoolean  ValueKind = "BOOLEAN"
	ValueKindNull     ValueKind = "NULL"
	ValueKindEnum     ValueKind = "ENUM"
	ValueKindList     ValueKind = "LIST"
	ValueKindObject   ValueKind = "OBJECT"
)

// Value is a literal appearing as a directive argument or default value.
type Value struct {
	Kind   ValueKind
	Raw    string
	List   []*Value
	Fields []*ObjectField
}

type ObjectField struct {
	Name  string
	Value *Value
}

func StringValue(s string) *Value { return &Value{Kind: ValueKindString, Raw: s} }
func EnumValueOf(s string) *Value { return &Value{Kind: ValueKindEnum, Raw: s} }
func BooleanValue(b bool) *Value {
	return &Value{Kind: ValueKindBoolean, Raw: strconv.FormatBool(b)}
}
func IntValue(i int64) *Value {
	return &Value{Kind: ValueKindInt, Raw: strconv.FormatInt(i, 10)}
}

// Interface converts the literal into plain Go values: string, bool, int64,
// float64, []any and map[string]any. Enum values become strings and
// variables become nil.
func (v *Value) Interface() any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case ValueKindString, ValueKindEnum:
		return v.Raw
	case ValueKindBoolean:
		return v.Raw == "true"
	case ValueKindInt:
		n, err := strconv.ParseInt(v.Raw, 10, 64)
		if err != nil {
			return v.Raw
		}
		return n
	case ValueKindFloat:
		f, err := strconv.ParseFloat(v.Raw, 64)
		if err != nil {
			return v.Raw
		}
		return f
	case ValueKindList:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			out[i] = item.Interface()
		}
		return out
	case ValueKindObject:
		out := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			out[f.Name] = f.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal reports structural equality of two literals.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.Kind != o.Kind || v.Raw != o.Raw || len(v.List) != len(o.List) || len(v.Fields) != len(o.Fields) {
		return false
	}
	for i := range v.List {
		if !v.List[i].Equal(o.List[i]) {
			return false
		}
	}
	for i := range v.Fields {
		if v.Fields[i].Name != o.Fields[i].Name || !v.Fields[i].Value.Equal(o.Fields[i].Value) {
			return false
		}
	}
	return true
}
