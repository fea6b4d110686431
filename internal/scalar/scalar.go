// Package scalar converts the ObjectId, Date and UnsetFlag scalars between
// their wire form and the values stored in MongoDB.
package scalar

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ISOLayout matches the millisecond precision UTC form MongoDB shells print.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

var ErrInvalidUnsetFlag = errors.New("unset flag must be 1")

// ParseObjectID accepts a 24 digit hex string or an ObjectID.
func ParseObjectID(v any) (primitive.ObjectID, error) {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id, nil
	case *primitive.ObjectID:
		if id == nil {
			return primitive.NilObjectID, fmt.Errorf("invalid ObjectId: nil")
		}
		return *id, nil
	case string:
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return primitive.NilObjectID, fmt.Errorf("invalid ObjectId %q: %w", id, err)
		}
		return oid, nil
	default:
		return primitive.NilObjectID, fmt.Errorf("invalid ObjectId: unexpected %T", v)
	}
}

// SerializeObjectID renders an identifier as its hex string. Strings pass
// through; other values use their String method.
func SerializeObjectID(v any) (string, error) {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	case *primitive.ObjectID:
		if id == nil {
			return "", fmt.Errorf("serialize ObjectId: nil")
		}
		return id.Hex(), nil
	case string:
		return id, nil
	case fmt.Stringer:
		return id.String(), nil
	default:
		return "", fmt.Errorf("serialize ObjectId: unexpected %T", v)
	}
}

// ParseDate accepts an RFC 3339 string, milliseconds since the epoch, a
// time.Time or a primitive.DateTime. nil and "" parse to the zero time with
// ok set to false.
func ParseDate(v any) (t time.Time, ok bool, err error) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return d, true, nil
	case primitive.DateTime:
		return d.Time(), true, nil
	case string:
		if d == "" {
			return time.Time{}, false, nil
		}
		t, err := time.Parse(time.RFC3339Nano, d)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid Date %q: %w", d, err)
		}
		return t, true, nil
	case int:
		return time.UnixMilli(int64(d)).UTC(), true, nil
	case int64:
		return time.UnixMilli(d).UTC(), true, nil
	case float64:
		return time.UnixMilli(int64(d)).UTC(), true, nil
	default:
		return time.Time{}, false, fmt.Errorf("invalid Date: unexpected %T", v)
	}
}

// SerializeDate renders dates in UTC with millisecond precision. Values
// that are not dates but implement fmt.Stringer serialize through String.
func SerializeDate(v any) (any, error) {
	switch d := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return d.UTC().Format(ISOLayout), nil
	case primitive.DateTime:
		return d.Time().UTC().Format(ISOLayout), nil
	case string:
		return d, nil
	case fmt.Stringer:
		return d.String(), nil
	default:
		return nil, fmt.Errorf("serialize Date: unexpected %T", v)
	}
}

// ParseUnsetFlag accepts only the number 1.
func ParseUnsetFlag(v any) (int32, error) {
	switch n := v.(type) {
	case int:
		if n == 1 {
			return 1, nil
		}
	case int32:
		if n == 1 {
			return 1, nil
		}
	case int64:
		if n == 1 {
			return 1, nil
		}
	case float64:
		if n == 1 {
			return 1, nil
		}
	}
	return 0, fmt.Errorf("%w, got %v", ErrInvalidUnsetFlag, v)
}
