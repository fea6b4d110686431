package mongoquery

import (
	"bytes"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompareValues orders two BSON values. Values of different kinds are
// ordered by kind the way MongoDB does: null, numbers, strings, ObjectIDs,
// booleans, dates. It reports false when the values are not comparable.
func CompareValues(a, b any) (int, bool) {
	ka, kb := kindRank(a), kindRank(b)
	if ka < 0 || kb < 0 {
		return 0, false
	}
	if ka != kb {
		if ka < kb {
			return -1, true
		}
		return 1, true
	}
	switch ka {
	case rankNull:
		return 0, true
	case rankNumber:
		fa, _, _ := number(a)
		fb, _, _ := number(b)
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	case rankString:
		return strings.Compare(a.(string), b.(string)), true
	case rankObjectID:
		ia, ib := a.(primitive.ObjectID), b.(primitive.ObjectID)
		return bytes.Compare(ia[:], ib[:]), true
	case rankBool:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0, true
		case !ba:
			return -1, true
		}
		return 1, true
	case rankDate:
		return asTime(a).Compare(asTime(b)), true
	}
	return 0, false
}

const (
	rankNull = iota
	rankNumber
	rankString
	rankObjectID
	rankBool
	rankDate
)

func kindRank(v any) int {
	switch v.(type) {
	case nil:
		return rankNull
	case int, int32, int64, float32, float64:
		return rankNumber
	case string:
		return rankString
	case primitive.ObjectID:
		return rankObjectID
	case bool:
		return rankBool
	case time.Time, primitive.DateTime:
		return rankDate
	}
	return -1
}

func asTime(v any) time.Time {
	if d, ok := v.(primitive.DateTime); ok {
		return d.Time()
	}
	return v.(time.Time)
}
