package docql

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// toFloat64 mirrors the teacher's helper of the same name
// (query_helpers.go): a permissive numeric coercion used throughout
// the arithmetic and comparison operators.
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toBool(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case nil:
		return false
	case float64:
		return x != 0
	case int:
		return x != 0
	case string:
		return true // a non-empty or even empty string is truthy in MongoDB; only null/undefined/false/0 are falsy
	default:
		if n, ok := toFloat64(x); ok {
			return n != 0
		}
		return true
	}
}

func isNullish(v interface{}) bool {
	return v == nil
}

func stripDollar(s string) string {
	return strings.TrimPrefix(s, "$")
}

func evalArgs(doc bson.M, operand interface{}, opt *Options, n int) ([]interface{}, error) {
	arr, ok := toSlice(operand)
	if !ok {
		return nil, newError(ErrBadArity, "docql: expected an array of %d operand(s), got %T", n, operand)
	}
	if n >= 0 && len(arr) != n {
		return nil, newError(ErrBadArity, "docql: expected %d operand(s), got %d", n, len(arr))
	}
	out := make([]interface{}, len(arr))
	for i, a := range arr {
		v, err := ComputeValue(doc, a, "", opt)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
