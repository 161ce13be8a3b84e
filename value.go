package docql

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Kind is the value-utilities type tag described in spec.md §4.1. It
// deliberately mirrors BSON's own type vocabulary rather than Go's,
// since every document this package touches originated as (or is
// destined to become) a MongoDB wire document.
type Kind string

const (
	KindArray     Kind = "array"
	KindObject    Kind = "object"
	KindString    Kind = "string"
	KindNumber    Kind = "number"
	KindBoolean   Kind = "boolean"
	KindDate      Kind = "date"
	KindRegexp    Kind = "regexp"
	KindNull      Kind = "null"
	KindUndefined Kind = "undefined"
	KindFunction  Kind = "function"
)

// TypeOf returns the Kind of v, following the six primitive kinds plus
// array/object/null/undefined/function from spec.md §4.1.
func TypeOf(v interface{}) Kind {
	switch v.(type) {
	case nil:
		return KindUndefined
	case bson.A, []interface{}, []bson.M:
		return KindArray
	case bson.M, map[string]interface{}, bson.D:
		return KindObject
	case string:
		return KindString
	case bool:
		return KindBoolean
	case int, int32, int64, float32, float64:
		return KindNumber
	case time.Time:
		return KindDate
	case *regexp.Regexp:
		return KindRegexp
	case func(bson.M) interface{}:
		return KindFunction
	default:
		return KindObject
	}
}

// bsonTypeCode maps a Kind plus an int-width hint onto the MongoDB
// numeric type codes enumerated in spec.md §4.4: {1,2,3,4,5,8,9,10,11,16,18}.
func bsonTypeCode(v interface{}) int {
	switch x := v.(type) {
	case float64, float32:
		return int(bson.TypeDouble) // 1
	case string:
		return int(bson.TypeString) // 2
	case bson.M, map[string]interface{}, bson.D:
		return int(bson.TypeEmbeddedDocument) // 3
	case bson.A, []interface{}, []bson.M:
		return int(bson.TypeArray) // 4
	case []byte:
		return int(bson.TypeBinary) // 5
	case bool:
		return int(bson.TypeBoolean) // 8
	case time.Time:
		return int(bson.TypeDateTime) // 9
	case nil:
		return int(bson.TypeNull) // 10
	case *regexp.Regexp:
		return int(bson.TypeRegex) // 11
	case int, int32:
		return int(bson.TypeInt32) // 16
	case int64:
		return int(bson.TypeInt64) // 18
	default:
		_ = x
		return -1
	}
}

// IsEqual implements spec.md §4.1's strict equality: NaN equal to NaN,
// dates and regexes compared by string form, arrays compared
// element-wise, objects compared by sorted-key equality.
func IsEqual(a, b interface{}) bool {
	if a == nil && b == nil {
		return true
	}
	af, aIsFloat := toComparableFloat(a)
	bf, bIsFloat := toComparableFloat(b)
	if aIsFloat && bIsFloat {
		if af != af && bf != bf { // both NaN
			return true
		}
		return af == bf
	}

	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Format(time.RFC3339Nano) == bv.Format(time.RFC3339Nano)
	case *regexp.Regexp:
		bv, ok := b.(*regexp.Regexp)
		return ok && av.String() == bv.String()
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}

	aArr, aIsArr := toSlice(a)
	bArr, bIsArr := toSlice(b)
	if aIsArr || bIsArr {
		if !aIsArr || !bIsArr || len(aArr) != len(bArr) {
			return false
		}
		for i := range aArr {
			if !IsEqual(aArr[i], bArr[i]) {
				return false
			}
		}
		return true
	}

	aMap, aIsMap := toMap(a)
	bMap, bIsMap := toMap(b)
	if aIsMap || bIsMap {
		if !aIsMap || !bIsMap || len(aMap) != len(bMap) {
			return false
		}
		for k, av := range aMap {
			bv, exists := bMap[k]
			if !exists || !IsEqual(av, bv) {
				return false
			}
		}
		return true
	}

	return false
}

func toComparableFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toSlice(v interface{}) ([]interface{}, bool) {
	switch arr := v.(type) {
	case bson.A:
		return []interface{}(arr), true
	case []interface{}:
		return arr, true
	case []bson.M:
		out := make([]interface{}, len(arr))
		for i, m := range arr {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

func toMap(v interface{}) (bson.M, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]interface{}:
		return bson.M(m), true
	case bson.D:
		out := bson.M{}
		for _, e := range m {
			out[e.Key] = e.Value
		}
		return out, true
	}
	return nil, false
}

// toD converts a sort specification to an ordered bson.D, preserving
// declaration order where the caller already gave us one. A bson.M or
// map[string]interface{} has no declaration order to preserve (Go maps
// don't keep insertion order), so those fall back to alphabetical key
// order; callers that need multi-key precedence per spec.md §4.6 must
// pass a bson.D.
func toD(v interface{}) (bson.D, bool) {
	switch d := v.(type) {
	case bson.D:
		return d, true
	case bson.M:
		out := make(bson.D, 0, len(d))
		for _, k := range sortKeysOf(d) {
			out = append(out, bson.E{Key: k, Value: d[k]})
		}
		return out, true
	case map[string]interface{}:
		return toD(bson.M(d))
	}
	return nil, false
}

// Clone performs the recursive structural copy described in spec.md
// §4.1: arrays and plain maps are copied, primitives are returned
// as-is. This is the backbone of the "evaluation is pure" invariant
// in §3 — every operator that would otherwise mutate its input clones
// first.
func Clone(v interface{}) interface{} {
	switch x := v.(type) {
	case bson.M:
		out := make(bson.M, len(x))
		for k, val := range x {
			out[k] = Clone(val)
		}
		return out
	case map[string]interface{}:
		out := make(bson.M, len(x))
		for k, val := range x {
			out[k] = Clone(val)
		}
		return out
	case bson.A:
		out := make(bson.A, len(x))
		for i, val := range x {
			out[i] = Clone(val)
		}
		return out
	case []interface{}:
		out := make(bson.A, len(x))
		for i, val := range x {
			out[i] = Clone(val)
		}
		return out
	case []bson.M:
		out := make(bson.A, len(x))
		for i, val := range x {
			out[i] = Clone(val)
		}
		return out
	default:
		return v
	}
}

// HashCode computes the stable hash described in spec.md §4.1: a
// string hash of `ExtJSON({"":v}) + Kind(v) + v` folded into 32 bits
// via `(h<<5)-h+chr`. It is collision-prone by design (§9 flags this
// as a known weakness of the source); Unique/Intersection/Union key on
// it purely to stay bit-compatible with spec.md's description.
func HashCode(v interface{}) string {
	wrapped := bson.M{"": v}
	b, err := bson.MarshalExtJSON(wrapped, false, false)
	payload := ""
	if err == nil {
		payload = string(b)
	}
	payload += string(TypeOf(v)) + fmt.Sprintf("%v", v)

	var h int32
	for _, c := range payload {
		h = (h << 5) - h + int32(c)
	}
	return fmt.Sprintf("%x", uint32(h))
}

// Unique returns the elements of xs with duplicates removed by
// HashCode identity, preserving first-occurrence order.
func Unique(xs []interface{}) []interface{} {
	seen := make(map[string]bool, len(xs))
	out := make([]interface{}, 0, len(xs))
	for _, x := range xs {
		h := HashCode(x)
		if !seen[h] {
			seen[h] = true
			out = append(out, x)
		}
	}
	return out
}

// Intersection returns elements present (by HashCode) in every slice
// of xs.
func Intersection(xs ...[]interface{}) []interface{} {
	if len(xs) == 0 {
		return nil
	}
	counts := make(map[string]int)
	rep := make(map[string]interface{})
	for _, set := range xs {
		seenInSet := make(map[string]bool)
		for _, v := range set {
			h := HashCode(v)
			if seenInSet[h] {
				continue
			}
			seenInSet[h] = true
			counts[h]++
			rep[h] = v
		}
	}
	var out []interface{}
	for h, c := range counts {
		if c == len(xs) {
			out = append(out, rep[h])
		}
	}
	return out
}

// Union returns the deduplicated concatenation of xs, by HashCode.
func Union(xs ...[]interface{}) []interface{} {
	var all []interface{}
	for _, set := range xs {
		all = append(all, set...)
	}
	return Unique(all)
}

// Flatten flattens nested arrays inside xs to the given depth; depth
// -1 means unbounded, matching spec.md §4.1.
func Flatten(xs []interface{}, depth int) []interface{} {
	out := make([]interface{}, 0, len(xs))
	for _, x := range xs {
		arr, isArr := toSlice(x)
		if isArr && depth != 0 {
			nextDepth := depth - 1
			if depth < 0 {
				nextDepth = -1
			}
			out = append(out, Flatten(arr, nextDepth)...)
		} else {
			out = append(out, x)
		}
	}
	return out
}

// StdDevInput bundles the standard-deviation inputs per spec.md §4.1.
type StdDevInput struct {
	Dataset []float64
	Sampled bool
}

// StdDev computes the standard deviation of the dataset. See
// DESIGN.md's Open Question (2): unlike the source this deliberately
// does NOT shrink the mean's divisor for the sampled case — only the
// variance denominator becomes N-1.
func StdDev(in StdDevInput) float64 {
	n := float64(len(in.Dataset))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range in.Dataset {
		sum += v
	}
	mean := sum / n

	var sq float64
	for _, v := range in.Dataset {
		d := v - mean
		sq += d * d
	}

	denom := n
	if in.Sampled && n > 1 {
		denom = n - 1
	}
	variance := sq / denom
	return math.Sqrt(variance)
}

// sortKeysOf returns the sorted keys of a bson.M, used wherever
// deterministic iteration order matters (hashing, ext-JSON encoding
// already sorts via bson, but callers outside that path need this).
func sortKeysOf(m bson.M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
