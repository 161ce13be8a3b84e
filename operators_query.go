package docql

import (
	"math"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// init registers the 16 simple query operators of spec.md
// §3/§4.4/§4.5. Each receives the field path (for error messages), the
// value Resolve(doc, path, true) produced — which per §4.2 may itself
// be an array, enabling array-traversal matching — and the operator's
// own operand from the compiled predicate.
func init() {
	operators.query["$eq"] = queryEq
	operators.query["$ne"] = func(s string, resolved, operand interface{}) (bool, error) {
		ok, err := queryEq(s, resolved, operand)
		return !ok, err
	}
	operators.query["$gt"] = queryCompare(func(a, b float64) bool { return a > b })
	operators.query["$gte"] = queryCompare(func(a, b float64) bool { return a >= b })
	operators.query["$lt"] = queryCompare(func(a, b float64) bool { return a < b })
	operators.query["$lte"] = queryCompare(func(a, b float64) bool { return a <= b })
	operators.query["$in"] = queryIn
	operators.query["$nin"] = func(s string, resolved, operand interface{}) (bool, error) {
		ok, err := queryIn(s, resolved, operand)
		return !ok, err
	}
	operators.query["$mod"] = queryMod
	operators.query["$regex"] = queryRegex
	operators.query["$exists"] = queryExists
	operators.query["$all"] = queryAll
	operators.query["$size"] = querySize
	operators.query["$elemMatch"] = queryElemMatch
	operators.query["$type"] = queryType
	operators.query["$not"] = queryNot
}

// asArray coerces a resolved value to a slice; a scalar becomes a
// one-element slice so $eq/$in can treat "field equals X" and "array
// field contains X" uniformly (spec.md §4.4).
func asArray(v interface{}) []interface{} {
	if arr, ok := toSlice(v); ok {
		return arr
	}
	return []interface{}{v}
}

func queryEq(_ string, resolved, operand interface{}) (bool, error) {
	for _, elem := range asArray(resolved) {
		if IsEqual(elem, operand) {
			return true, nil
		}
	}
	return false, nil
}

func queryCompare(cmp func(a, b float64) bool) QueryOperatorFunc {
	return func(_ string, resolved, operand interface{}) (bool, error) {
		opNum, opOk := toFloat64(operand)
		if !opOk {
			return false, nil
		}
		for _, elem := range asArray(resolved) {
			if n, ok := toFloat64(elem); ok && cmp(n, opNum) {
				return true, nil
			}
		}
		return false, nil
	}
}

func queryIn(field string, resolved, operand interface{}) (bool, error) {
	rhs, ok := toSlice(operand)
	if !ok {
		return false, newError(ErrBadShape, "docql: %s: $in/$nin operand must be an array", field)
	}
	lhs := asArray(resolved)
	return len(Intersection(lhs, rhs)) > 0, nil
}

func queryMod(field string, resolved, operand interface{}) (bool, error) {
	arr, ok := toSlice(operand)
	if !ok || len(arr) != 2 {
		return false, newError(ErrBadShape, "docql: %s: $mod requires a 2-element array [divisor, remainder]", field)
	}
	divisor, ok1 := toFloat64(arr[0])
	remainder, ok2 := toFloat64(arr[1])
	if !ok1 || !ok2 {
		return false, newError(ErrBadShape, "docql: %s: $mod operands must be numeric", field)
	}
	for _, elem := range asArray(resolved) {
		if n, ok := toFloat64(elem); ok && math.Mod(n, divisor) == remainder {
			return true, nil
		}
	}
	return false, nil
}

// queryRegex normalizes $regex per spec.md §4.4: a string operand is
// combined with any $options flags (and any flags already present on
// a *regexp.Regexp operand) into a fresh pattern.
func queryRegex(field string, resolved, operand interface{}) (bool, error) {
	re, err := compileQueryRegex(operand, "")
	if err != nil {
		return false, err
	}
	for _, elem := range asArray(resolved) {
		s, ok := elem.(string)
		if !ok {
			continue
		}
		if re.MatchString(s) {
			return true, nil
		}
	}
	return false, nil
}

func compileQueryRegex(operand interface{}, options string) (*regexp.Regexp, error) {
	switch v := operand.(type) {
	case *regexp.Regexp:
		pattern := v.String()
		if options != "" {
			pattern = applyRegexOptions(pattern, options)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, newError(ErrBadShape, "docql: invalid regex: %v", err)
		}
		return re, nil
	case string:
		pattern := applyRegexOptions(v, options)
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, newError(ErrBadShape, "docql: invalid regex: %v", err)
		}
		return re, nil
	default:
		return nil, newError(ErrBadShape, "docql: $regex over non-string operand %T", operand)
	}
}

func applyRegexOptions(pattern, options string) string {
	if options == "" {
		return pattern
	}
	goFlags := ""
	for _, r := range options {
		switch r {
		case 'i', 'm', 's':
			goFlags += string(r)
		}
	}
	if goFlags == "" {
		return pattern
	}
	return "(?" + goFlags + ")" + pattern
}

func queryExists(_ string, resolved, operand interface{}) (bool, error) {
	want, _ := operand.(bool)
	exists := resolved != nil
	return exists == want, nil
}

// queryAll: elements of the form {$elemMatch: q} dispatch through
// $elemMatch; otherwise it reduces to "operand is a subset of
// resolved" (spec.md §4.4).
func queryAll(field string, resolved, operand interface{}) (bool, error) {
	wanted, ok := toSlice(operand)
	if !ok {
		return false, newError(ErrBadShape, "docql: %s: $all operand must be an array", field)
	}
	haystack := asArray(resolved)
	for _, w := range wanted {
		if wm, isMap := toMap(w); isMap {
			if em, hasElemMatch := wm["$elemMatch"]; hasElemMatch && len(wm) == 1 {
				ok, err := queryElemMatch(field, resolved, em)
				if err != nil || !ok {
					return false, err
				}
				continue
			}
		}
		found := false
		for _, h := range haystack {
			if IsEqual(h, w) {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}

func querySize(field string, resolved, operand interface{}) (bool, error) {
	wantF, ok := toFloat64(operand)
	if !ok {
		return false, newError(ErrBadShape, "docql: %s: $size operand must be numeric", field)
	}
	arr, isArr := toSlice(resolved)
	if !isArr {
		return false, nil
	}
	return float64(len(arr)) == wantF, nil
}

// queryElemMatch checks whether any element of resolved (as a
// document, matched against a nested Query) or scalar (matched
// against a nested predicate) satisfies operand.
func queryElemMatch(field string, resolved, operand interface{}) (bool, error) {
	critMap, ok := toMap(operand)
	if !ok {
		return false, newError(ErrBadShape, "docql: %s: $elemMatch operand must be an object", field)
	}
	arr, isArr := toSlice(resolved)
	if !isArr {
		return false, nil
	}
	q, err := NewQuery(critMap, nil)
	if err != nil {
		return false, err
	}
	for _, elem := range arr {
		if elemMap, isMap := toMap(elem); isMap {
			if q.Test(elemMap) {
				return true, nil
			}
			continue
		}
		// Scalar-array $elemMatch: wrap under an implicit "__elem__" field so
		// plain operator predicates like {$gt: 5} still work.
		if wrapped, wErr := NewQuery(bson.M{"__elem__": critMap}, nil); wErr == nil {
			if wrapped.Test(bson.M{"__elem__": elem}) {
				return true, nil
			}
		}
	}
	return false, nil
}

func queryType(field string, resolved, operand interface{}) (bool, error) {
	switch want := operand.(type) {
	case string:
		return matchesTypeName(resolved, want), nil
	default:
		wantCode, ok := toFloat64(operand)
		if !ok {
			return false, newError(ErrBadShape, "docql: %s: $type operand must be a string or numeric type code", field)
		}
		return bsonTypeCode(resolved) == int(wantCode), nil
	}
}

func matchesTypeName(v interface{}, name string) bool {
	switch name {
	case "double", "number":
		_, ok := toFloat64(v)
		return ok && TypeOf(v) == KindNumber
	case "string":
		return TypeOf(v) == KindString
	case "object":
		return TypeOf(v) == KindObject
	case "array":
		return TypeOf(v) == KindArray
	case "bool":
		return TypeOf(v) == KindBoolean
	case "date":
		return TypeOf(v) == KindDate
	case "null":
		return v == nil
	case "regex":
		return TypeOf(v) == KindRegexp
	default:
		return false
	}
}

// queryNot wraps the sub-expression in a nested Query and negates
// (spec.md §4.4).
func queryNot(field string, resolved, operand interface{}) (bool, error) {
	predMap, ok := toMap(operand)
	if ok {
		q, err := NewQuery(bson.M{field: predMap}, nil)
		if err != nil {
			return false, err
		}
		return !q.Test(bson.M{field: resolved}), nil
	}
	if re, isRe := operand.(*regexp.Regexp); isRe {
		s, isStr := resolved.(string)
		return !(isStr && re.MatchString(s)), nil
	}
	if s, isStr := operand.(string); isStr {
		re, err := regexp.Compile(s)
		if err != nil {
			return false, newError(ErrBadShape, "docql: %s: $not invalid regex operand", field)
		}
		rs, isRS := resolved.(string)
		return !(isRS && re.MatchString(rs)), nil
	}
	return !IsEqual(resolved, operand), nil
}

