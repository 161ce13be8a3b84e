package docql

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

func init() {
	operators.pipeline["$project"] = projectStage

	operators.projection["$elemMatch"] = projElemMatch
	operators.projection["$slice"] = projSlice
	operators.projection["$stdDevPop"] = projStdDev(false)
	operators.projection["$stdDevSamp"] = projStdDev(true)
}

func projectStage(collection []bson.M, operand interface{}, _ *Query) ([]bson.M, error) {
	spec, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $project operand must be an object")
	}
	out := make([]bson.M, len(collection))
	for i, doc := range collection {
		projected, err := applyProjection(doc, spec)
		if err != nil {
			return nil, err
		}
		out[i] = projected
	}
	return out, nil
}

// applyProjection is the $project engine shared by the pipeline stage
// and Cursor's deferred projection (spec.md §4.6).
func applyProjection(doc bson.M, spec bson.M) (bson.M, error) {
	idField := IdentityField()

	inclusionCount, exclusionCount := 0, 0
	for key, val := range spec {
		if key == idField {
			continue
		}
		if isProjectionExclusion(val) {
			exclusionCount++
		} else {
			inclusionCount++
		}
	}
	if inclusionCount > 0 && exclusionCount > 0 {
		return nil, newError(ErrBadShape, "docql: $project cannot mix inclusion and exclusion")
	}

	idVal, hasID := spec[idField]
	idExcluded := hasID && isProjectionExclusion(idVal)

	if exclusionCount > 0 || (idExcluded && inclusionCount == 0) {
		out, _ := Clone(doc).(bson.M)
		for key, val := range spec {
			if key == idField {
				continue
			}
			if isProjectionExclusion(val) {
				RemoveValue(out, key)
			}
		}
		if idExcluded {
			delete(out, idField)
		}
		return out, nil
	}

	out := bson.M{}
	if !hasID {
		if v, exists := doc[idField]; exists {
			out[idField] = v
		}
	} else if !idExcluded {
		v, err := projectField(doc, idField, idVal)
		if err != nil {
			return nil, err
		}
		if v != nil {
			SetValue(out, idField, v)
		}
	}

	for key, val := range spec {
		if key == idField {
			continue
		}
		v, err := projectField(doc, key, val)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		resolveObjInto(out, key, v)
	}
	return out, nil
}

func isProjectionExclusion(val interface{}) bool {
	n, ok := toFloat64(val)
	return ok && n == 0
}

// projectField computes one spec entry's value for doc: a string
// expression evaluates; 1/true copies from the original; a map with a
// single projection operator key dispatches to it; any other map is
// recursively computed (spec.md §4.6).
func projectField(doc bson.M, key string, val interface{}) (interface{}, error) {
	switch v := val.(type) {
	case string:
		if len(v) > 0 && v[0] == '$' {
			return ComputeValue(doc, v, "", nil)
		}
		return v, nil
	case bool:
		if v {
			return Resolve(doc, key, false), nil
		}
		return nil, nil
	default:
		if n, ok := toFloat64(val); ok {
			if n != 0 {
				return Resolve(doc, key, false), nil
			}
			return nil, nil
		}
	}

	if m, ok := toMap(val); ok {
		if opName, opArg, isSingle := singleProjectionOperator(m); isSingle {
			resolved := Resolve(doc, key, false)
			return operators.projection[opName](doc, resolved, opArg)
		}
		return ComputeValue(doc, m, "", nil)
	}

	return ComputeValue(doc, val, "", nil)
}

func singleProjectionOperator(m bson.M) (string, interface{}, bool) {
	if len(m) != 1 {
		return "", nil, false
	}
	for k, v := range m {
		if isProjectionOperator(k) {
			return k, v, true
		}
	}
	return "", nil, false
}

// resolveObjInto writes value at path into out, preserving
// intermediate nesting the way resolveObj builds a minimal subtree.
func resolveObjInto(out bson.M, path string, value interface{}) {
	SetValue(out, path, value)
}

// projElemMatch disambiguates: resolved must be an array, operand is
// a query criteria document; only the first matching element
// survives (spec.md §4.6).
func projElemMatch(_ bson.M, resolved, operand interface{}) (interface{}, error) {
	arr, ok := toSlice(resolved)
	if !ok {
		return nil, nil
	}
	critMap, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $elemMatch projection operand must be an object")
	}
	q, err := NewQuery(critMap, nil)
	if err != nil {
		return nil, err
	}
	for _, elem := range arr {
		if elemMap, isMap := toMap(elem); isMap && q.Test(elemMap) {
			return bson.A{elem}, nil
		}
	}
	return nil, nil
}

// projSlice disambiguates projection form (all-numeric operand: skip
// and/or limit) from aggregation form by inspecting operand types
// (spec.md §4.6).
func projSlice(doc bson.M, resolved, operand interface{}) (interface{}, error) {
	if parts, isList := toSlice(operand); isList {
		for _, p := range parts {
			if _, isNum := toFloat64(p); !isNum {
				// Aggregation form, e.g. {$slice: ["$arr", 2]}.
				return ComputeValue(doc, bson.M{"$slice": operand}, "", nil)
			}
		}
	}
	arr, ok := toSlice(resolved)
	if !ok {
		return nil, nil
	}
	if n, ok := toFloat64(operand); ok {
		return sliceFirstOrLast(arr, int(n)), nil
	}
	parts, ok := toSlice(operand)
	if !ok || len(parts) != 2 {
		return nil, newError(ErrBadShape, "docql: $slice projection operand must be a number or a 2-element array")
	}
	skipF, skipOk := toFloat64(parts[0])
	limitF, limitOk := toFloat64(parts[1])
	if !skipOk || !limitOk {
		return nil, newError(ErrBadShape, "docql: $slice projection operands must be numeric")
	}
	skip, limit := int(skipF), int(limitF)
	start := skip
	if start < 0 {
		start = len(arr) + start
		if start < 0 {
			start = 0
		}
	}
	if start > len(arr) {
		start = len(arr)
	}
	end := start + limit
	if end > len(arr) {
		end = len(arr)
	}
	if end < start {
		end = start
	}
	return bson.A(append([]interface{}{}, arr[start:end]...)), nil
}

func sliceFirstOrLast(arr []interface{}, n int) bson.A {
	if n >= 0 {
		if n > len(arr) {
			n = len(arr)
		}
		return bson.A(append([]interface{}{}, arr[:n]...))
	}
	start := len(arr) + n
	if start < 0 {
		start = 0
	}
	return bson.A(append([]interface{}{}, arr[start:]...))
}

func projStdDev(sampled bool) ProjectionOperatorFunc {
	return func(_ bson.M, resolved, _ interface{}) (interface{}, error) {
		arr, ok := toSlice(resolved)
		if !ok {
			return nil, nil
		}
		nums := make([]float64, 0, len(arr))
		for _, v := range arr {
			if n, ok := toFloat64(v); ok {
				nums = append(nums, n)
			}
		}
		if len(nums) == 0 {
			return nil, nil
		}
		return StdDev(StdDevInput{Dataset: nums, Sampled: sampled}), nil
	}
}
