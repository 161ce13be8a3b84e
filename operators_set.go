package docql

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// set operators (spec.md §4.4): arrays are treated as multisets
// collapsed through hashcode, grounded on value.go's HashCode/Unique
// helpers.
func init() {
	operators.aggregate["$setEquals"] = setEquals
	operators.aggregate["$setIntersection"] = setReduce(Intersection)
	operators.aggregate["$setUnion"] = setReduce(Union)
	operators.aggregate["$setDifference"] = setDifference
	operators.aggregate["$setIsSubset"] = setIsSubset
	operators.aggregate["$allElementsTrue"] = allElementsTrue
	operators.aggregate["$anyElementTrue"] = anyElementTrue
}

func setArgArrays(doc bson.M, operand interface{}, opt *Options) ([][]interface{}, error) {
	args, isList := toSlice(operand)
	if !isList {
		args = []interface{}{operand}
	}
	out := make([][]interface{}, len(args))
	for i, a := range args {
		v, err := ComputeValue(doc, a, "", opt)
		if err != nil {
			return nil, err
		}
		arr, ok := toSlice(v)
		if !ok {
			return nil, newError(ErrDomain, "docql: set operator: non-array operand")
		}
		out[i] = arr
	}
	return out, nil
}

func setKey(arr []interface{}) map[string]bool {
	keys := make(map[string]bool, len(arr))
	for _, v := range arr {
		keys[HashCode(v)] = true
	}
	return keys
}

func setEquals(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	arrs, err := setArgArrays(doc, operand, opt)
	if err != nil {
		return nil, err
	}
	if len(arrs) < 2 {
		return nil, newError(ErrBadArity, "docql: $setEquals requires at least 2 operands")
	}
	first := setKey(arrs[0])
	for _, arr := range arrs[1:] {
		other := setKey(arr)
		if len(other) != len(first) {
			return false, nil
		}
		for k := range first {
			if !other[k] {
				return false, nil
			}
		}
	}
	return true, nil
}

func setReduce(reduce func(xs ...[]interface{}) []interface{}) AggregateOperatorFunc {
	return func(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
		arrs, err := setArgArrays(doc, operand, opt)
		if err != nil {
			return nil, err
		}
		result := reduce(arrs...)
		return bson.A(result), nil
	}
}

func setDifference(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	arrs, err := setArgArrays(doc, operand, opt)
	if err != nil {
		return nil, err
	}
	if len(arrs) != 2 {
		return nil, newError(ErrBadArity, "docql: $setDifference requires exactly 2 operands")
	}
	exclude := setKey(arrs[1])
	out := bson.A{}
	seen := map[string]bool{}
	for _, v := range arrs[0] {
		k := HashCode(v)
		if exclude[k] || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out, nil
}

func setIsSubset(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	arrs, err := setArgArrays(doc, operand, opt)
	if err != nil {
		return nil, err
	}
	if len(arrs) != 2 {
		return nil, newError(ErrBadArity, "docql: $setIsSubset requires exactly 2 operands")
	}
	superset := setKey(arrs[1])
	for _, v := range arrs[0] {
		if !superset[HashCode(v)] {
			return false, nil
		}
	}
	return true, nil
}

func allElementsTrue(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	arrs, err := setArgArrays(doc, operand, opt)
	if err != nil {
		return nil, err
	}
	if len(arrs) != 1 {
		return nil, newError(ErrBadArity, "docql: $allElementsTrue requires exactly 1 operand")
	}
	for _, v := range arrs[0] {
		if !toBool(v) {
			return false, nil
		}
	}
	return true, nil
}

func anyElementTrue(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	arrs, err := setArgArrays(doc, operand, opt)
	if err != nil {
		return nil, err
	}
	if len(arrs) != 1 {
		return nil, newError(ErrBadArity, "docql: $anyElementTrue requires exactly 1 operand")
	}
	for _, v := range arrs[0] {
		if toBool(v) {
			return true, nil
		}
	}
	return false, nil
}
