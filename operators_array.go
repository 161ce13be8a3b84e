package docql

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// array operators (spec.md §4.4).
func init() {
	operators.aggregate["$size"] = arraySize
	operators.aggregate["$arrayElemAt"] = arrayElemAt
	operators.aggregate["$range"] = arrayRange
	operators.aggregate["$slice"] = arraySlice
	operators.aggregate["$reduce"] = arrayReduce
	operators.aggregate["$filter"] = arrayFilter
	operators.aggregate["$map"] = arrayMap
	operators.aggregate["$zip"] = arrayZip
	operators.aggregate["$reverseArray"] = arrayReverse
	operators.aggregate["$concatArrays"] = arrayConcat
	operators.aggregate["$in"] = arrayIn
	operators.aggregate["$isArray"] = arrayIsArray
}

func arraySize(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	v, err := ComputeValue(doc, operand, "", opt)
	if err != nil {
		return nil, err
	}
	arr, ok := toSlice(v)
	if !ok {
		return nil, newError(ErrDomain, "docql: $size: non-array operand")
	}
	return float64(len(arr)), nil
}

// arrayElemAt supports negative last-relative indices (spec.md §4.4).
func arrayElemAt(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	args, err := evalArgs(doc, operand, opt, 2)
	if err != nil {
		return nil, err
	}
	arr, ok := toSlice(args[0])
	if !ok {
		return nil, newError(ErrDomain, "docql: $arrayElemAt: non-array operand")
	}
	idxF, ok := toFloat64(args[1])
	if !ok {
		return nil, newError(ErrDomain, "docql: $arrayElemAt: non-numeric index")
	}
	idx := int(idxF)
	if idx < 0 {
		idx = len(arr) + idx
	}
	if idx < 0 || idx >= len(arr) {
		return nil, nil
	}
	return arr[idx], nil
}

func arrayRange(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	arr, ok := toSlice(operand)
	if !ok || len(arr) < 2 || len(arr) > 3 {
		return nil, newError(ErrBadArity, "docql: $range expects 2 or 3 operands")
	}
	vals := make([]float64, len(arr))
	for i, a := range arr {
		v, err := ComputeValue(doc, a, "", opt)
		if err != nil {
			return nil, err
		}
		n, ok := toFloat64(v)
		if !ok {
			return nil, newError(ErrDomain, "docql: $range: non-numeric operand")
		}
		vals[i] = n
	}
	start, end := vals[0], vals[1]
	step := 1.0
	if len(vals) == 3 {
		step = vals[2]
	}
	if step == 0 {
		return nil, newError(ErrBadShape, "docql: $range: step must not be zero")
	}
	out := bson.A{}
	if step > 0 {
		for n := start; n < end; n += step {
			out = append(out, n)
		}
	} else {
		for n := start; n > end; n += step {
			out = append(out, n)
		}
	}
	return out, nil
}

// arraySlice implements the one/two-arg quirky semantics of spec.md
// §4.4: one argument means "take first N" (or last |N| if negative);
// two arguments are (skip, limit).
func arraySlice(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	arr, ok := toSlice(operand)
	if !ok || len(arr) < 2 || len(arr) > 3 {
		return nil, newError(ErrBadArity, "docql: $slice expects 2 or 3 operands")
	}
	args := make([]interface{}, len(arr))
	for i, a := range arr {
		v, err := ComputeValue(doc, a, "", opt)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	source, ok := toSlice(args[0])
	if !ok {
		return nil, newError(ErrDomain, "docql: $slice: non-array operand")
	}
	if len(args) == 2 {
		nF, _ := toFloat64(args[1])
		n := int(nF)
		if n >= 0 {
			if n > len(source) {
				n = len(source)
			}
			return bson.A(append([]interface{}{}, source[:n]...)), nil
		}
		start := len(source) + n
		if start < 0 {
			start = 0
		}
		return bson.A(append([]interface{}{}, source[start:]...)), nil
	}
	skipF, _ := toFloat64(args[1])
	limitF, _ := toFloat64(args[2])
	skip, limit := int(skipF), int(limitF)
	start := skip
	if start < 0 {
		start = len(source) + start
		if start < 0 {
			start = 0
		}
	}
	if start > len(source) {
		start = len(source)
	}
	end := start + limit
	if end > len(source) {
		end = len(source)
	}
	if end < start {
		end = start
	}
	return bson.A(append([]interface{}{}, source[start:end]...)), nil
}

// arrayReduce exposes the running accumulator as $$value and the
// current element as $$this (spec.md §4.4).
func arrayReduce(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	m, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $reduce requires an object operand")
	}
	inputVal, err := ComputeValue(doc, m["input"], "", opt)
	if err != nil {
		return nil, err
	}
	arr, isArr := toSlice(inputVal)
	if !isArr {
		return nil, nil
	}
	acc, err := ComputeValue(doc, m["initialValue"], "", opt)
	if err != nil {
		return nil, err
	}
	for _, elem := range arr {
		stepOpt := opt.withVar("value", acc).withVar("this", elem)
		acc, err = ComputeValue(doc, m["in"], "", stepOpt)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// arrayFilter binds $<as> (default "this") while evaluating cond over
// each element of input (spec.md §4.4).
func arrayFilter(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	m, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $filter requires an object operand")
	}
	inputVal, err := ComputeValue(doc, m["input"], "", opt)
	if err != nil {
		return nil, err
	}
	arr, isArr := toSlice(inputVal)
	if !isArr {
		return nil, nil
	}
	as := "this"
	if asVal, ok := m["as"].(string); ok {
		as = asVal
	}
	out := bson.A{}
	for _, elem := range arr {
		elemOpt := opt.withVar(as, elem)
		keep, err := ComputeValue(doc, m["cond"], "", elemOpt)
		if err != nil {
			return nil, err
		}
		if toBool(keep) {
			out = append(out, elem)
		}
	}
	return out, nil
}

func arrayMap(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	m, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $map requires an object operand")
	}
	inputVal, err := ComputeValue(doc, m["input"], "", opt)
	if err != nil {
		return nil, err
	}
	arr, isArr := toSlice(inputVal)
	if !isArr {
		return nil, nil
	}
	as := "this"
	if asVal, ok := m["as"].(string); ok {
		as = asVal
	}
	out := make(bson.A, len(arr))
	for i, elem := range arr {
		elemOpt := opt.withVar(as, elem)
		v, err := ComputeValue(doc, m["in"], "", elemOpt)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// arrayZip honors useLongestLength and an optional defaults array,
// which requires the flag (spec.md §4.4).
func arrayZip(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	m, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $zip requires an object operand")
	}
	inputsVal, err := ComputeValue(doc, m["inputs"], "", opt)
	if err != nil {
		return nil, err
	}
	inputArrs, ok := toSlice(inputsVal)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $zip: inputs must be an array of arrays")
	}
	useLongest := toBool(m["useLongestLength"])
	var defaults []interface{}
	if defVal, has := m["defaults"]; has {
		if !useLongest {
			return nil, newError(ErrBadShape, "docql: $zip: defaults requires useLongestLength")
		}
		dv, err := ComputeValue(doc, defVal, "", opt)
		if err != nil {
			return nil, err
		}
		defaults, _ = toSlice(dv)
	}

	lists := make([][]interface{}, len(inputArrs))
	maxLen, minLen := 0, -1
	for i, iv := range inputArrs {
		list, _ := toSlice(iv)
		lists[i] = list
		if len(list) > maxLen {
			maxLen = len(list)
		}
		if minLen < 0 || len(list) < minLen {
			minLen = len(list)
		}
	}
	length := minLen
	if useLongest {
		length = maxLen
	}
	if length < 0 {
		length = 0
	}

	out := make(bson.A, length)
	for row := 0; row < length; row++ {
		tuple := make(bson.A, len(lists))
		for col, list := range lists {
			if row < len(list) {
				tuple[col] = list[row]
			} else if col < len(defaults) {
				tuple[col] = defaults[col]
			} else {
				tuple[col] = nil
			}
		}
		out[row] = tuple
	}
	return out, nil
}

func arrayReverse(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	v, err := ComputeValue(doc, operand, "", opt)
	if err != nil {
		return nil, err
	}
	arr, ok := toSlice(v)
	if !ok {
		return nil, nil
	}
	out := make(bson.A, len(arr))
	for i, elem := range arr {
		out[len(arr)-1-i] = elem
	}
	return out, nil
}

func arrayConcat(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	args, isList := toSlice(operand)
	if !isList {
		args = []interface{}{operand}
	}
	out := bson.A{}
	for _, a := range args {
		v, err := ComputeValue(doc, a, "", opt)
		if err != nil {
			return nil, err
		}
		if isNullish(v) {
			return nil, nil
		}
		arr, ok := toSlice(v)
		if !ok {
			return nil, newError(ErrDomain, "docql: $concatArrays: non-array operand")
		}
		out = append(out, arr...)
	}
	return out, nil
}

func arrayIn(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	args, err := evalArgs(doc, operand, opt, 2)
	if err != nil {
		return nil, err
	}
	arr, ok := toSlice(args[1])
	if !ok {
		return nil, newError(ErrDomain, "docql: $in: non-array operand")
	}
	for _, elem := range arr {
		if IsEqual(elem, args[0]) {
			return true, nil
		}
	}
	return false, nil
}

func arrayIsArray(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	v, err := ComputeValue(doc, operand, "", opt)
	if err != nil {
		return nil, err
	}
	_, ok := toSlice(v)
	return ok, nil
}
