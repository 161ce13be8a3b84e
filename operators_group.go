package docql

// group accumulators (spec.md §4.4/§4.6): each reduces the array of
// per-document expression values a partition produces. $group builds
// that array by first evaluating the accumulator's operand per
// document into a $push-style list, then handing it to the matching
// function here.
func init() {
	operators.group["$sum"] = groupSum
	operators.group["$avg"] = groupAvg
	operators.group["$min"] = groupExtremum(func(a, b float64) bool { return a < b })
	operators.group["$max"] = groupExtremum(func(a, b float64) bool { return a > b })
	operators.group["$push"] = groupPush
	operators.group["$addToSet"] = groupAddToSet
	operators.group["$first"] = groupFirst
	operators.group["$last"] = groupLast
	operators.group["$stdDevPop"] = groupStdDev(false)
	operators.group["$stdDevSamp"] = groupStdDev(true)
}

func groupSum(values []interface{}) (interface{}, error) {
	sum := 0.0
	for _, v := range values {
		if n, ok := toFloat64(v); ok {
			sum += n
		}
	}
	return sum, nil
}

func groupAvg(values []interface{}) (interface{}, error) {
	sum, count := 0.0, 0
	for _, v := range values {
		if n, ok := toFloat64(v); ok {
			sum += n
			count++
		}
	}
	if count == 0 {
		return nil, nil
	}
	return sum / float64(count), nil
}

func groupExtremum(better func(a, b float64) bool) GroupOperatorFunc {
	return func(values []interface{}) (interface{}, error) {
		var best interface{}
		var bestF float64
		have := false
		for _, v := range values {
			n, ok := toFloat64(v)
			if !ok {
				continue
			}
			if !have || better(n, bestF) {
				best, bestF, have = v, n, true
			}
		}
		return best, nil
	}
}

func groupPush(values []interface{}) (interface{}, error) {
	out := make([]interface{}, len(values))
	copy(out, values)
	return out, nil
}

func groupAddToSet(values []interface{}) (interface{}, error) {
	return Unique(values), nil
}

func groupFirst(values []interface{}) (interface{}, error) {
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

func groupLast(values []interface{}) (interface{}, error) {
	if len(values) == 0 {
		return nil, nil
	}
	return values[len(values)-1], nil
}

func groupStdDev(sampled bool) GroupOperatorFunc {
	return func(values []interface{}) (interface{}, error) {
		nums := make([]float64, 0, len(values))
		for _, v := range values {
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
