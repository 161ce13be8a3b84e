package docql

import (
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func init() {
	operators.pipeline["$bucket"] = bucketStage
}

// bucketStage categorizes documents into fixed numeric boundaries
// (MongoDB 3.4's $bucket), reusing the same accumulate() machinery
// $group uses for its output accumulators.
func bucketStage(collection []bson.M, operand interface{}, _ *Query) ([]bson.M, error) {
	spec, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $bucket operand must be an object")
	}
	groupByExpr, hasGroupBy := spec["groupBy"]
	if !hasGroupBy {
		return nil, newError(ErrBadShape, "docql: $bucket requires a groupBy field")
	}
	boundariesVal, hasBoundaries := spec["boundaries"]
	if !hasBoundaries {
		return nil, newError(ErrBadShape, "docql: $bucket requires a boundaries field")
	}
	boundariesArr, ok := toSlice(boundariesVal)
	if !ok || len(boundariesArr) < 2 {
		return nil, newError(ErrBadShape, "docql: $bucket boundaries must be an array of at least 2 elements")
	}
	boundaries := make([]float64, len(boundariesArr))
	for i, b := range boundariesArr {
		n, ok := toFloat64(b)
		if !ok {
			return nil, newError(ErrBadShape, "docql: $bucket boundaries must be numeric")
		}
		boundaries[i] = n
	}
	sort.Float64s(boundaries)

	defaultVal, hasDefault := spec["default"]
	outputSpec, hasOutput := spec["output"]
	outputMap, _ := toMap(outputSpec)

	buckets := make([][]bson.M, len(boundaries)-1)
	var defaultDocs []bson.M

	for _, doc := range collection {
		v, err := ComputeValue(doc, groupByExpr, "", nil)
		if err != nil {
			return nil, err
		}
		n, ok := toFloat64(v)
		if !ok {
			if hasDefault {
				defaultDocs = append(defaultDocs, doc)
				continue
			}
			return nil, newError(ErrDomain, "docql: $bucket: groupBy value %v has no matching boundary", v)
		}
		placed := false
		for i := 0; i < len(boundaries)-1; i++ {
			if n >= boundaries[i] && n < boundaries[i+1] {
				buckets[i] = append(buckets[i], doc)
				placed = true
				break
			}
		}
		if !placed {
			if hasDefault {
				defaultDocs = append(defaultDocs, doc)
			} else {
				return nil, newError(ErrDomain, "docql: $bucket: groupBy value %v has no matching boundary", n)
			}
		}
	}

	var out []bson.M
	for i, docs := range buckets {
		if len(docs) == 0 && !hasOutput {
			continue
		}
		result, err := bucketOutput(boundaries[i], docs, outputMap)
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	if hasDefault && len(defaultDocs) > 0 {
		result, err := bucketOutput(defaultVal, defaultDocs, outputMap)
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}

func bucketOutput(id interface{}, docs []bson.M, outputMap bson.M) (bson.M, error) {
	result := bson.M{"_id": id}
	if outputMap == nil {
		result["count"] = float64(len(docs))
		return result, nil
	}
	for name, expr := range outputMap {
		v, err := accumulate(docs, name, expr)
		if err != nil {
			return nil, err
		}
		result[name] = v
	}
	return result, nil
}
