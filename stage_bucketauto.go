package docql

import (
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func init() {
	operators.pipeline["$bucketAuto"] = bucketAutoStage
}

// bucketAutoStage distributes documents into buckets count evenly,
// the groupBy value determining sort order (MongoDB 3.4's
// $bucketAuto), reusing accumulate() for output.
func bucketAutoStage(collection []bson.M, operand interface{}, _ *Query) ([]bson.M, error) {
	spec, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $bucketAuto operand must be an object")
	}
	groupByExpr, hasGroupBy := spec["groupBy"]
	if !hasGroupBy {
		return nil, newError(ErrBadShape, "docql: $bucketAuto requires a groupBy field")
	}
	countVal, hasCount := spec["buckets"]
	if !hasCount {
		return nil, newError(ErrBadShape, "docql: $bucketAuto requires a buckets field")
	}
	countF, ok := toFloat64(countVal)
	if !ok || countF <= 0 {
		return nil, newError(ErrBadShape, "docql: $bucketAuto buckets must be a positive number")
	}
	bucketCount := int(countF)
	outputSpec, hasOutput := spec["output"]
	outputMap, _ := toMap(outputSpec)

	type keyedDoc struct {
		key interface{}
		num float64
		doc bson.M
	}
	keyed := make([]keyedDoc, len(collection))
	for i, doc := range collection {
		v, err := ComputeValue(doc, groupByExpr, "", nil)
		if err != nil {
			return nil, err
		}
		n, _ := toFloat64(v)
		keyed[i] = keyedDoc{key: v, num: n, doc: doc}
	}
	sort.SliceStable(keyed, func(i, j int) bool { return keyed[i].num < keyed[j].num })

	if bucketCount > len(keyed) {
		bucketCount = len(keyed)
	}
	if bucketCount == 0 {
		return nil, nil
	}

	baseSize := len(keyed) / bucketCount
	remainder := len(keyed) % bucketCount

	var out []bson.M
	pos := 0
	for b := 0; b < bucketCount; b++ {
		size := baseSize
		if b < remainder {
			size++
		}
		if size == 0 {
			continue
		}
		group := keyed[pos : pos+size]
		pos += size

		docs := make([]bson.M, len(group))
		for i, kd := range group {
			docs[i] = kd.doc
		}
		minKey := group[0].key
		maxKey := group[len(group)-1].key

		result := bson.M{"_id": bson.M{"min": minKey, "max": maxKey}}
		if outputMap == nil {
			result["count"] = float64(len(docs))
		} else {
			for name, expr := range outputMap {
				v, err := accumulate(docs, name, expr)
				if err != nil {
					return nil, err
				}
				result[name] = v
			}
		}
		out = append(out, result)
	}
	return out, nil
}
