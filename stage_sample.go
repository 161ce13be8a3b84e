package docql

import (
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func init() {
	operators.pipeline["$sample"] = sampleStage
	rand.Seed(time.Now().UnixNano())
}

// sampleStage picks size random documents from collection uniformly,
// with replacement (spec.md §4.6).
func sampleStage(collection []bson.M, operand interface{}, _ *Query) ([]bson.M, error) {
	spec, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $sample operand must be an object")
	}
	sizeVal, hasSize := spec["size"]
	if !hasSize {
		return nil, newError(ErrBadShape, "docql: $sample requires a size field")
	}
	sizeF, ok := toFloat64(sizeVal)
	if !ok || sizeF < 0 {
		return nil, newError(ErrBadShape, "docql: $sample size must be a non-negative number")
	}
	n := int(sizeF)
	if len(collection) == 0 {
		return nil, nil
	}
	out := make([]bson.M, n)
	for i := 0; i < n; i++ {
		out[i] = collection[rand.Intn(len(collection))]
	}
	return out, nil
}
