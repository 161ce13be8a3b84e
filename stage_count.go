package docql

import "go.mongodb.org/mongo-driver/v2/bson"

func init() {
	operators.pipeline["$count"] = countStage
}

// countStage emits a single document {<name>: collection.length}
// (spec.md §4.6).
func countStage(collection []bson.M, operand interface{}, _ *Query) ([]bson.M, error) {
	name, ok := operand.(string)
	if !ok || name == "" {
		return nil, newError(ErrBadShape, "docql: $count operand must be a non-empty string")
	}
	return []bson.M{{name: float64(len(collection))}}, nil
}
