package docql

import "go.mongodb.org/mongo-driver/v2/bson"

// matchStage delegates to Query (spec.md §4.6).
func init() {
	operators.pipeline["$match"] = matchStage
}

func matchStage(collection []bson.M, operand interface{}, _ *Query) ([]bson.M, error) {
	criteria, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $match operand must be an object")
	}
	q, err := NewQuery(criteria, nil)
	if err != nil {
		return nil, err
	}
	var out []bson.M
	for _, doc := range collection {
		if q.Test(doc) {
			out = append(out, doc)
		}
	}
	return out, nil
}
