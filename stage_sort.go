package docql

import "go.mongodb.org/mongo-driver/v2/bson"

func init() {
	operators.pipeline["$sort"] = sortStage
}

func sortStage(collection []bson.M, operand interface{}, _ *Query) ([]bson.M, error) {
	spec, ok := toD(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $sort operand must be an object")
	}
	return sortDocuments(collection, spec), nil
}
