package docql

import "go.mongodb.org/mongo-driver/v2/bson"

func init() {
	operators.pipeline["$limit"] = limitStage
	operators.pipeline["$skip"] = skipStage
}

func limitStage(collection []bson.M, operand interface{}, _ *Query) ([]bson.M, error) {
	n, ok := toFloat64(operand)
	if !ok || n < 0 {
		return nil, newError(ErrBadShape, "docql: $limit operand must be a non-negative number")
	}
	limit := int(n)
	if limit > len(collection) {
		limit = len(collection)
	}
	return collection[:limit], nil
}

func skipStage(collection []bson.M, operand interface{}, _ *Query) ([]bson.M, error) {
	n, ok := toFloat64(operand)
	if !ok || n < 0 {
		return nil, newError(ErrBadShape, "docql: $skip operand must be a non-negative number")
	}
	skip := int(n)
	if skip >= len(collection) {
		return nil, nil
	}
	return collection[skip:], nil
}
