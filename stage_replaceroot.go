package docql

import "go.mongodb.org/mongo-driver/v2/bson"

func init() {
	operators.pipeline["$replaceRoot"] = replaceRootStage
}

func replaceRootStage(collection []bson.M, operand interface{}, _ *Query) ([]bson.M, error) {
	spec, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $replaceRoot operand must be an object")
	}
	newRootExpr, hasNewRoot := spec["newRoot"]
	if !hasNewRoot {
		return nil, newError(ErrBadShape, "docql: $replaceRoot requires a newRoot field")
	}

	out := make([]bson.M, len(collection))
	for i, doc := range collection {
		v, err := ComputeValue(doc, newRootExpr, "", nil)
		if err != nil {
			return nil, err
		}
		root, ok := toMap(v)
		if !ok {
			return nil, newError(ErrDomain, "docql: $replaceRoot: newRoot must evaluate to an object")
		}
		out[i] = root
	}
	return out, nil
}
