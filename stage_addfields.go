package docql

import "go.mongodb.org/mongo-driver/v2/bson"

func init() {
	operators.pipeline["$addFields"] = addFieldsStage
}

// addFieldsStage evaluates each target field's expression (honoring
// the "exactly one root operator" form) and inserts it via a forced
// Traverse so intermediate nesting is created as needed (spec.md
// §4.6).
func addFieldsStage(collection []bson.M, operand interface{}, _ *Query) ([]bson.M, error) {
	spec, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $addFields operand must be an object")
	}
	out := make([]bson.M, len(collection))
	for i, doc := range collection {
		cloned, _ := Clone(doc).(bson.M)
		for field, expr := range spec {
			v, err := ComputeValue(doc, expr, "", nil)
			if err != nil {
				return nil, err
			}
			SetValue(cloned, field, v)
		}
		out[i] = cloned
	}
	return out, nil
}
