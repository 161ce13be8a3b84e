package docql

import "go.mongodb.org/mongo-driver/v2/bson"

func init() {
	operators.pipeline["$unwind"] = unwindStage
}

// unwindStage emits one document per array element, replacing the
// array with the element at the target path (spec.md §4.6).
func unwindStage(collection []bson.M, operand interface{}, _ *Query) ([]bson.M, error) {
	path, ok := operand.(string)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $unwind operand must be a field path string")
	}
	field := stripDollar(path)

	var out []bson.M
	for _, doc := range collection {
		v := Resolve(doc, field, false)
		arr, isArr := toSlice(v)
		if !isArr {
			return nil, newError(ErrBadShape, "docql: $unwind target %q is not an array", field)
		}
		for _, elem := range arr {
			cloned, _ := Clone(doc).(bson.M)
			SetValue(cloned, field, elem)
			out = append(out, cloned)
		}
	}
	return out, nil
}
