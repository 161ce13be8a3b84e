package docql

import "go.mongodb.org/mongo-driver/v2/bson"

func init() {
	operators.pipeline["$unset"] = unsetStage
}

// unsetStage removes the named field(s) from every document. operand
// is a single field path string or an array of them, the MongoDB
// 4.2+ shorthand for a pure-exclusion $project.
func unsetStage(collection []bson.M, operand interface{}, _ *Query) ([]bson.M, error) {
	fields, err := unsetFields(operand)
	if err != nil {
		return nil, err
	}
	out := make([]bson.M, len(collection))
	for i, doc := range collection {
		cloned, _ := Clone(doc).(bson.M)
		for _, f := range fields {
			RemoveValue(cloned, f)
		}
		out[i] = cloned
	}
	return out, nil
}

func unsetFields(operand interface{}) ([]string, error) {
	if s, ok := operand.(string); ok {
		if s == "" {
			return nil, newError(ErrBadShape, "docql: $unset contains an empty field name")
		}
		return []string{s}, nil
	}
	arr, ok := toSlice(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $unset operand must be a field path or array of field paths")
	}
	fields := make([]string, 0, len(arr))
	for _, v := range arr {
		s, ok := v.(string)
		if !ok || s == "" {
			return nil, newError(ErrBadShape, "docql: $unset array must contain non-empty field path strings")
		}
		fields = append(fields, s)
	}
	return fields, nil
}
