package docql

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

func init() {
	operators.pipeline["$group"] = groupStage
}

// groupStage partitions collection by hashcode(computeValue(doc,
// idExpr)) and emits one document per partition: _id (omitted when
// the partition key evaluates to nil) plus one field per remaining
// accumulator (spec.md §4.6).
func groupStage(collection []bson.M, operand interface{}, _ *Query) ([]bson.M, error) {
	spec, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $group operand must be an object")
	}
	idExpr, hasID := spec["_id"]
	if !hasID {
		return nil, newError(ErrBadShape, "docql: $group requires an _id field")
	}

	type partition struct {
		key   interface{}
		docs  []bson.M
		order int
	}
	order := map[string]*partition{}
	var sequence []*partition

	for _, doc := range collection {
		keyVal, err := ComputeValue(doc, idExpr, "", nil)
		if err != nil {
			return nil, err
		}
		h := HashCode(keyVal)
		p, exists := order[h]
		if !exists {
			p = &partition{key: keyVal, order: len(sequence)}
			order[h] = p
			sequence = append(sequence, p)
		}
		p.docs = append(p.docs, doc)
	}

	accNames := make([]string, 0, len(spec)-1)
	for name := range spec {
		if name != "_id" {
			accNames = append(accNames, name)
		}
	}

	out := make([]bson.M, len(sequence))
	for i, p := range sequence {
		result := bson.M{}
		if p.key != nil {
			result["_id"] = p.key
		}
		for _, name := range accNames {
			v, err := accumulate(p.docs, name, spec[name])
			if err != nil {
				return nil, err
			}
			result[name] = v
		}
		out[i] = result
	}
	return out, nil
}

// accumulate recognizes a bare group-operator key or a one-level
// nested {$op: expr} form, and rejects mixing the two (spec.md §4.6).
func accumulate(docs []bson.M, name string, expr interface{}) (interface{}, error) {
	m, isMap := toMap(expr)
	if !isMap {
		return nil, newError(ErrBadShape, "docql: $group accumulator %q must be an object", name)
	}
	var opName string
	for k := range m {
		if isGroupOperator(k) {
			if opName != "" {
				return nil, newError(ErrBadShape, "docql: $group accumulator %q has more than one operator", name)
			}
			opName = k
		}
	}
	if opName == "" {
		return nil, newError(ErrBadOperator, "docql: $group accumulator %q names no known accumulator", name)
	}
	if len(m) != 1 {
		return nil, newError(ErrBadShape, "docql: $group accumulator %q mixes operator and other keys", name)
	}

	values := make([]interface{}, len(docs))
	for i, doc := range docs {
		v, err := ComputeValue(doc, m[opName], "", nil)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return operators.group[opName](values)
}
