package docql

import "go.mongodb.org/mongo-driver/v2/bson"

func init() {
	operators.pipeline["$redact"] = redactStage
}

// redactStage evaluates expr per document; the result is an action
// sentinel: $$KEEP keeps the document verbatim, $$PRUNE drops it,
// $$DESCEND recurses into each sub-document/array element of a clone,
// pruning anything that itself redacts away (spec.md §4.6).
func redactStage(collection []bson.M, operand interface{}, _ *Query) ([]bson.M, error) {
	var out []bson.M
	for _, doc := range collection {
		kept, err := redactDoc(doc, operand)
		if err != nil {
			return nil, err
		}
		if kept != nil {
			out = append(out, kept)
		}
	}
	return out, nil
}

func redactDoc(doc bson.M, expr interface{}) (bson.M, error) {
	verdict, err := ComputeValue(doc, expr, "", &Options{Root: doc})
	if err != nil {
		return nil, err
	}
	switch verdict {
	case "$$PRUNE":
		return nil, nil
	case "$$KEEP":
		cloned, _ := Clone(doc).(bson.M)
		return cloned, nil
	case "$$DESCEND":
		cloned, _ := Clone(doc).(bson.M)
		redactDescend(cloned, expr)
		return cloned, nil
	default:
		cloned, _ := Clone(doc).(bson.M)
		return cloned, nil
	}
}

func redactDescend(node bson.M, expr interface{}) {
	for key, val := range node {
		switch v := val.(type) {
		case bson.M:
			if !redactSubdoc(node, key, v, expr) {
				continue
			}
		case map[string]interface{}:
			if !redactSubdoc(node, key, bson.M(v), expr) {
				continue
			}
		case bson.A:
			node[key] = redactArray(v, expr)
		case []interface{}:
			node[key] = redactArray(bson.A(v), expr)
		}
	}
}

func redactSubdoc(parent bson.M, key string, sub bson.M, expr interface{}) bool {
	verdict, err := ComputeValue(sub, expr, "", &Options{Root: sub})
	if err != nil {
		return false
	}
	switch verdict {
	case "$$PRUNE":
		delete(parent, key)
		return false
	case "$$DESCEND":
		redactDescend(sub, expr)
		parent[key] = sub
	default:
		parent[key] = sub
	}
	return true
}

func redactArray(arr bson.A, expr interface{}) bson.A {
	out := bson.A{}
	for _, elem := range arr {
		if sub, ok := toMap(elem); ok {
			verdict, err := ComputeValue(sub, expr, "", &Options{Root: sub})
			if err == nil && verdict == "$$PRUNE" {
				continue
			}
			if err == nil && verdict == "$$DESCEND" {
				redactDescend(sub, expr)
			}
			out = append(out, sub)
			continue
		}
		out = append(out, elem)
	}
	return out
}
