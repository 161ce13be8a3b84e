package docql

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Options carries the evaluation context threaded through every
// ComputeValue call: Root is captured once on the outermost call and
// propagated (spec.md §4.3) so $$ROOT always resolves to the document
// evaluation started from, even from deep inside a nested operator
// application. Vars holds $let/$map/$filter bindings — spec.md §9
// recommends an explicit environment instead of the source's
// temporary-field-on-the-document trick, and that's what this field
// is for.
type Options struct {
	Root interface{}
	Vars map[string]interface{}
}

func (o *Options) withVar(name string, value interface{}) *Options {
	next := &Options{Root: o.Root}
	next.Vars = make(map[string]interface{}, len(o.Vars)+1)
	for k, v := range o.Vars {
		next.Vars[k] = v
	}
	next.Vars[name] = value
	return next
}

// redactSentinel is the set of $$KEEP/$$PRUNE/$$DESCEND strings from
// spec.md §3 — values that are paths when they appear in input but
// actions when they come back out of a $redact expression.
func isRedactSentinel(s string) bool {
	return s == "$$KEEP" || s == "$$PRUNE" || s == "$$DESCEND"
}

// ComputeValue is the expression evaluator's single entry point
// (spec.md §4.3). field is the key this expr was reached under ("" at
// the top level); its dispatch order is load-bearing and must not be
// reordered:
//
//  1. field names an aggregate operator            -> call its handler
//  2. field names a group operator                  -> evaluate expr as
//     an array, then reduce with the accumulator
//  3. expr is a "$..." string                        -> system var,
//     redact sentinel, $$ROOT. rebase, or a field path
//  4. expr is an array                                -> map element-wise
//  5. expr is a map                                   -> per-entry
//     evaluation, or single-operator-application form
//  6. otherwise                                       -> Clone(expr)
func ComputeValue(obj bson.M, expr interface{}, field string, opt *Options) (interface{}, error) {
	if opt == nil {
		opt = &Options{Root: obj}
	} else if opt.Root == nil {
		opt.Root = obj
	}

	if field != "" && isAggregateOperator(field) {
		handler := operators.aggregate[field]
		return handler(obj, expr, opt)
	}

	if field != "" && isGroupOperator(field) {
		arrVal, err := ComputeValue(obj, expr, "", opt)
		if err != nil {
			return nil, err
		}
		arr, _ := toSlice(arrVal)
		handler := operators.group[field]
		return handler(arr)
	}

	if s, isStr := expr.(string); isStr && strings.HasPrefix(s, "$") {
		return computeStringExpr(obj, s, opt)
	}

	if arr, isArr := toSlice(expr); isArr {
		out := make(bson.A, len(arr))
		for i, elem := range arr {
			v, err := ComputeValue(obj, elem, "", opt)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	if m, isMap := toMap(expr); isMap {
		return computeMapExpr(obj, m, opt)
	}

	return Clone(expr), nil
}

func computeStringExpr(obj bson.M, s string, opt *Options) (interface{}, error) {
	switch s {
	case "$$ROOT":
		return opt.Root, nil
	case "$$CURRENT":
		return obj, nil
	}
	if isRedactSentinel(s) {
		return s, nil
	}
	if strings.HasPrefix(s, "$$ROOT.") {
		rootMap, _ := toMap(opt.Root)
		return Resolve(rootMap, strings.TrimPrefix(s, "$$ROOT."), false), nil
	}
	if strings.HasPrefix(s, "$$") {
		name := strings.TrimPrefix(s, "$$")
		if val, ok := opt.Vars[name]; ok {
			return val, nil
		}
		return nil, nil
	}
	path := strings.TrimPrefix(s, "$")
	return Resolve(obj, path, false), nil
}

func computeMapExpr(obj bson.M, m bson.M, opt *Options) (interface{}, error) {
	var operatorKey string
	operatorCount := 0
	for k := range m {
		if isAggregateOperator(k) || isGroupOperator(k) {
			operatorCount++
			operatorKey = k
		}
	}
	if operatorCount > 0 {
		if len(m) != 1 {
			return nil, newError(ErrBadShape, "docql: operator application must have exactly one key, got %d", len(m))
		}
		return ComputeValue(obj, m[operatorKey], operatorKey, opt)
	}

	out := make(bson.M, len(m))
	for k, v := range m {
		val, err := ComputeValue(obj, v, k, opt)
		if err != nil {
			return nil, err
		}
		out[k] = val
	}
	return out, nil
}
