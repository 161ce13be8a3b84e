package docql

import (
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// predicate is a compiled single-field matcher (spec.md glossary):
// Test resolves the configured field path against the candidate
// document (with array-broadcast semantics, §4.2) and evaluates.
type predicate struct {
	test func(doc bson.M) (bool, error)
}

// Query compiles a criteria document once (spec.md §4.5) into a
// conjunction of predicates, ANDed together by Test.
type Query struct {
	predicates []predicate
	projection bson.M
}

// NewQuery compiles criteria (and an optional projection, used by
// Find) into a Query. Compilation fails with a docql *Error on any of
// the shapes spec.md §4.5 calls out: criteria not a map, a logical
// operator's operand not an array, $regex over a non-string, or an
// unknown operator name.
func NewQuery(criteria bson.M, projection bson.M) (*Query, error) {
	q := &Query{projection: projection}
	for key, val := range criteria {
		pred, err := compileEntry(key, val)
		if err != nil {
			return nil, err
		}
		q.predicates = append(q.predicates, pred)
	}
	return q, nil
}

func compileEntry(key string, val interface{}) (predicate, error) {
	switch key {
	case "$and":
		return compileLogical(key, val, func(results []bool) bool {
			for _, r := range results {
				if !r {
					return false
				}
			}
			return true
		})
	case "$or":
		return compileLogical(key, val, func(results []bool) bool {
			for _, r := range results {
				if r {
					return true
				}
			}
			return false
		})
	case "$nor":
		return compileLogical(key, val, func(results []bool) bool {
			for _, r := range results {
				if r {
					return false
				}
			}
			return true
		})
	case "$where":
		return compileWhere(val)
	default:
		return compileFieldPredicate(key, val)
	}
}

func compileLogical(key string, val interface{}, reduce func([]bool) bool) (predicate, error) {
	arr, ok := toSlice(val)
	if !ok {
		return predicate{}, newError(ErrBadCriteria, "docql: %s operand must be an array", key)
	}
	subs := make([]*Query, 0, len(arr))
	for _, clauseRaw := range arr {
		clauseMap, isMap := toMap(clauseRaw)
		if !isMap {
			return predicate{}, newError(ErrBadCriteria, "docql: %s element must be an object", key)
		}
		sub, err := NewQuery(clauseMap, nil)
		if err != nil {
			return predicate{}, err
		}
		subs = append(subs, sub)
	}
	return predicate{test: func(doc bson.M) (bool, error) {
		results := make([]bool, len(subs))
		for i, s := range subs {
			results[i] = s.Test(doc)
		}
		return reduce(results), nil
	}}, nil
}

// compileWhere accepts a function or a string compiled to `func(doc)
// bool` whose body is "return <string>;" evaluated with doc bound as
// `this` (spec.md §4.4). A Go function is used directly; the string
// form is restricted to a single comparison of the shape
// "this.<path> <op> <literal>" since this target has no JS engine to
// embed — that covers the common predicate shapes the source's
// string-$where exists for, without faking a scripting runtime.
func compileWhere(val interface{}) (predicate, error) {
	switch fn := val.(type) {
	case func(bson.M) bool:
		return predicate{test: func(doc bson.M) (bool, error) { return fn(doc), nil }}, nil
	case string:
		expr, err := compileWhereString(fn)
		if err != nil {
			return predicate{}, err
		}
		return predicate{test: func(doc bson.M) (bool, error) { return expr(doc), nil }}, nil
	default:
		return predicate{}, newError(ErrBadCriteria, "docql: $where must be a function or string")
	}
}

var whereExprPattern = regexp.MustCompile(`^\s*this\.([\w.]+)\s*(==|!=|>=|<=|>|<)\s*(.+?)\s*;?\s*$`)

// compileWhereString parses "return this.<path> <op> <literal>;" into
// a comparison predicate. literal may be a quoted string, true/false,
// null, or a number.
func compileWhereString(src string) (func(doc bson.M) bool, error) {
	body := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(src), "return"))
	m := whereExprPattern.FindStringSubmatch(body)
	if m == nil {
		return nil, newError(ErrBadCriteria, "docql: $where string must be \"return this.<path> <op> <literal>;\"")
	}
	path, op, litSrc := m[1], m[2], m[3]
	lit := parseWhereLiteral(litSrc)
	return func(doc bson.M) bool {
		val := Resolve(doc, path, false)
		switch op {
		case "==":
			return IsEqual(val, lit)
		case "!=":
			return !IsEqual(val, lit)
		case ">", ">=", "<", "<=":
			a, aok := toFloat64(val)
			b, bok := toFloat64(lit)
			if !aok || !bok {
				return false
			}
			switch op {
			case ">":
				return a > b
			case ">=":
				return a >= b
			case "<":
				return a < b
			default:
				return a <= b
			}
		default:
			return false
		}
	}, nil
}

func parseWhereLiteral(s string) interface{} {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func compileFieldPredicate(field string, raw interface{}) (predicate, error) {
	predMap := normalizePredicate(raw)

	if optsVal, hasOpts := predMap["$options"]; hasOpts {
		if regexVal, hasRegex := predMap["$regex"]; hasRegex {
			if optsStr, ok := optsVal.(string); ok {
				predMap = cloneShallow(predMap)
				re, err := compileQueryRegex(regexVal, optsStr)
				if err != nil {
					return predicate{}, err
				}
				predMap["$regex"] = re
			}
		}
		delete(predMap, "$options")
	}
	if regexVal, hasRegex := predMap["$regex"]; hasRegex {
		if _, err := compileQueryRegex(regexVal, ""); err != nil {
			return predicate{}, err
		}
	}

	type compiledOp struct {
		name string
		fn   QueryOperatorFunc
		arg  interface{}
	}
	var ops []compiledOp
	for opName, opArg := range predMap {
		fn, ok := operators.query[opName]
		if !ok {
			return predicate{}, newError(ErrBadOperator, "docql: unknown query operator %q", opName)
		}
		ops = append(ops, compiledOp{name: opName, fn: fn, arg: opArg})
	}

	return predicate{test: func(doc bson.M) (bool, error) {
		resolved := Resolve(doc, field, true)
		for _, op := range ops {
			ok, err := op.fn(field, resolved, op.arg)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}}, nil
}

func cloneShallow(m bson.M) bson.M {
	out := make(bson.M, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// normalizePredicate wraps a scalar value into {$eq: value} and a
// regex value into {$regex: value}; a map containing no query-operator
// keys is likewise wrapped into {$eq: value} (spec.md §3, §4.5).
func normalizePredicate(raw interface{}) bson.M {
	if re, ok := raw.(*regexp.Regexp); ok {
		return bson.M{"$regex": re}
	}
	if m, ok := toMap(raw); ok {
		hasOperator := false
		for k := range m {
			if isQueryOperator(k) || k == "$options" {
				hasOperator = true
				break
			}
		}
		if hasOperator {
			return m
		}
		return bson.M{"$eq": m}
	}
	return bson.M{"$eq": raw}
}

// Test runs the conjunction of compiled predicates against obj
// (spec.md §4.5).
func (q *Query) Test(obj bson.M) bool {
	for _, p := range q.predicates {
		ok, err := p.test(obj)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// Find compiles the query against collection and returns a deferred
// Cursor (spec.md §6). An explicit projection overrides the one this
// Query was constructed with, if any.
func (q *Query) Find(collection []bson.M, projection bson.M) *Cursor {
	if projection == nil {
		projection = q.projection
	}
	var matched []bson.M
	for _, doc := range collection {
		if q.Test(doc) {
			matched = append(matched, doc)
		}
	}
	return newCursor(matched, projection)
}

// Remove returns the complement of Find: every document that does NOT
// satisfy the criteria.
func (q *Query) Remove(collection []bson.M) []bson.M {
	var kept []bson.M
	for _, doc := range collection {
		if !q.Test(doc) {
			kept = append(kept, doc)
		}
	}
	return kept
}

// --- package-level facade, spec.md §6 ---

// Find compiles criteria once and runs it against collection. An error
// raised by an operator while matching a document is returned.
func Find(collection []bson.M, criteria bson.M, projection bson.M) (*Cursor, error) {
	q, err := NewQuery(criteria, projection)
	if err != nil {
		return nil, err
	}
	var matched []bson.M
	for _, doc := range collection {
		keep := true
		for _, p := range q.predicates {
			ok, err := p.test(doc)
			if err != nil {
				return nil, err
			}
			if !ok {
				keep = false
				break
			}
		}
		if keep {
			matched = append(matched, doc)
		}
	}
	return newCursor(matched, projection), nil
}

// Remove returns collection with every document matching criteria
// removed.
func Remove(collection []bson.M, criteria bson.M) ([]bson.M, error) {
	q, err := NewQuery(criteria, nil)
	if err != nil {
		return nil, err
	}
	return q.Remove(collection), nil
}
