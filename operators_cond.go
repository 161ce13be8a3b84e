package docql

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// conditional, variable-binding, and literal operators (spec.md
// §4.4).
func init() {
	operators.aggregate["$cond"] = condCond
	operators.aggregate["$switch"] = condSwitch
	operators.aggregate["$ifNull"] = condIfNull
	operators.aggregate["$let"] = condLet
	operators.aggregate["$literal"] = condLiteral
}

// condCond accepts the array form [if, then, else] or the object
// form {if, then, else} (spec.md §4.4).
func condCond(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	var ifExpr, thenExpr, elseExpr interface{}
	if arr, ok := toSlice(operand); ok {
		if len(arr) != 3 {
			return nil, newError(ErrBadArity, "docql: $cond array form requires exactly 3 elements")
		}
		ifExpr, thenExpr, elseExpr = arr[0], arr[1], arr[2]
	} else if m, ok := toMap(operand); ok {
		var hasIf, hasThen, hasElse bool
		if ifExpr, hasIf = m["if"]; !hasIf {
			return nil, newError(ErrBadShape, "docql: $cond object form requires an if field")
		}
		if thenExpr, hasThen = m["then"]; !hasThen {
			return nil, newError(ErrBadShape, "docql: $cond object form requires a then field")
		}
		if elseExpr, hasElse = m["else"]; !hasElse {
			return nil, newError(ErrBadShape, "docql: $cond object form requires an else field")
		}
	} else {
		return nil, newError(ErrBadShape, "docql: $cond requires an array or object operand")
	}

	condVal, err := ComputeValue(doc, ifExpr, "", opt)
	if err != nil {
		return nil, err
	}
	if toBool(condVal) {
		return ComputeValue(doc, thenExpr, "", opt)
	}
	return ComputeValue(doc, elseExpr, "", opt)
}

// condSwitch linearly scans branches and returns the first whose case
// is truthy, falling back to default (spec.md §4.4).
func condSwitch(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	m, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $switch requires an object operand")
	}
	branchesVal, hasBranches := m["branches"]
	if !hasBranches {
		return nil, newError(ErrBadShape, "docql: $switch requires a branches field")
	}
	branches, ok := toSlice(branchesVal)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $switch: branches must be an array")
	}
	for _, b := range branches {
		branch, ok := toMap(b)
		if !ok {
			return nil, newError(ErrBadShape, "docql: $switch: each branch must be an object")
		}
		caseVal, err := ComputeValue(doc, branch["case"], "", opt)
		if err != nil {
			return nil, err
		}
		if toBool(caseVal) {
			return ComputeValue(doc, branch["then"], "", opt)
		}
	}
	if defaultExpr, hasDefault := m["default"]; hasDefault {
		return ComputeValue(doc, defaultExpr, "", opt)
	}
	return nil, newError(ErrBadCriteria, "docql: $switch: no branch matched and no default given")
}

// condIfNull returns the first non-null-non-undefined argument.
func condIfNull(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	args, isList := toSlice(operand)
	if !isList {
		return nil, newError(ErrBadArity, "docql: $ifNull requires an array operand")
	}
	if len(args) < 2 {
		return nil, newError(ErrBadArity, "docql: $ifNull requires at least 2 operands")
	}
	for _, a := range args {
		v, err := ComputeValue(doc, a, "", opt)
		if err != nil {
			return nil, err
		}
		if !isNullish(v) {
			return v, nil
		}
	}
	return nil, nil
}

// condLet binds vars (each prefixed with $ on lookup) for the
// duration of evaluating in (spec.md §4.4), using an explicit
// environment rather than the source's temporary-document-mutation
// trick.
func condLet(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	m, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $let requires an object operand")
	}
	varsVal, hasVars := m["vars"]
	if !hasVars {
		return nil, newError(ErrBadShape, "docql: $let requires a vars field")
	}
	varsMap, ok := toMap(varsVal)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $let: vars must be an object")
	}
	letOpt := opt
	for name, expr := range varsMap {
		v, err := ComputeValue(doc, expr, "", opt)
		if err != nil {
			return nil, err
		}
		letOpt = letOpt.withVar(name, v)
	}
	return ComputeValue(doc, m["in"], "", letOpt)
}

func condLiteral(_ bson.M, operand interface{}, _ *Options) (interface{}, error) {
	return Clone(operand), nil
}
