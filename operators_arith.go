package docql

import (
	"math"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// arithmetic operators (spec.md §4.4): each evaluates its operand(s),
// returns null on a null/undefined operand, propagates NaN, and fails
// with a validation error on a non-numeric operand.
func init() {
	operators.aggregate["$abs"] = arithUnary(math.Abs)
	operators.aggregate["$ceil"] = arithUnary(math.Ceil)
	operators.aggregate["$floor"] = arithUnary(math.Floor)
	operators.aggregate["$exp"] = arithUnary(math.Exp)
	operators.aggregate["$ln"] = arithUnary(math.Log)
	operators.aggregate["$log10"] = arithUnary(math.Log10)
	operators.aggregate["$sqrt"] = arithSqrt
	operators.aggregate["$trunc"] = arithTrunc
	operators.aggregate["$add"] = arithVariadic(func(acc, x float64) float64 { return acc + x }, 0)
	operators.aggregate["$multiply"] = arithVariadic(func(acc, x float64) float64 { return acc * x }, 1)
	operators.aggregate["$subtract"] = arithBinary(func(a, b float64) (float64, error) { return a - b, nil })
	operators.aggregate["$divide"] = arithBinary(func(a, b float64) (float64, error) { return a / b, nil })
	operators.aggregate["$mod"] = arithBinary(func(a, b float64) (float64, error) { return math.Mod(a, b), nil })
	operators.aggregate["$pow"] = arithBinary(arithPow)
	operators.aggregate["$log"] = arithBinary(func(a, base float64) (float64, error) { return math.Log(a) / math.Log(base), nil })
}

func arithUnary(f func(float64) float64) AggregateOperatorFunc {
	return func(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
		v, err := ComputeValue(doc, operand, "", opt)
		if err != nil {
			return nil, err
		}
		if isNullish(v) {
			return nil, nil
		}
		n, ok := toFloat64(v)
		if !ok {
			return nil, newError(ErrDomain, "docql: non-numeric operand %v", v)
		}
		return f(n), nil
	}
}

// arithSqrt errors only on negative input; zero is fine and returns 0
// (Open Question #1: corrected semantics, not the source's bug).
func arithSqrt(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	v, err := ComputeValue(doc, operand, "", opt)
	if err != nil {
		return nil, err
	}
	if isNullish(v) {
		return nil, nil
	}
	n, ok := toFloat64(v)
	if !ok {
		return nil, newError(ErrDomain, "docql: $sqrt: non-numeric operand %v", v)
	}
	if math.IsNaN(n) {
		return math.NaN(), nil
	}
	if n < 0 {
		return nil, newError(ErrDomain, "docql: $sqrt of negative input %v", n)
	}
	return math.Sqrt(n), nil
}

// arithTrunc accepts any finite number (Open Question #1: corrected
// semantics, not the source's bug).
func arithTrunc(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	v, err := ComputeValue(doc, operand, "", opt)
	if err != nil {
		return nil, err
	}
	if isNullish(v) {
		return nil, nil
	}
	n, ok := toFloat64(v)
	if !ok {
		return nil, newError(ErrDomain, "docql: $trunc: non-numeric operand %v", v)
	}
	if math.IsNaN(n) {
		return math.NaN(), nil
	}
	return math.Trunc(n), nil
}

func arithPow(base, exp float64) (float64, error) {
	if base == 0 && exp < 0 {
		return 0, newError(ErrDomain, "docql: $pow: 0 ** negative exponent")
	}
	return math.Pow(base, exp), nil
}

func arithVariadic(reduce func(acc, x float64) float64, identity float64) AggregateOperatorFunc {
	return func(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
		args, isList := toSlice(operand)
		if !isList {
			args = []interface{}{operand}
		}
		acc := identity
		for _, a := range args {
			v, err := ComputeValue(doc, a, "", opt)
			if err != nil {
				return nil, err
			}
			if isNullish(v) {
				return nil, nil
			}
			n, ok := toFloat64(v)
			if !ok {
				return nil, newError(ErrDomain, "docql: non-numeric operand %v", v)
			}
			if math.IsNaN(n) {
				return math.NaN(), nil
			}
			acc = reduce(acc, n)
		}
		return acc, nil
	}
}

func arithBinary(f func(a, b float64) (float64, error)) AggregateOperatorFunc {
	return func(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
		args, err := evalArgs(doc, operand, opt, 2)
		if err != nil {
			return nil, err
		}
		if isNullish(args[0]) || isNullish(args[1]) {
			return nil, nil
		}
		a, aok := toFloat64(args[0])
		b, bok := toFloat64(args[1])
		if !aok || !bok {
			return nil, newError(ErrDomain, "docql: non-numeric operand")
		}
		if math.IsNaN(a) || math.IsNaN(b) {
			return math.NaN(), nil
		}
		return f(a, b)
	}
}
