package docql

import (
	"strings"
	"unicode/utf16"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// string operators (spec.md §4.4).
func init() {
	operators.aggregate["$concat"] = stringConcat
	operators.aggregate["$toLower"] = stringCase(strings.ToLower)
	operators.aggregate["$toUpper"] = stringCase(strings.ToUpper)
	operators.aggregate["$substr"] = stringSubstr
	operators.aggregate["$split"] = stringSplit
	operators.aggregate["$strcasecmp"] = stringStrcasecmp
	operators.aggregate["$indexOfBytes"] = stringIndexOfBytes
}

func stringConcat(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	args, isList := toSlice(operand)
	if !isList {
		args = []interface{}{operand}
	}
	var b strings.Builder
	for _, a := range args {
		v, err := ComputeValue(doc, a, "", opt)
		if err != nil {
			return nil, err
		}
		if isNullish(v) {
			return nil, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, newError(ErrDomain, "docql: $concat: non-string operand %v", v)
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func stringCase(f func(string) string) AggregateOperatorFunc {
	return func(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
		v, err := ComputeValue(doc, operand, "", opt)
		if err != nil {
			return nil, err
		}
		if isNullish(v) {
			return nil, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, newError(ErrDomain, "docql: non-string operand %v", v)
		}
		return f(s), nil
	}
}

// stringSubstr: negative start returns ""; negative length returns
// the tail from start (spec.md §4.4).
func stringSubstr(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	args, err := evalArgs(doc, operand, opt, 3)
	if err != nil {
		return nil, err
	}
	s, ok := args[0].(string)
	if !ok {
		if isNullish(args[0]) {
			return nil, nil
		}
		return nil, newError(ErrDomain, "docql: $substr: non-string operand %v", args[0])
	}
	start, _ := toFloat64(args[1])
	length, _ := toFloat64(args[2])
	runes := []rune(s)
	if start < 0 {
		return "", nil
	}
	startI := int(start)
	if startI >= len(runes) {
		return "", nil
	}
	if length < 0 {
		return string(runes[startI:]), nil
	}
	end := startI + int(length)
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[startI:end]), nil
}

func stringSplit(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	args, err := evalArgs(doc, operand, opt, 2)
	if err != nil {
		return nil, err
	}
	s, sOk := args[0].(string)
	sep, sepOk := args[1].(string)
	if !sOk || !sepOk {
		if isNullish(args[0]) || isNullish(args[1]) {
			return nil, nil
		}
		return nil, newError(ErrDomain, "docql: $split: non-string operand")
	}
	parts := strings.Split(s, sep)
	out := make(bson.A, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}

func stringStrcasecmp(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	args, err := evalArgs(doc, operand, opt, 2)
	if err != nil {
		return nil, err
	}
	a, aOk := args[0].(string)
	b, bOk := args[1].(string)
	if !aOk || !bOk {
		return nil, newError(ErrDomain, "docql: $strcasecmp: non-string operand")
	}
	a, b = strings.ToLower(a), strings.ToLower(b)
	switch {
	case a < b:
		return float64(-1), nil
	case a > b:
		return float64(1), nil
	default:
		return float64(0), nil
	}
}

// stringIndexOfBytes operates on UTF-16 code units, not UTF-8 bytes
// (Open Question #4: spec.md's own Non-goals disclaim full UTF-8
// code-point correctness here, so the source's UTF-16 indexing is
// kept rather than reinterpreted against Go's byte-indexed strings).
func stringIndexOfBytes(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	arr, ok := toSlice(operand)
	if !ok || len(arr) < 2 || len(arr) > 4 {
		return nil, newError(ErrBadArity, "docql: $indexOfBytes expects 2 to 4 operands")
	}
	args := make([]interface{}, len(arr))
	for i, a := range arr {
		v, err := ComputeValue(doc, a, "", opt)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	s, sOk := args[0].(string)
	substr, subOk := args[1].(string)
	if isNullish(args[0]) {
		return nil, nil
	}
	if !sOk || !subOk {
		return nil, newError(ErrDomain, "docql: $indexOfBytes: non-string operand")
	}
	units := utf16.Encode([]rune(s))
	subUnits := utf16.Encode([]rune(substr))

	start := 0
	end := len(units)
	if len(args) >= 3 {
		if n, ok := toFloat64(args[2]); ok {
			start = int(n)
		}
	}
	if len(args) == 4 {
		if n, ok := toFloat64(args[3]); ok {
			end = int(n)
		}
	}
	if start > end {
		return float64(-1), nil
	}
	if start < 0 {
		start = 0
	}
	if end > len(units) {
		end = len(units)
	}

	idx := indexOfUnits(units[start:end], subUnits)
	if idx < 0 {
		return float64(-1), nil
	}
	return float64(idx + start), nil
}

func indexOfUnits(haystack, needle []uint16) int {
	if len(needle) == 0 {
		return 0
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, u := range needle {
			if haystack[i+j] != u {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
