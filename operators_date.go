package docql

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// date operators (spec.md §4.4). Integer extraction reads UTC hour
// but local day/month/year/minutes/seconds — an asymmetry spec.md
// marks "(matches source)" and Open Question #3 decides to preserve
// verbatim rather than normalize to all-UTC or all-local.
func init() {
	operators.aggregate["$year"] = dateField(func(t time.Time) float64 { return float64(t.Local().Year()) })
	operators.aggregate["$month"] = dateField(func(t time.Time) float64 { return float64(t.Local().Month()) })
	operators.aggregate["$dayOfMonth"] = dateField(func(t time.Time) float64 { return float64(t.Local().Day()) })
	operators.aggregate["$hour"] = dateField(func(t time.Time) float64 { return float64(t.UTC().Hour()) })
	operators.aggregate["$minute"] = dateField(func(t time.Time) float64 { return float64(t.Local().Minute()) })
	operators.aggregate["$second"] = dateField(func(t time.Time) float64 { return float64(t.Local().Second()) })
	operators.aggregate["$dayOfYear"] = dateField(func(t time.Time) float64 { return float64(t.Local().YearDay()) })
	operators.aggregate["$dayOfWeek"] = dateField(func(t time.Time) float64 { return float64(t.Local().Weekday()) + 1 })
	operators.aggregate["$week"] = dateField(isoWeek)
	operators.aggregate["$dateToString"] = dateToString
}

func toTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	default:
		return time.Time{}, false
	}
}

// dateField wraps a single-date extractor; non-date input returns
// undefined, i.e. nil (spec.md §7).
func dateField(extract func(time.Time) float64) AggregateOperatorFunc {
	return func(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
		v, err := ComputeValue(doc, operand, "", opt)
		if err != nil {
			return nil, err
		}
		t, ok := toTime(v)
		if !ok {
			return nil, nil
		}
		return extract(t), nil
	}
}

// isoWeek anchors on Thursday per ISO-8601 week numbering (spec.md
// §4.4).
func isoWeek(t time.Time) float64 {
	_, week := t.Local().ISOWeek()
	return float64(week)
}

var dateTokens = map[byte]func(time.Time) string{
	'Y': func(t time.Time) string { return fmt.Sprintf("%04d", t.Year()) },
	'm': func(t time.Time) string { return fmt.Sprintf("%02d", int(t.Month())) },
	'd': func(t time.Time) string { return fmt.Sprintf("%02d", t.Day()) },
	'H': func(t time.Time) string { return fmt.Sprintf("%02d", t.Hour()) },
	'M': func(t time.Time) string { return fmt.Sprintf("%02d", t.Minute()) },
	'S': func(t time.Time) string { return fmt.Sprintf("%02d", t.Second()) },
	'L': func(t time.Time) string { return fmt.Sprintf("%03d", t.Nanosecond()/1e6) },
	'j': func(t time.Time) string { return fmt.Sprintf("%03d", t.YearDay()) },
	'w': func(t time.Time) string { return fmt.Sprintf("%d", int(t.Weekday())+1) },
	'U': func(t time.Time) string { _, w := t.ISOWeek(); return fmt.Sprintf("%02d", w) },
}

// dateToString formats its "date" per a %-token "format" string
// (spec.md §4.4's token table); %% is a literal percent.
func dateToString(doc bson.M, operand interface{}, opt *Options) (interface{}, error) {
	m, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $dateToString requires an object operand")
	}
	formatExpr, hasFormat := m["format"]
	if !hasFormat {
		return nil, newError(ErrBadShape, "docql: $dateToString requires a format field")
	}
	formatVal, err := ComputeValue(doc, formatExpr, "", opt)
	if err != nil {
		return nil, err
	}
	format, ok := formatVal.(string)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $dateToString: format must be a string")
	}
	dateVal, err := ComputeValue(doc, m["date"], "", opt)
	if err != nil {
		return nil, err
	}
	t, ok := toTime(dateVal)
	if !ok {
		return nil, nil
	}
	t = t.Local()

	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 >= len(format) {
			b.WriteByte(format[i])
			continue
		}
		next := format[i+1]
		if next == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		if fn, ok := dateTokens[next]; ok {
			b.WriteString(fn(t))
			i++
			continue
		}
		b.WriteByte(format[i])
	}
	return b.String(), nil
}
