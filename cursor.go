package docql

import (
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Cursor accumulates skip/limit/sort operators without touching the
// underlying documents, then materializes lazily the first time any
// terminal method is called (spec.md §6). Materialization always
// composes the internal pipeline in the fixed order
// [$sort, $skip, $limit, $project], regardless of the order the
// caller chained the accumulator calls in.
type Cursor struct {
	source     []bson.M
	projection bson.M

	sortSpec bson.D
	skipN    int
	limitN   int
	hasLimit bool

	materialized bool
	rows         []bson.M
	pos          int
}

func newCursor(source []bson.M, projection bson.M) *Cursor {
	return &Cursor{source: source, projection: projection}
}

// Sort accumulates a sort specification; a later call replaces an
// earlier one rather than composing, matching a single $sort stage.
// spec should be a bson.D so multi-key precedence follows declaration
// order (spec.md §4.6); a bson.M is accepted for single-key sorts but
// falls back to alphabetical order for ties across multiple keys.
func (c *Cursor) Sort(spec interface{}) *Cursor {
	d, _ := toD(spec)
	c.sortSpec = d
	c.materialized = false
	return c
}

// Skip accumulates a skip count.
func (c *Cursor) Skip(n int) *Cursor {
	c.skipN = n
	c.materialized = false
	return c
}

// Limit accumulates a limit count.
func (c *Cursor) Limit(n int) *Cursor {
	c.limitN = n
	c.hasLimit = true
	c.materialized = false
	return c
}

func (c *Cursor) materialize() {
	if c.materialized {
		return
	}
	rows := make([]bson.M, len(c.source))
	copy(rows, c.source)

	if c.sortSpec != nil {
		rows = sortDocuments(rows, c.sortSpec)
	}
	if c.skipN > 0 {
		if c.skipN >= len(rows) {
			rows = nil
		} else {
			rows = rows[c.skipN:]
		}
	}
	if c.hasLimit {
		if c.limitN < 0 {
			rows = nil
		} else if c.limitN < len(rows) {
			rows = rows[:c.limitN]
		}
	}
	if c.projection != nil {
		projected := make([]bson.M, len(rows))
		for i, row := range rows {
			out, err := applyProjection(row, c.projection)
			if err != nil {
				out = row
			}
			projected[i] = out
		}
		rows = projected
	}

	c.rows = rows
	c.pos = 0
	c.materialized = true
}

// All returns the fully materialized document slice.
func (c *Cursor) All() []bson.M {
	c.materialize()
	return c.rows
}

// Count returns the materialized row count.
func (c *Cursor) Count() int {
	c.materialize()
	return len(c.rows)
}

// First returns the first row, or nil if the cursor is empty.
func (c *Cursor) First() bson.M {
	c.materialize()
	if len(c.rows) == 0 {
		return nil
	}
	return c.rows[0]
}

// Last returns the last row, or nil if the cursor is empty.
func (c *Cursor) Last() bson.M {
	c.materialize()
	if len(c.rows) == 0 {
		return nil
	}
	return c.rows[len(c.rows)-1]
}

// HasNext reports whether Next would return a row.
func (c *Cursor) HasNext() bool {
	c.materialize()
	return c.pos < len(c.rows)
}

// Next advances the cursor's internal position, returning the row at
// it, or nil once exhausted.
func (c *Cursor) Next() bson.M {
	c.materialize()
	if c.pos >= len(c.rows) {
		return nil
	}
	row := c.rows[c.pos]
	c.pos++
	return row
}

// Map applies fn to every materialized row.
func (c *Cursor) Map(fn func(bson.M) interface{}) []interface{} {
	c.materialize()
	out := make([]interface{}, len(c.rows))
	for i, row := range c.rows {
		out[i] = fn(row)
	}
	return out
}

// ForEach calls fn for every materialized row.
func (c *Cursor) ForEach(fn func(bson.M)) {
	c.materialize()
	for _, row := range c.rows {
		fn(row)
	}
}

// Min returns the minimum value of expr over the materialized rows,
// or nil if the cursor is empty.
func (c *Cursor) Min(expr interface{}) (interface{}, error) {
	return c.extremum(expr, func(a, b float64) bool { return a < b })
}

// Max returns the maximum value of expr over the materialized rows,
// or nil if the cursor is empty.
func (c *Cursor) Max(expr interface{}) (interface{}, error) {
	return c.extremum(expr, func(a, b float64) bool { return a > b })
}

func (c *Cursor) extremum(expr interface{}, better func(a, b float64) bool) (interface{}, error) {
	c.materialize()
	var best interface{}
	var bestF float64
	haveBest := false
	for _, row := range c.rows {
		v, err := ComputeValue(row, expr, "", nil)
		if err != nil {
			return nil, err
		}
		f, ok := toFloat64(v)
		if !ok {
			continue
		}
		if !haveBest || better(f, bestF) {
			best, bestF, haveBest = v, f, true
		}
	}
	return best, nil
}

// sortDocuments implements $sort's comparator (spec.md §4.4/§4.5): each
// spec entry is a field path to +1/-1, with the first entry the
// primary key and later entries breaking ties between the ones before
// it, in declaration order, with a stable tie-break so property 6 in
// spec.md §8 holds.
func sortDocuments(rows []bson.M, spec bson.D) []bson.M {
	out := make([]bson.M, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		for _, e := range spec {
			dir, _ := toFloat64(e.Value)
			a := Resolve(out[i], e.Key, false)
			b := Resolve(out[j], e.Key, false)
			cmp := compareValues(a, b)
			if cmp == 0 {
				continue
			}
			if dir < 0 {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return out
}

// compareValues returns -1/0/1 comparing a and b across BSON's
// canonical type ordering for the scalar kinds this system supports.
func compareValues(a, b interface{}) int {
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, aIsStr := a.(string)
	bs, bIsStr := b.(string)
	if aIsStr && bIsStr {
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	}
	ra, rb := typeRank(a), typeRank(b)
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		return 0
	}
}

func typeRank(v interface{}) int {
	switch TypeOf(v) {
	case KindNull, KindUndefined:
		return 0
	case KindNumber:
		return 1
	case KindString:
		return 2
	case KindObject:
		return 3
	case KindArray:
		return 4
	case KindBoolean:
		return 6
	case KindDate:
		return 7
	default:
		return 8
	}
}
