package docql

import (
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var indexSegment = regexp.MustCompile(`^\d+$`)

func splitPath(path string) []string {
	return strings.Split(path, ".")
}

func isIndexSegment(seg string) bool {
	return indexSegment.MatchString(seg)
}

// Resolve walks path over obj, broadcasting across arrays the way
// spec.md §4.2 describes: whenever a non-index segment lands on an
// array, every element of that array is recursed into with deepFlag
// set, and unit-length broadcast results unwrap back to a scalar.
func Resolve(obj interface{}, path string, deepFlag bool) interface{} {
	return resolveSegments(obj, splitPath(path), deepFlag, true)
}

func resolveSegments(obj interface{}, segs []string, deepFlag, firstSegment bool) interface{} {
	if obj == nil {
		return nil
	}
	if len(segs) == 0 {
		return obj
	}
	seg := segs[0]
	rest := segs[1:]

	if arr, isArr := toSlice(obj); isArr {
		if firstSegment && deepFlag {
			// Prevents double-broadcast on consecutive array-valued keys.
			return obj
		}
		if isIndexSegment(seg) {
			idx, _ := strconv.Atoi(seg)
			if idx < 0 || idx >= len(arr) {
				return nil
			}
			return resolveSegments(arr[idx], rest, deepFlag, false)
		}
		out := make([]interface{}, 0, len(arr))
		for _, elem := range arr {
			out = append(out, resolveSegments(elem, segs, true, false))
		}
		if len(out) == 1 {
			return out[0]
		}
		return out
	}

	if m, isMap := toMap(obj); isMap {
		val, exists := m[seg]
		if !exists {
			return nil
		}
		return resolveSegments(val, rest, deepFlag, false)
	}

	return nil
}

// ResolveObj builds the minimal sub-document that contains the value
// Resolve(obj, path, false) would return, preserving nesting — used by
// $project to rebuild projected sub-documents (spec.md §4.2). Empty
// intermediate results collapse to nil.
func ResolveObj(obj interface{}, path string) interface{} {
	return resolveObjSegments(obj, splitPath(path))
}

func resolveObjSegments(obj interface{}, segs []string) interface{} {
	if obj == nil || len(segs) == 0 {
		return obj
	}
	seg := segs[0]
	rest := segs[1:]

	if arr, isArr := toSlice(obj); isArr {
		out := make(bson.A, 0, len(arr))
		for _, elem := range arr {
			sub := resolveObjSegments(elem, segs)
			if sub == nil {
				continue
			}
			out = append(out, sub)
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}

	if m, isMap := toMap(obj); isMap {
		val, exists := m[seg]
		if !exists {
			return nil
		}
		if len(rest) == 0 {
			return bson.M{seg: val}
		}
		sub := resolveObjSegments(val, rest)
		if sub == nil {
			return nil
		}
		return bson.M{seg: sub}
	}

	return nil
}

// Traverse walks obj to path's terminal segment and invokes fn with
// the container holding that segment and the segment's key. With
// force, missing intermediate maps are created along the way (spec.md
// §4.2).
func Traverse(obj bson.M, path string, fn func(container bson.M, lastKey string), force bool) {
	segs := splitPath(path)
	current := obj
	for i, seg := range segs {
		if i == len(segs)-1 {
			fn(current, seg)
			return
		}
		next, exists := current[seg]
		if !exists {
			if !force {
				return
			}
			newMap := bson.M{}
			current[seg] = newMap
			current = newMap
			continue
		}
		nested, ok := toMap(next)
		if !ok {
			if !force {
				return
			}
			nested = bson.M{}
			current[seg] = nested
		}
		current = nested
	}
}

// SetValue sets obj's value at path, creating intermediate maps as
// needed.
func SetValue(obj bson.M, path string, value interface{}) {
	Traverse(obj, path, func(container bson.M, lastKey string) {
		container[lastKey] = value
	}, true)
}

// RemoveValue deletes obj's value at path. An array-index terminal
// segment splices the element out instead of leaving a hole.
func RemoveValue(obj bson.M, path string) {
	segs := splitPath(path)
	removeAt(obj, segs, func(interface{}) {})
}

// removeAt descends into current following segs, deleting the
// terminal segment (map-key delete, or array splice for an index
// segment). setParent replaces current in its own parent container
// when current itself had to be replaced (array splice produces a new
// slice header).
func removeAt(current interface{}, segs []string, setParent func(interface{})) {
	if current == nil || len(segs) == 0 {
		return
	}
	seg := segs[0]
	last := len(segs) == 1

	if arr, isArr := toSlice(current); isArr {
		if !isIndexSegment(seg) {
			return
		}
		idx, _ := strconv.Atoi(seg)
		if idx < 0 || idx >= len(arr) {
			return
		}
		if last {
			spliced := append(append([]interface{}{}, arr[:idx]...), arr[idx+1:]...)
			setParent(bson.A(spliced))
			return
		}
		removeAt(arr[idx], segs[1:], func(v interface{}) { arr[idx] = v })
		return
	}

	if m, isMap := toMap(current); isMap {
		if last {
			delete(m, seg)
			return
		}
		next, exists := m[seg]
		if !exists {
			return
		}
		removeAt(next, segs[1:], func(v interface{}) { m[seg] = v })
	}
}
