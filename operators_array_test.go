package docql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestArraySize(t *testing.T) {
	v, err := ComputeValue(bson.M{"a": bson.A{1, 2, 3}}, bson.M{"$size": "$a"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestArrayElemAtNegativeIndex(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$arrayElemAt": bson.A{bson.A{1, 2, 3}, -1}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestArrayRangeWithStep(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$range": bson.A{0, 10, 3}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, bson.A{0.0, 3.0, 6.0, 9.0}, v)
}

func TestArraySliceOneArgPositiveAndNegative(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$slice": bson.A{bson.A{1, 2, 3, 4, 5}, 2}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, bson.A{1, 2}, v)

	v, err = ComputeValue(bson.M{}, bson.M{"$slice": bson.A{bson.A{1, 2, 3, 4, 5}, -2}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, bson.A{4, 5}, v)
}

func TestArraySliceTwoArgsSkipLimit(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$slice": bson.A{bson.A{1, 2, 3, 4, 5}, 1, 2}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, bson.A{2, 3}, v)
}

func TestArrayReduce(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$reduce": bson.M{
		"input":        bson.A{1, 2, 3, 4},
		"initialValue": 0,
		"in":           bson.M{"$add": bson.A{"$$value", "$$this"}},
	}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)
}

func TestArrayFilter(t *testing.T) {
	doc := bson.M{"items": bson.A{1, 2, 3, 4, 5}}
	v, err := ComputeValue(doc, bson.M{"$filter": bson.M{
		"input": "$items",
		"as":    "n",
		"cond":  bson.M{"$mod": bson.A{"$$n", 2}},
	}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, bson.A{1, 3, 5}, v)
}

func TestArrayMap(t *testing.T) {
	doc := bson.M{"items": bson.A{1, 2, 3}}
	v, err := ComputeValue(doc, bson.M{"$map": bson.M{
		"input": "$items",
		"in":    bson.M{"$multiply": bson.A{"$$this", 2}},
	}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, bson.A{2.0, 4.0, 6.0}, v)
}

// Property (spec.md §8): mapping the identity function round-trips
// the array.
func TestArrayMapIdentityRoundTrip(t *testing.T) {
	doc := bson.M{"items": bson.A{1, 2, 3}}
	v, err := ComputeValue(doc, bson.M{"$map": bson.M{
		"input": "$items",
		"in":    "$$this",
	}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, bson.A{1, 2, 3}, v)
}

func TestArrayZipUsesShortestByDefault(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$zip": bson.M{
		"inputs": bson.A{bson.A{1, 2, 3}, bson.A{"a", "b"}},
	}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, bson.A{bson.A{1, "a"}, bson.A{2, "b"}}, v)
}

func TestArrayZipUseLongestWithDefaults(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$zip": bson.M{
		"inputs":           bson.A{bson.A{1, 2, 3}, bson.A{"a", "b"}},
		"useLongestLength": true,
		"defaults":         bson.A{0, "z"},
	}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, bson.A{bson.A{1, "a"}, bson.A{2, "b"}, bson.A{3, "z"}}, v)
}

func TestArrayReverseConcatIn(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$reverseArray": bson.A{1, 2, 3}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, bson.A{3, 2, 1}, v)

	v, err = ComputeValue(bson.M{}, bson.M{"$concatArrays": bson.A{bson.A{1, 2}, bson.A{3, 4}}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, bson.A{1, 2, 3, 4}, v)

	v, err = ComputeValue(bson.M{}, bson.M{"$in": bson.A{2, bson.A{1, 2, 3}}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestArrayIsArray(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$isArray": bson.A{1, 2}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = ComputeValue(bson.M{}, bson.M{"$isArray": "not an array"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, false, v)
}
