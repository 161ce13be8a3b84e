package docql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestSetEquals(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$setEquals": bson.A{
		bson.A{1, 2, 3}, bson.A{3, 2, 1},
	}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = ComputeValue(bson.M{}, bson.M{"$setEquals": bson.A{
		bson.A{1, 2}, bson.A{1, 2, 3},
	}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestSetIntersectionUnionDifference(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$setIntersection": bson.A{
		bson.A{1, 2, 3}, bson.A{2, 3, 4},
	}}, "", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, bson.A{2, 3}, v)

	v, err = ComputeValue(bson.M{}, bson.M{"$setUnion": bson.A{
		bson.A{1, 2}, bson.A{2, 3},
	}}, "", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, bson.A{1, 2, 3}, v)

	v, err = ComputeValue(bson.M{}, bson.M{"$setDifference": bson.A{
		bson.A{1, 2, 3}, bson.A{2},
	}}, "", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, bson.A{1, 3}, v)
}

func TestSetIsSubset(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$setIsSubset": bson.A{
		bson.A{1, 2}, bson.A{1, 2, 3},
	}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = ComputeValue(bson.M{}, bson.M{"$setIsSubset": bson.A{
		bson.A{1, 9}, bson.A{1, 2, 3},
	}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestAllAnyElementsTrue(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$allElementsTrue": bson.A{bson.A{true, 1, "x"}}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = ComputeValue(bson.M{}, bson.M{"$allElementsTrue": bson.A{bson.A{true, 0}}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, false, v)

	v, err = ComputeValue(bson.M{}, bson.M{"$anyElementTrue": bson.A{bson.A{false, 0, nil, true}}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)
}
