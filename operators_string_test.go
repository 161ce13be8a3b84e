package docql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestStringConcatAndCase(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$concat": bson.A{"foo", "-", "bar"}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "foo-bar", v)

	v, err = ComputeValue(bson.M{}, bson.M{"$toUpper": "hello"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", v)

	v, err = ComputeValue(bson.M{}, bson.M{"$toLower": "HELLO"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestStringSubstr(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$substr": bson.A{"hello world", 6, 5}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "world", v)

	v, err = ComputeValue(bson.M{}, bson.M{"$substr": bson.A{"hello", 1, -1}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "ello", v)
}

func TestStringSplit(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$split": bson.A{"a,b,c", ","}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, bson.A{"a", "b", "c"}, v)
}

func TestStringStrcasecmp(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$strcasecmp": bson.A{"ABC", "abc"}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	v, err = ComputeValue(bson.M{}, bson.M{"$strcasecmp": bson.A{"a", "b"}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, -1.0, v)
}

func TestStringIndexOfBytes(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$indexOfBytes": bson.A{"hello world", "world"}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)

	v, err = ComputeValue(bson.M{}, bson.M{"$indexOfBytes": bson.A{"hello", "xyz"}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, -1.0, v)
}
