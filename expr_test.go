package docql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestComputeValueFieldPath(t *testing.T) {
	doc := bson.M{"a": bson.M{"b": 5}}
	v, err := ComputeValue(doc, "$a.b", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestComputeValueRoot(t *testing.T) {
	doc := bson.M{"a": 1}
	v, err := ComputeValue(doc, "$$ROOT", "", nil)
	require.NoError(t, err)
	assert.Equal(t, doc, v)
}

func TestComputeValueRootDotPath(t *testing.T) {
	doc := bson.M{"a": bson.M{"b": 9}}
	v, err := ComputeValue(doc, "$$ROOT.a.b", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestComputeValueArrayMapsElementwise(t *testing.T) {
	doc := bson.M{"a": 2}
	v, err := ComputeValue(doc, bson.A{"$a", 5, "literal"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, bson.A{2, 5, "literal"}, v)
}

func TestComputeValueLiteralClones(t *testing.T) {
	doc := bson.M{}
	v, err := ComputeValue(doc, 42, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestComputeValueOperatorApplication(t *testing.T) {
	doc := bson.M{"a": 3, "b": 4}
	v, err := ComputeValue(doc, bson.M{"$add": bson.A{"$a", "$b"}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
}

func TestComputeValueMapWithoutOperatorEvaluatesPerEntry(t *testing.T) {
	doc := bson.M{"a": 1, "b": 2}
	v, err := ComputeValue(doc, bson.M{"x": "$a", "y": "$b"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"x": 1, "y": 2}, v)
}

func TestComputeValueVars(t *testing.T) {
	opt := &Options{Root: bson.M{}}
	opt = opt.withVar("n", 10)
	v, err := ComputeValue(bson.M{}, "$$n", "", opt)
	require.NoError(t, err)
	assert.Equal(t, 10, v)
}

func TestComputeValueGroupOperatorReducesArray(t *testing.T) {
	doc := bson.M{"values": bson.A{1, 2, 3}}
	v, err := ComputeValue(doc, "$values", "$sum", nil)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
}

func TestArithmeticOperators(t *testing.T) {
	doc := bson.M{"a": 9.0}
	v, err := ComputeValue(doc, bson.M{"$sqrt": "$a"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	_, err = ComputeValue(doc, bson.M{"$sqrt": -1}, "", nil)
	assert.True(t, IsCode(err, ErrDomain))

	v, err = ComputeValue(doc, bson.M{"$sqrt": 0}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	v, err = ComputeValue(doc, bson.M{"$trunc": -4.7}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, -4.0, v)
}

func TestCondOperator(t *testing.T) {
	doc := bson.M{"a": 5}
	v, err := ComputeValue(doc, bson.M{"$cond": bson.A{"$a", "big", "small"}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "big", v)

	doc = bson.M{"a": 0}
	v, err = ComputeValue(doc, bson.M{"$cond": bson.A{"$a", "big", "small"}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "small", v)
}

func TestLetBinding(t *testing.T) {
	doc := bson.M{}
	v, err := ComputeValue(doc, bson.M{
		"$let": bson.M{
			"vars": bson.M{"x": 3, "y": 4},
			"in":   bson.M{"$add": bson.A{"$$x", "$$y"}},
		},
	}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
}
