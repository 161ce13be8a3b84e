package docql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestFindSimpleGT(t *testing.T) {
	collection := []bson.M{{"a": 1}, {"a": 2}, {"a": 3}}
	cur, err := Find(collection, bson.M{"a": bson.M{"$gt": 1}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []bson.M{{"a": 2}, {"a": 3}}, cur.All())
}

func TestFindScalarShorthandIsEq(t *testing.T) {
	collection := []bson.M{{"a": 1}, {"a": 2}}
	cur, err := Find(collection, bson.M{"a": 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, []bson.M{{"a": 2}}, cur.All())
}

func TestFindArrayTraversal(t *testing.T) {
	collection := []bson.M{
		{"tags": bson.A{"retail", "priority"}},
		{"tags": bson.A{"wholesale"}},
	}
	cur, err := Find(collection, bson.M{"tags": "priority"}, nil)
	require.NoError(t, err)
	assert.Len(t, cur.All(), 1)
}

func TestFindAndOrNor(t *testing.T) {
	collection := []bson.M{{"a": 1, "b": 1}, {"a": 1, "b": 2}, {"a": 2, "b": 2}}

	cur, err := Find(collection, bson.M{"$and": bson.A{
		bson.M{"a": 1}, bson.M{"b": 1},
	}}, nil)
	require.NoError(t, err)
	assert.Len(t, cur.All(), 1)

	cur, err = Find(collection, bson.M{"$or": bson.A{
		bson.M{"a": 2}, bson.M{"b": 1},
	}}, nil)
	require.NoError(t, err)
	assert.Len(t, cur.All(), 2)

	cur, err = Find(collection, bson.M{"$nor": bson.A{
		bson.M{"a": 1},
	}}, nil)
	require.NoError(t, err)
	assert.Len(t, cur.All(), 1)
}

// Property (spec.md §8): Q.test(D) iff Q.find([D]).count() === 1.
func TestTestEquivalentToFindCountOne(t *testing.T) {
	doc := bson.M{"status": "paid", "total": 120.0}
	q, err := NewQuery(bson.M{"status": "paid", "total": bson.M{"$gte": 100}}, nil)
	require.NoError(t, err)

	got := q.Test(doc)
	cur := q.Find([]bson.M{doc}, nil)
	assert.Equal(t, got, cur.Count() == 1)
	assert.True(t, got)
}

// Property (spec.md §8): a $match stage is equivalent to
// new Query(criteria).find(collection).all().
func TestMatchStageEquivalentToQueryFind(t *testing.T) {
	collection := []bson.M{{"a": 1}, {"a": 2}, {"a": 3}}
	criteria := bson.M{"a": bson.M{"$gte": 2}}

	viaStage, err := matchStage(collection, criteria, nil)
	require.NoError(t, err)

	q, err := NewQuery(criteria, nil)
	require.NoError(t, err)
	viaQuery := q.Find(collection, nil).All()

	assert.Equal(t, viaQuery, viaStage)
}

func TestRemoveIsComplementOfFind(t *testing.T) {
	collection := []bson.M{{"a": 1}, {"a": 2}, {"a": 3}}
	criteria := bson.M{"a": bson.M{"$gt": 1}}

	kept, err := Remove(collection, criteria)
	require.NoError(t, err)
	assert.Equal(t, []bson.M{{"a": 1}}, kept)
}

func TestWhereStringComparison(t *testing.T) {
	collection := []bson.M{{"total": 50.0}, {"total": 150.0}}
	cur, err := Find(collection, bson.M{"$where": "return this.total > 100;"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []bson.M{{"total": 150.0}}, cur.All())
}

func TestWhereFunc(t *testing.T) {
	collection := []bson.M{{"a": 1}, {"a": 2}}
	cur, err := Find(collection, bson.M{"$where": func(doc bson.M) bool {
		a, _ := doc["a"].(int)
		return a == 2
	}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []bson.M{{"a": 2}}, cur.All())
}

func TestNewQueryRejectsUnknownOperator(t *testing.T) {
	_, err := NewQuery(bson.M{"a": bson.M{"$bogus": 1}}, nil)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrBadOperator))
}

func TestNewQueryRejectsNonArrayLogical(t *testing.T) {
	_, err := NewQuery(bson.M{"$and": "not-an-array"}, nil)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrBadCriteria))
}

func TestRegexWithOptions(t *testing.T) {
	collection := []bson.M{{"name": "Alice"}, {"name": "bob"}}
	cur, err := Find(collection, bson.M{"name": bson.M{"$regex": "^a", "$options": "i"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []bson.M{{"name": "Alice"}}, cur.All())
}
