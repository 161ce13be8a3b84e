package docql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestResolveSimplePath(t *testing.T) {
	doc := bson.M{"a": bson.M{"b": 5}}
	assert.Equal(t, 5, Resolve(doc, "a.b", false))
	assert.Nil(t, Resolve(doc, "a.c", false))
	assert.Nil(t, Resolve(doc, "x.y", false))
}

func TestResolveArrayBroadcast(t *testing.T) {
	doc := bson.M{
		"items": bson.A{
			bson.M{"qty": 1},
			bson.M{"qty": 2},
			bson.M{"qty": 3},
		},
	}
	got := Resolve(doc, "items.qty", false)
	assert.Equal(t, []interface{}{1, 2, 3}, got)
}

func TestResolveArrayBroadcastSingleUnwraps(t *testing.T) {
	doc := bson.M{"items": bson.A{bson.M{"qty": 7}}}
	got := Resolve(doc, "items.qty", false)
	assert.Equal(t, 7, got)
}

func TestResolveArrayIndexSegment(t *testing.T) {
	doc := bson.M{"items": bson.A{"a", "b", "c"}}
	assert.Equal(t, "b", Resolve(doc, "items.1", false))
	assert.Nil(t, Resolve(doc, "items.9", false))
}

func TestResolveObj(t *testing.T) {
	doc := bson.M{"a": bson.M{"b": 1, "c": 2}}
	got := ResolveObj(doc, "a.b")
	assert.Equal(t, bson.M{"a": bson.M{"b": 1}}, got)

	assert.Nil(t, ResolveObj(doc, "a.missing"))
}

func TestSetValueCreatesIntermediateMaps(t *testing.T) {
	doc := bson.M{}
	SetValue(doc, "a.b.c", 42)
	assert.Equal(t, 42, doc["a"].(bson.M)["b"].(bson.M)["c"])
}

func TestSetValueOverwritesExisting(t *testing.T) {
	doc := bson.M{"a": bson.M{"b": 1}}
	SetValue(doc, "a.b", 2)
	assert.Equal(t, 2, doc["a"].(bson.M)["b"])
}

func TestRemoveValueMapKey(t *testing.T) {
	doc := bson.M{"a": bson.M{"b": 1, "c": 2}}
	RemoveValue(doc, "a.b")
	_, exists := doc["a"].(bson.M)["b"]
	assert.False(t, exists)
	assert.Equal(t, 2, doc["a"].(bson.M)["c"])
}

func TestRemoveValueArraySplice(t *testing.T) {
	doc := bson.M{"items": []interface{}{"a", "b", "c"}}
	RemoveValue(doc, "items.1")
	assert.Equal(t, bson.A{"a", "c"}, doc["items"])
}

// Without force, Traverse stops at the first missing segment: fn is
// never called and no intermediate maps are created.
func TestTraverseNoForceDoesNotMutate(t *testing.T) {
	doc := bson.M{}
	called := false
	Traverse(doc, "a.b.c", func(container bson.M, lastKey string) {
		called = true
	}, false)
	assert.False(t, called)
	assert.Empty(t, doc)
}
