package docql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestDateFieldExtractors(t *testing.T) {
	d := time.Date(2026, time.March, 15, 10, 30, 45, 0, time.UTC)
	doc := bson.M{"d": d}

	v, err := ComputeValue(doc, bson.M{"$year": "$d"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(2026), v)

	v, err = ComputeValue(doc, bson.M{"$month": "$d"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(3), v)

	v, err = ComputeValue(doc, bson.M{"$dayOfMonth": "$d"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(15), v)
}

func TestDateFieldNonDateReturnsNil(t *testing.T) {
	v, err := ComputeValue(bson.M{}, bson.M{"$year": "not-a-date"}, "", nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDateToString(t *testing.T) {
	// noon UTC keeps the calendar date stable regardless of the local
	// timezone $dateToString converts into.
	d := time.Date(2026, time.January, 2, 12, 4, 5, 0, time.UTC)
	doc := bson.M{"d": d}
	v, err := ComputeValue(doc, bson.M{"$dateToString": bson.M{
		"format": "%Y-%m-%d",
		"date":   "$d",
	}}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02", v)
}
