package docql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestAddOperatorsRejectsBadName(t *testing.T) {
	err := AddOperators(ClassGroup, func() map[string]interface{} {
		return map[string]interface{}{
			"notadollar": GroupOperatorFunc(func(values []interface{}) (interface{}, error) { return nil, nil }),
		}
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrExtension))
}

func TestAddOperatorsRejectsCollision(t *testing.T) {
	err := AddOperators(ClassGroup, func() map[string]interface{} {
		return map[string]interface{}{
			"$sum": GroupOperatorFunc(func(values []interface{}) (interface{}, error) { return nil, nil }),
		}
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrExtension))
}

func TestAddOperatorsGroupExtensionWorks(t *testing.T) {
	err := AddOperators(ClassGroup, func() map[string]interface{} {
		return map[string]interface{}{
			"$testCount": GroupOperatorFunc(func(values []interface{}) (interface{}, error) {
				return float64(len(values)), nil
			}),
		}
	})
	require.NoError(t, err)
	assert.True(t, isGroupOperator("$testCount"))

	v, err := ComputeValue(bson.M{"xs": bson.A{1, 2, 3}}, "$xs", "$testCount", nil)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

// A user-supplied query operator (spec.md §6) may return a bool
// directly or a *Query tested against the resolved value.
func TestAddOperatorsQueryExtensionBool(t *testing.T) {
	err := AddOperators(ClassQuery, func() map[string]interface{} {
		return map[string]interface{}{
			"$testIsPositive": func(resolved, operand interface{}) (interface{}, error) {
				n, ok := toFloat64(resolved)
				return ok && n > 0, nil
			},
		}
	})
	require.NoError(t, err)

	cur, err := Find([]bson.M{{"a": 5}, {"a": -1}}, bson.M{"a": bson.M{"$testIsPositive": true}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []bson.M{{"a": 5}}, cur.All())
}

func TestAddOperatorsQueryExtensionBadReturnType(t *testing.T) {
	err := AddOperators(ClassQuery, func() map[string]interface{} {
		return map[string]interface{}{
			"$testBadReturn": func(resolved, operand interface{}) (interface{}, error) {
				return "not a bool or query", nil
			},
		}
	})
	require.NoError(t, err)

	_, err = Find([]bson.M{{"a": 1}}, bson.M{"a": bson.M{"$testBadReturn": true}}, nil)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrExtension))
}
