package docql

import "go.mongodb.org/mongo-driver/v2/bson"

func init() {
	operators.pipeline["$sortByCount"] = sortByCountStage
}

// sortByCountStage is sugar for grouping by expr with count:{$sum:1}
// then sorting by count descending (spec.md §4.6).
func sortByCountStage(collection []bson.M, operand interface{}, ctx *Query) ([]bson.M, error) {
	grouped, err := groupStage(collection, bson.M{
		"_id":   operand,
		"count": bson.M{"$sum": 1},
	}, ctx)
	if err != nil {
		return nil, err
	}
	return sortStage(grouped, bson.D{{Key: "count", Value: -1}}, ctx)
}
