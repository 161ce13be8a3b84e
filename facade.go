package docql

import "go.mongodb.org/mongo-driver/v2/bson"

// AggregateWithQuery runs pipeline over collection with criteria
// compiled into a Query context threaded through every stage (spec.md
// §4.6) — this is what lets $sortByCount's internal $group/$sort
// calls, or any custom stage, reach back into the match criteria that
// selected the input collection.
func AggregateWithQuery(collection []bson.M, pipeline []bson.M, criteria bson.M) ([]bson.M, error) {
	var ctx *Query
	if criteria != nil {
		q, err := NewQuery(criteria, nil)
		if err != nil {
			return nil, err
		}
		ctx = q
	}
	agg, err := NewAggregator(pipeline)
	if err != nil {
		return nil, err
	}
	return agg.Run(collection, ctx)
}
