package docql

import "go.mongodb.org/mongo-driver/v2/bson"

func init() {
	operators.pipeline["$facet"] = facetStage
}

// facetStage runs each named sub-pipeline independently over the
// input and emits a single document of facetName -> result array
// (spec.md §4.6 supplement; MongoDB 3.4's $facet).
func facetStage(collection []bson.M, operand interface{}, ctx *Query) ([]bson.M, error) {
	spec, ok := toMap(operand)
	if !ok {
		return nil, newError(ErrBadShape, "docql: $facet operand must be an object")
	}
	result := bson.M{}
	for facetName, rawPipeline := range spec {
		stagesAny, ok := toSlice(rawPipeline)
		if !ok {
			return nil, newError(ErrBadShape, "docql: $facet: %q must be an array of pipeline stages", facetName)
		}
		stages := make([]bson.M, len(stagesAny))
		for i, s := range stagesAny {
			m, ok := toMap(s)
			if !ok {
				return nil, newError(ErrBadShape, "docql: $facet: %q stage #%d must be an object", facetName, i)
			}
			stages[i] = m
		}
		agg, err := NewAggregator(stages)
		if err != nil {
			return nil, err
		}
		facetResult, err := agg.Run(collection, ctx)
		if err != nil {
			return nil, err
		}
		out := make(bson.A, len(facetResult))
		for i, d := range facetResult {
			out[i] = d
		}
		result[facetName] = out
	}
	return []bson.M{result}, nil
}
