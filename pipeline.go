package docql

import (
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// PipelineStageFunc implements one aggregation pipeline stage (spec.md
// §4.6): it receives the accumulated collection so far, the stage's
// own operand, and — when the pipeline was run with a Query context —
// that Query, enabling $sortByCount to call through to the $group and
// $sort tables it's built from.
type PipelineStageFunc func(collection []bson.M, operand interface{}, ctx *Query) ([]bson.M, error)

// Aggregator runs a compiled sequence of pipeline stages (spec.md
// §4.6), grounded on the teacher's stage-dispatch loop in
// query_core.go's Query method.
type Aggregator struct {
	stages []compiledStage
}

type compiledStage struct {
	name    string
	operand interface{}
	fn      PipelineStageFunc
}

// NewAggregator compiles pipeline, a slice of single-key stage maps
// {$op: arg}, failing with a validation error if any stage is not a
// single-key map or names an unregistered pipeline operator.
func NewAggregator(pipeline []bson.M) (*Aggregator, error) {
	agg := &Aggregator{stages: make([]compiledStage, 0, len(pipeline))}
	for _, stage := range pipeline {
		if len(stage) != 1 {
			return nil, newError(ErrBadShape, "docql: pipeline stage must have exactly one key, got %d", len(stage))
		}
		for name, operand := range stage {
			fn, ok := operators.pipeline[name]
			if !ok {
				return nil, newError(ErrBadOperator, "docql: unknown pipeline operator %q", name)
			}
			agg.stages = append(agg.stages, compiledStage{name: name, operand: operand, fn: fn})
		}
	}
	return agg, nil
}

// Run executes the compiled stages in order over collection. ctx, if
// non-nil, is threaded through to every stage (spec.md §4.6).
func (a *Aggregator) Run(collection []bson.M, ctx *Query) ([]bson.M, error) {
	current := collection
	for _, stage := range a.stages {
		next, err := stage.fn(current, stage.operand, ctx)
		if err != nil {
			log.WithFields(logrus.Fields{
				"stage": stage.name,
				"in":    len(current),
			}).WithError(err).Debug("docql: pipeline stage failed")
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"stage": stage.name,
			"in":    len(current),
			"out":   len(next),
		}).Debug("docql: pipeline stage applied")
		current = next
	}
	return current, nil
}

// Aggregate compiles pipeline and runs it over collection in one call
// (spec.md §6).
func Aggregate(collection []bson.M, pipeline []bson.M) ([]bson.M, error) {
	agg, err := NewAggregator(pipeline)
	if err != nil {
		return nil, err
	}
	return agg.Run(collection, nil)
}
