package docql

import (
	"regexp"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// OperatorClass is one of the five operator classes in spec.md §3:
// each has its own table, and adding an operator requires naming its
// class.
type OperatorClass string

const (
	ClassQuery      OperatorClass = "query"
	ClassProjection OperatorClass = "projection"
	ClassGroup      OperatorClass = "group"
	ClassPipeline   OperatorClass = "pipeline"
	ClassAggregate  OperatorClass = "aggregate"
)

// QueryOperatorFunc resolves a predicate for one simple query operator
// (spec.md §4.5): selector is the field path, resolved is the value
// Resolve(doc, selector, true) produced, and operand is the operator's
// own argument (e.g. the right-hand side of $gt).
type QueryOperatorFunc func(selector string, resolved, operand interface{}) (bool, error)

// ProjectionOperatorFunc implements a single-key $project operator
// ($elemMatch/$slice/$stdDevPop/$stdDevSamp), receiving the already
// path-resolved left-hand value alongside the raw operand expression.
type ProjectionOperatorFunc func(doc bson.M, resolved, operand interface{}) (interface{}, error)

// GroupOperatorFunc is an accumulator: it reduces the array produced
// by evaluating its operand expression over a partition (spec.md
// §4.3 dispatch rule 2).
type GroupOperatorFunc func(values []interface{}) (interface{}, error)

// AggregateOperatorFunc is a general expression operator, given the
// document, its own raw (unevaluated) operand, and the evaluation
// options in force.
type AggregateOperatorFunc func(doc bson.M, operand interface{}, opt *Options) (interface{}, error)

var operatorNamePattern = regexp.MustCompile(`^\$\w+$`)

type registry struct {
	query      map[string]QueryOperatorFunc
	projection map[string]ProjectionOperatorFunc
	group      map[string]GroupOperatorFunc
	pipeline   map[string]PipelineStageFunc
	aggregate  map[string]AggregateOperatorFunc
}

var operators = &registry{
	query:      map[string]QueryOperatorFunc{},
	projection: map[string]ProjectionOperatorFunc{},
	group:      map[string]GroupOperatorFunc{},
	pipeline:   map[string]PipelineStageFunc{},
	aggregate:  map[string]AggregateOperatorFunc{},
}

// AddOperators is the extension point from spec.md §6/§4.7: class
// names the table, factory returns a map of operator name to handler.
// Names must match ^\$\w+$ and must not collide with an already
// registered name in that class.
func AddOperators(class OperatorClass, factory func() map[string]interface{}) error {
	for name, fn := range factory() {
		if !operatorNamePattern.MatchString(name) {
			return newError(ErrExtension, "docql: invalid operator name %q", name)
		}
		if err := addOneOperator(class, name, fn); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"class": string(class), "name": name}).Info("docql: operator registered")
	}
	return nil
}

func addOneOperator(class OperatorClass, name string, fn interface{}) error {
	switch class {
	case ClassQuery:
		handler, ok := fn.(func(resolved, operand interface{}) (interface{}, error))
		if !ok {
			return newError(ErrExtension, "docql: query operator %q must be func(resolved, operand interface{}) (interface{}, error)", name)
		}
		if _, exists := operators.query[name]; exists {
			return newError(ErrExtension, "docql: query operator %q already registered", name)
		}
		// Constraints on extensions (spec.md §6): the handler must
		// return either a bool or a *Query; a *Query is tested against
		// the resolved value wrapped as its own document.
		operators.query[name] = func(_ string, resolved, operand interface{}) (bool, error) {
			result, err := handler(resolved, operand)
			if err != nil {
				return false, err
			}
			switch r := result.(type) {
			case bool:
				return r, nil
			case *Query:
				wrapped, _ := toMap(resolved)
				if wrapped == nil {
					wrapped = bson.M{"value": resolved}
				}
				return r.Test(wrapped), nil
			default:
				return false, newError(ErrExtension, "docql: query operator %q must return a bool or *Query", name)
			}
		}
	case ClassProjection:
		handler, ok := fn.(func(resolved, operand interface{}) (interface{}, error))
		if !ok {
			return newError(ErrExtension, "docql: projection operator %q must be func(resolved, operand interface{}) (interface{}, error)", name)
		}
		if _, exists := operators.projection[name]; exists {
			return newError(ErrExtension, "docql: projection operator %q already registered", name)
		}
		operators.projection[name] = func(_ bson.M, resolved, operand interface{}) (interface{}, error) {
			return handler(resolved, operand)
		}
	case ClassGroup:
		handler, ok := fn.(GroupOperatorFunc)
		if !ok {
			return newError(ErrExtension, "docql: group operator %q must be GroupOperatorFunc", name)
		}
		if _, exists := operators.group[name]; exists {
			return newError(ErrExtension, "docql: group operator %q already registered", name)
		}
		operators.group[name] = handler
	case ClassPipeline:
		handler, ok := fn.(PipelineStageFunc)
		if !ok {
			return newError(ErrExtension, "docql: pipeline operator %q must be PipelineStageFunc", name)
		}
		if _, exists := operators.pipeline[name]; exists {
			return newError(ErrExtension, "docql: pipeline operator %q already registered", name)
		}
		operators.pipeline[name] = handler
	case ClassAggregate:
		handler, ok := fn.(AggregateOperatorFunc)
		if !ok {
			return newError(ErrExtension, "docql: aggregate operator %q must be AggregateOperatorFunc", name)
		}
		if _, exists := operators.aggregate[name]; exists {
			return newError(ErrExtension, "docql: aggregate operator %q already registered", name)
		}
		operators.aggregate[name] = handler
	default:
		return newError(ErrExtension, "docql: unknown operator class %q", class)
	}
	return nil
}

func isAggregateOperator(name string) bool {
	_, ok := operators.aggregate[name]
	return ok
}

func isGroupOperator(name string) bool {
	_, ok := operators.group[name]
	return ok
}

func isQueryOperator(name string) bool {
	_, ok := operators.query[name]
	return ok
}

func isProjectionOperator(name string) bool {
	_, ok := operators.projection[name]
	return ok
}

func isPipelineOperator(name string) bool {
	_, ok := operators.pipeline[name]
	return ok
}
