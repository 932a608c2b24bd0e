package engine

import (
	"errors"
	"fmt"

	"github.com/hupe1980/wikiflow/plan"
)

var (
	// ErrUnknownOperator is returned for a node whose operator the engine
	// does not implement. It indicates a defect, not bad input.
	ErrUnknownOperator = errors.New("unknown plan operator")

	// ErrClosed is returned when the engine or its pool is closed.
	ErrClosed = errors.New("engine closed")

	// ErrNotGrouped is returned when an Aggregate node is streamed directly.
	ErrNotGrouped = errors.New("aggregate must be consumed through MapGroups or Groups")
)

// EvaluationError is a fatal failure while evaluating a plan.
//
// The underlying cause (I/O, decoding, resource limits) is available via
// errors.Unwrap.
type EvaluationError struct {
	Op  plan.Op
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %s: %v", e.Op, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// wrapErr attaches op to err unless err already names an operator.
func wrapErr(op plan.Op, err error) error {
	if err == nil {
		return nil
	}
	var ee *EvaluationError
	if errors.As(err, &ee) {
		return err
	}
	return &EvaluationError{Op: op, Err: err}
}
