package wikiflow

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/wikiflow/blobstore"
	"github.com/hupe1980/wikiflow/codec"
	"github.com/hupe1980/wikiflow/engine"
	"github.com/hupe1980/wikiflow/internal/resource"
	"github.com/hupe1980/wikiflow/partition"
	"github.com/hupe1980/wikiflow/plan"
	"github.com/hupe1980/wikiflow/rdf/ntriples"
)

var (
	// ErrClosed is returned by a Flow after Close.
	ErrClosed = errors.New("wikiflow: closed")

	// ErrNotFound is returned when a blob does not exist.
	ErrNotFound = errors.New("wikiflow: not found")

	// ErrMalformedInput is returned for undecodable codec or N-Triples data.
	ErrMalformedInput = errors.New("wikiflow: malformed input")

	// ErrMemoryLimit is returned when cached results exceed the memory limit.
	ErrMemoryLimit = errors.New("wikiflow: memory limit exceeded")

	// ErrInvalidPlan is returned for plans the engines cannot evaluate.
	ErrInvalidPlan = errors.New("wikiflow: invalid plan")
)

// EvaluationError reports a fatal failure while evaluating a plan.
//
// The original underlying error can be accessed via errors.Unwrap.
type EvaluationError struct {
	// Op is the operator that failed.
	Op    plan.Op
	kind  error
	cause error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %s: %v", e.Op, e.cause)
}

// Unwrap returns the public sentinel (if any) and the engine error.
func (e *EvaluationError) Unwrap() []error {
	if e.kind == nil {
		return []error{e.cause}
	}
	return []error{e.kind, e.cause}
}

// classify maps an error to its public sentinel, or nil.
func classify(err error) error {
	var fe *codec.FormatError
	var se *ntriples.SyntaxError
	switch {
	case errors.Is(err, engine.ErrClosed), errors.Is(err, partition.ErrClosed):
		return ErrClosed
	case errors.Is(err, blobstore.ErrNotFound):
		return ErrNotFound
	case errors.As(err, &fe), errors.As(err, &se), errors.Is(err, codec.ErrStringTooLong),
		errors.Is(err, io.ErrUnexpectedEOF):
		return ErrMalformedInput
	case errors.Is(err, resource.ErrMemoryLimitExceeded):
		return ErrMemoryLimit
	case errors.Is(err, engine.ErrUnknownOperator), errors.Is(err, engine.ErrNotGrouped):
		return ErrInvalidPlan
	}
	return nil
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ee *engine.EvaluationError
	if errors.As(err, &ee) {
		return &EvaluationError{Op: ee.Op, kind: classify(err), cause: err}
	}
	if kind := classify(err); kind != nil && !errors.Is(err, kind) {
		return fmt.Errorf("%w: %w", kind, err)
	}
	return err
}
