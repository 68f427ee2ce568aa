// Package saga runs a sequence of steps that mutate external state, and
// compensates already-completed steps in reverse order when a later step
// fails. It is the building block for operations that couple irreversible
// settlement with ledger mutation.
package saga

import (
	"context"
	"fmt"
)

// ExecuteFunc performs a step's forward action.
type ExecuteFunc func(ctx context.Context) error

// CompensateFunc undoes a step's forward action.
type CompensateFunc func(ctx context.Context) error

// Step is a single unit of work with an optional compensating action.
// Steps share state through closures.
type Step struct {
	Name       string
	Execute    ExecuteFunc
	Compensate CompensateFunc
}

// Definition is an ordered list of steps forming one logical operation.
type Definition struct {
	Name  string
	Steps []*Step
}

// NewDefinition creates an empty saga definition.
func NewDefinition(name string) *Definition {
	return &Definition{
		Name:  name,
		Steps: make([]*Step, 0),
	}
}

// AddStep appends a step and returns the definition for chaining.
func (d *Definition) AddStep(step *Step) *Definition {
	d.Steps = append(d.Steps, step)
	return d
}

// CompensationError reports a compensation failure. The original step error
// is preserved so callers can still classify the business failure.
type CompensationError struct {
	Saga     string
	Step     string
	StepErr  error
	CompErr  error
	CompStep string
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("saga %s: step %s failed (%v); compensation of %s also failed: %v",
		e.Saga, e.Step, e.StepErr, e.CompStep, e.CompErr)
}

func (e *CompensationError) Unwrap() error {
	return e.StepErr
}

// Run executes the steps in order. On the first failure, compensations of all
// previously completed steps run in reverse order and the step's error is
// returned. A compensation failure is wrapped in CompensationError; it marks
// an integrity fault, not an ordinary business failure.
func Run(ctx context.Context, def *Definition) error {
	completed := make([]*Step, 0, len(def.Steps))

	for _, step := range def.Steps {
		if err := step.Execute(ctx); err != nil {
			for i := len(completed) - 1; i >= 0; i-- {
				prev := completed[i]
				if prev.Compensate == nil {
					continue
				}
				if compErr := prev.Compensate(ctx); compErr != nil {
					return &CompensationError{
						Saga:     def.Name,
						Step:     step.Name,
						StepErr:  err,
						CompStep: prev.Name,
						CompErr:  compErr,
					}
				}
			}
			return err
		}
		completed = append(completed, step)
	}

	return nil
}
