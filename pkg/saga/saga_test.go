package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_AllStepsSucceed(t *testing.T) {
	var order []string

	def := NewDefinition("test-saga").
		AddStep(&Step{
			Name:    "step1",
			Execute: func(ctx context.Context) error { order = append(order, "step1"); return nil },
		}).
		AddStep(&Step{
			Name:    "step2",
			Execute: func(ctx context.Context) error { order = append(order, "step2"); return nil },
		})

	require.NoError(t, Run(context.Background(), def))
	assert.Equal(t, []string{"step1", "step2"}, order)
}

func TestRun_FailureCompensatesInReverse(t *testing.T) {
	var order []string
	stepErr := errors.New("settlement declined")

	def := NewDefinition("test-saga").
		AddStep(&Step{
			Name:       "reserve",
			Execute:    func(ctx context.Context) error { order = append(order, "reserve"); return nil },
			Compensate: func(ctx context.Context) error { order = append(order, "release"); return nil },
		}).
		AddStep(&Step{
			Name:       "hold",
			Execute:    func(ctx context.Context) error { order = append(order, "hold"); return nil },
			Compensate: func(ctx context.Context) error { order = append(order, "unhold"); return nil },
		}).
		AddStep(&Step{
			Name:    "settle",
			Execute: func(ctx context.Context) error { return stepErr },
		})

	err := Run(context.Background(), def)
	require.ErrorIs(t, err, stepErr)
	assert.Equal(t, []string{"reserve", "hold", "unhold", "release"}, order)
}

func TestRun_StepWithoutCompensationIsSkipped(t *testing.T) {
	var compensated bool
	stepErr := errors.New("boom")

	def := NewDefinition("test-saga").
		AddStep(&Step{
			Name:    "validate",
			Execute: func(ctx context.Context) error { return nil },
		}).
		AddStep(&Step{
			Name:       "reserve",
			Execute:    func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error { compensated = true; return nil },
		}).
		AddStep(&Step{
			Name:    "settle",
			Execute: func(ctx context.Context) error { return stepErr },
		})

	require.ErrorIs(t, Run(context.Background(), def), stepErr)
	assert.True(t, compensated, "expected reserve step to be compensated")
}

func TestRun_CompensationFailureIsIntegrityFault(t *testing.T) {
	stepErr := errors.New("settle failed")
	compErr := errors.New("release failed")

	def := NewDefinition("test-saga").
		AddStep(&Step{
			Name:       "reserve",
			Execute:    func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error { return compErr },
		}).
		AddStep(&Step{
			Name:    "settle",
			Execute: func(ctx context.Context) error { return stepErr },
		})

	err := Run(context.Background(), def)

	var cerr *CompensationError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, stepErr, "CompensationError should unwrap to the original step error")
	assert.Equal(t, "reserve", cerr.CompStep)
}

func TestRun_FirstStepFailureNeedsNoCompensation(t *testing.T) {
	stepErr := errors.New("not purchasable")

	def := NewDefinition("test-saga").
		AddStep(&Step{
			Name:    "validate",
			Execute: func(ctx context.Context) error { return stepErr },
		})

	require.ErrorIs(t, Run(context.Background(), def), stepErr)
}
