package operations

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *OperationError
		want string
	}{
		{
			name: "no state folders",
			err:  NewNoStateFoldersError("/data", "groundWater"),
			want: `[no_state_folders] discover: no folders containing "groundWater" found in /data`,
		},
		{
			name: "no usable states",
			err:  NewNoUsableStatesError(3),
			want: "[no_usable_states] reshape: no states with usable data",
		},
		{
			name: "output with cause",
			err:  NewOutputError("out.csv", errors.New("disk full")),
			want: "[output] export: failed to write output: disk full",
		},
		{
			name: "without step",
			err:  &OperationError{Type: ErrorTypeExecution, Message: "boom"},
			want: "[execution] boom",
		},
		{
			name: "nil",
			err:  nil,
			want: "unknown operation error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	cause := context.Canceled
	err := fmt.Errorf("run: %w", NewCancellationError(StepReshape, cause))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ErrorTypeCancelled, GetErrorType(err))
	assert.True(t, IsErrorType(err, ErrorTypeCancelled))

	var opErr *OperationError
	assert.ErrorAs(t, err, &opErr)
	assert.Equal(t, StepReshape, opErr.Step)

	var nilErr *OperationError
	assert.Nil(t, nilErr.Unwrap())
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorType(""), GetErrorType(nil))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
	assert.Equal(t, ErrorTypeExecution, GetErrorType(NewExecutionError(StepMerge, errors.New("x"))))
	assert.Equal(t, ErrorTypeValidation, GetErrorType(NewValidationError(StepDiscover, "bad", nil)))
	assert.False(t, IsErrorType(nil, ErrorTypeOutput))
}

func TestNoStateFoldersError_Context(t *testing.T) {
	err := NewNoStateFoldersError("/data", "gw")
	assert.Equal(t, "/data", err.Context["parent"])
	assert.Equal(t, "gw", err.Context["marker"])
	assert.Equal(t, 3, NewNoUsableStatesError(3).Context["states_skipped"])
}
