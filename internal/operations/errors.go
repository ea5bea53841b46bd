package operations

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of operation error
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeNoStateFolders ErrorType = "no_state_folders"
	ErrorTypeNoUsableStates ErrorType = "no_usable_states"
	ErrorTypeExecution      ErrorType = "execution"
	ErrorTypeOutput         ErrorType = "output"
	ErrorTypeCancelled      ErrorType = "cancelled"
)

// Pipeline steps named in errors and logs
const (
	StepDiscover = "discover"
	StepReshape  = "reshape"
	StepMerge    = "merge"
	StepExport   = "export"
)

// OperationError is a run-fatal pipeline error
type OperationError struct {
	Type    ErrorType              `json:"type"`
	Step    string                 `json:"step,omitempty"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Message)
	if e.Step != "" {
		msg = fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewValidationError reports unusable run configuration
func NewValidationError(step, message string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeValidation,
		Step:    step,
		Message: message,
		Cause:   cause,
	}
}

// NewNoStateFoldersError reports a parent directory without any state folder
func NewNoStateFoldersError(parent, marker string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeNoStateFolders,
		Step:    StepDiscover,
		Message: fmt.Sprintf("no folders containing %q found in %s", marker, parent),
		Context: map[string]interface{}{
			"parent": parent,
			"marker": marker,
		},
	}
}

// NewNoUsableStatesError reports that every state folder was skipped
func NewNoUsableStatesError(skipped int) *OperationError {
	return &OperationError{
		Type:    ErrorTypeNoUsableStates,
		Step:    StepReshape,
		Message: "no states with usable data",
		Context: map[string]interface{}{
			"states_skipped": skipped,
		},
	}
}

// NewExecutionError wraps an unexpected failure of a step
func NewExecutionError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeExecution,
		Step:    step,
		Message: "step execution failed",
		Cause:   cause,
	}
}

// NewOutputError reports a failure to write the combined file
func NewOutputError(path string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeOutput,
		Step:    StepExport,
		Message: "failed to write output",
		Cause:   cause,
		Context: map[string]interface{}{
			"output": path,
		},
	}
}

// NewCancellationError reports a run stopped by its context
func NewCancellationError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeCancelled,
		Step:    step,
		Message: "operation was cancelled",
		Cause:   cause,
	}
}

// GetErrorType returns the type of err, or "" when err is not an
// OperationError
func GetErrorType(err error) ErrorType {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	return ""
}

// IsErrorType reports whether err is an OperationError of type t
func IsErrorType(err error, t ErrorType) bool {
	return err != nil && GetErrorType(err) == t
}
