package plan

import (
	"errors"
	"strconv"
)

var (
	// ErrEmptySteps reports a plan without steps.
	ErrEmptySteps = errors.New("plan has no steps")

	// ErrStepKind reports a step that names zero or several kinds.
	ErrStepKind = errors.New("step must set exactly one of seq, par, catch")

	// ErrUnknownAction reports a name missing from the registry.
	ErrUnknownAction = errors.New("unknown action")

	// ErrInvalidParams reports parameters a factory cannot use.
	ErrInvalidParams = errors.New("invalid step parameters")

	// ErrStepFailed is wrapped by errors produced by the fail action.
	ErrStepFailed = errors.New("step failed")
)

// ValidationError locates a problem inside a plan.
type ValidationError struct {
	Index   int    // step index, -1 for the plan itself
	Field   string // offending field
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return "step " + strconv.Itoa(e.Index) + ": " + e.Message
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidationError(index int, field, message string, err error) *ValidationError {
	return &ValidationError{
		Index:   index,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
